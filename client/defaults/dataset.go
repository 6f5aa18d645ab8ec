// Package defaults holds the built-in dataset used when neither the
// backend nor the durable cache can provide data. It gives a first-run
// user something to explore instead of an empty screen.
package defaults

import (
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Fixed ids keep the sample data stable across runs so cached copies and
// fresh copies agree.
var (
	GuestUserID       = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	SampleCustomerID  = uuid.MustParse("00000000-0000-4000-8000-000000000010")
	SampleProjectID   = uuid.MustParse("00000000-0000-4000-8000-000000000020")
	sampleTaskBoardID = uuid.MustParse("00000000-0000-4000-8000-000000000030")
	sampleTaskDocsID  = uuid.MustParse("00000000-0000-4000-8000-000000000031")
)

// Snapshot builds the fallback dataset relative to now.
func Snapshot(now time.Time) *domain.DashboardSnapshot {
	now = now.UTC()
	stamp := now.Format(timeFormat)
	weekAgo := now.AddDate(0, 0, -7).Format(timeFormat)

	user := &domain.UserDTO{
		ID:          GuestUserID,
		Email:       "guest@loopdesk.io",
		DisplayName: "Guest",
		Role:        domain.RoleOwner,
		CreatedAt:   stamp,
	}

	return &domain.DashboardSnapshot{
		User: user,
		Customers: []domain.CustomerDTO{
			{
				ID:                  SampleCustomerID,
				Name:                "Acme Studio",
				Status:              domain.CustomerStatusActive,
				Email:               "hello@acme.example",
				JoinDate:            weekAgo,
				BillingModel:        domain.BillingModelHourly,
				Currency:            "EUR",
				HourlyRate:          90,
				EstimatedHoursMonth: 40,
				Tags:                []string{"sample"},
				CreatedAt:           weekAgo,
				UpdatedAt:           weekAgo,
			},
		},
		Projects: []domain.ProjectDTO{
			{
				ID:          SampleProjectID,
				Title:       "Website redesign",
				Description: "Sample project to explore the board",
				StartDate:   weekAgo,
				Status:      domain.ProjectStatusInProgress,
				Priority:    domain.PriorityMedium,
				MemberIDs:   []string{GuestUserID.String()},
				CustomerID:  &SampleCustomerID,
				CreatorID:   GuestUserID,
				CreatedAt:   weekAgo,
				UpdatedAt:   weekAgo,
			},
		},
		Tasks: []domain.TaskDTO{
			{
				ID:          sampleTaskBoardID,
				Title:       "Sketch the landing page",
				ProjectID:   SampleProjectID,
				AssigneeIDs: []string{GuestUserID.String()},
				Status:      domain.TaskStatusInProgress,
				Priority:    domain.PriorityHigh,
				Tags:        []string{"design"},
				Comments:    []domain.TaskCommentDTO{},
				Attachments: []domain.TaskAttachmentDTO{},
				CreatedAt:   weekAgo,
				UpdatedAt:   stamp,
			},
			{
				ID:          sampleTaskDocsID,
				Title:       "Collect brand assets",
				ProjectID:   SampleProjectID,
				AssigneeIDs: []string{GuestUserID.String()},
				Status:      domain.TaskStatusCompleted,
				Priority:    domain.PriorityLow,
				Tags:        []string{},
				Comments:    []domain.TaskCommentDTO{},
				Attachments: []domain.TaskAttachmentDTO{},
				CreatedAt:   weekAgo,
				UpdatedAt:   stamp,
			},
		},
		TimeEntries:   []domain.TimeEntryDTO{},
		Incomes:       []domain.IncomeDTO{},
		Notifications: []domain.NotificationDTO{},
		Activities:    []domain.ActivityDTO{},
	}
}
