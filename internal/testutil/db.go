// Package testutil provides shared helpers for service and repository
// tests. Tests run against an in-memory SQLite database, so Postgres
// specific queries (array membership filters) are out of scope here.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory database with the full schema migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Customer{},
		&domain.Project{},
		&domain.Task{},
		&domain.TaskComment{},
		&domain.TaskAttachment{},
		&domain.TimeEntry{},
		&domain.Income{},
		&domain.ActiveTimer{},
		&domain.Notification{},
		&domain.Activity{},
		&domain.Subscription{},
		&domain.WebhookEvent{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	return db
}

// CreateTestUser inserts a user with sane defaults.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:        email,
		DisplayName:  "Test User",
		Role:         domain.RoleOwner,
		PasswordHash: "$2a$10$unusable.test.hash.unusable.test.hash.unusable.te",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestCustomer inserts a customer owned by ownerID.
func CreateTestCustomer(t *testing.T, db *gorm.DB, ownerID uuid.UUID, name string) *domain.Customer {
	t.Helper()
	customer := &domain.Customer{
		Name:         name,
		Status:       domain.CustomerStatusActive,
		JoinDate:     time.Now().UTC(),
		BillingModel: domain.BillingModelHourly,
		Currency:     "EUR",
		HourlyRate:   100,
		OwnerID:      ownerID,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestProject inserts a project created by creatorID.
func CreateTestProject(t *testing.T, db *gorm.DB, creatorID uuid.UUID, title string) *domain.Project {
	t.Helper()
	project := &domain.Project{
		Title:     title,
		StartDate: time.Now().UTC(),
		Status:    domain.ProjectStatusInProgress,
		Priority:  domain.PriorityMedium,
		CreatorID: creatorID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestTask inserts a task in the given project.
func CreateTestTask(t *testing.T, db *gorm.DB, projectID, creatorID uuid.UUID, title string, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:     title,
		ProjectID: projectID,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatorID: creatorID,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
