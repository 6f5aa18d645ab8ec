package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller did not set one.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents the role of a user within a workspace
type UserRole string

const (
	RoleOwner       UserRole = "owner"
	RoleManager     UserRole = "manager"
	RoleContributor UserRole = "contributor"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleContributor:
		return true
	}
	return false
}

// User represents an account in the system
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);not null;unique;index"`
	DisplayName  string     `gorm:"type:varchar(200);not null;column:display_name"`
	Role         UserRole   `gorm:"type:varchar(50);not null;default:'contributor'"`
	Avatar       string     `gorm:"type:varchar(500)"`
	PasswordHash string     `gorm:"type:varchar(255);column:password_hash"`
	IsOnline     bool       `gorm:"not null;default:false;column:is_online"`
	LastSeenAt   *time.Time `gorm:"column:last_seen_at"`
}

// IsOwner checks if the user holds the owner role
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (ps ProjectStatus) IsValid() bool {
	switch ps {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold:
		return true
	}
	return false
}

// Priority represents the priority level of a project or task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the Priority is a valid enum value
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project represents work being performed for a customer
type Project struct {
	BaseModel
	Title       string         `gorm:"type:varchar(200);not null;index"`
	Description string         `gorm:"type:text"`
	StartDate   time.Time      `gorm:"type:date;not null;column:start_date"`
	EndDate     *time.Time     `gorm:"type:date;column:end_date"`
	Status      ProjectStatus  `gorm:"type:varchar(50);not null;default:'planning';index"`
	Progress    int            `gorm:"not null;default:0"`
	Priority    Priority       `gorm:"type:varchar(50);not null;default:'medium'"`
	MemberIDs   pq.StringArray `gorm:"type:text[];column:member_ids"`
	CustomerID  *uuid.UUID     `gorm:"type:uuid;index;column:customer_id"`
	Customer    *Customer      `gorm:"foreignKey:CustomerID"`
	CreatorID   uuid.UUID      `gorm:"type:uuid;not null;index;column:creator_id"`
	Tasks       []Task         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// ComputeProgress derives project progress from a task set.
// Progress is round(100 * completed / total), 0 when the project has no tasks.
func ComputeProgress(tasks []Task) int {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == TaskStatusCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(tasks))))
}

// TaskStatus represents the status of a task on the board
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid checks if the TaskStatus is a valid enum value
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Task represents a unit of work on the Kanban board
type Task struct {
	BaseModel
	Title       string           `gorm:"type:varchar(200);not null;index"`
	Description string           `gorm:"type:text"`
	ProjectID   uuid.UUID        `gorm:"type:uuid;not null;index;column:project_id"`
	Project     *Project         `gorm:"foreignKey:ProjectID"`
	AssigneeIDs pq.StringArray   `gorm:"type:text[];column:assignee_ids"`
	Status      TaskStatus       `gorm:"type:varchar(50);not null;default:'todo';index"`
	Priority    Priority         `gorm:"type:varchar(50);not null;default:'medium'"`
	DueDate     *time.Time       `gorm:"type:date;column:due_date"`
	Tags        pq.StringArray   `gorm:"type:text[]"`
	CreatorID   uuid.UUID        `gorm:"type:uuid;not null;column:creator_id"`
	Comments    []TaskComment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

// TaskComment represents a comment on a task
type TaskComment struct {
	BaseModel
	TaskID     uuid.UUID `gorm:"type:uuid;not null;index;column:task_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;column:author_id"`
	AuthorName string    `gorm:"type:varchar(200);column:author_name"`
	Body       string    `gorm:"type:varchar(2000);not null"`
}

// TaskAttachment represents a file attached to a task
type TaskAttachment struct {
	BaseModel
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index;column:task_id"`
	Filename    string    `gorm:"type:varchar(255);not null"`
	ContentType string    `gorm:"type:varchar(100);not null;column:content_type"`
	Size        int64     `gorm:"not null"`
	StoragePath string    `gorm:"type:varchar(500);not null;unique;column:storage_path"`
	UploaderID  uuid.UUID `gorm:"type:uuid;column:uploader_id"`
}

// CustomerStatus represents the lifecycle status of a customer
type CustomerStatus string

const (
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusTrial   CustomerStatus = "trial"
	CustomerStatusPaused  CustomerStatus = "paused"
	CustomerStatusChurned CustomerStatus = "churned"
)

// IsValid checks if the CustomerStatus is a valid enum value
func (cs CustomerStatus) IsValid() bool {
	switch cs {
	case CustomerStatusActive, CustomerStatusTrial, CustomerStatusPaused, CustomerStatusChurned:
		return true
	}
	return false
}

// BillingModel represents the pricing structure agreed with a customer
type BillingModel string

const (
	BillingModelHourly   BillingModel = "hourly"
	BillingModelRetainer BillingModel = "retainer"
	BillingModelProject  BillingModel = "project"
)

// IsValid checks if the BillingModel is a valid enum value
func (bm BillingModel) IsValid() bool {
	switch bm {
	case BillingModelHourly, BillingModelRetainer, BillingModelProject:
		return true
	}
	return false
}

// Customer represents a client of the freelancer or agency
type Customer struct {
	BaseModel
	Name                string         `gorm:"type:varchar(200);not null;index"`
	Status              CustomerStatus `gorm:"type:varchar(50);not null;default:'active';index"`
	Email               string         `gorm:"type:varchar(255)"`
	Phone               string         `gorm:"type:varchar(50)"`
	Country             string         `gorm:"type:varchar(100)"`
	TaxID               string         `gorm:"type:varchar(50);column:tax_id"`
	JoinDate            time.Time      `gorm:"type:date;not null;column:join_date"`
	BillingModel        BillingModel   `gorm:"type:varchar(50);not null;default:'hourly';column:billing_model"`
	Currency            string         `gorm:"type:varchar(3);not null;default:'EUR'"`
	HourlyRate          float64        `gorm:"type:decimal(10,2);not null;default:0;column:hourly_rate"`
	MonthlyRetainer     float64        `gorm:"type:decimal(15,2);not null;default:0;column:monthly_retainer"`
	ProjectFee          float64        `gorm:"type:decimal(15,2);not null;default:0;column:project_fee"`
	EstimatedHoursMonth float64        `gorm:"type:decimal(6,2);not null;default:0;column:estimated_hours_month"`
	Notes               string         `gorm:"type:text"`
	ReferredByID        *uuid.UUID     `gorm:"type:uuid;column:referred_by_id"`
	Tags                pq.StringArray `gorm:"type:text[]"`
	OwnerID             uuid.UUID      `gorm:"type:uuid;not null;index;column:owner_id"`
	Projects            []Project      `gorm:"foreignKey:CustomerID"`
}

// TimeEntry represents a tracked block of work
type TimeEntry struct {
	BaseModel
	CustomerID      uuid.UUID  `gorm:"type:uuid;not null;index;column:customer_id"`
	ProjectID       uuid.UUID  `gorm:"type:uuid;not null;index;column:project_id"`
	TaskID          *uuid.UUID `gorm:"type:uuid;column:task_id"`
	Description     string     `gorm:"type:varchar(500)"`
	StartTime       time.Time  `gorm:"not null;column:start_time"`
	EndTime         time.Time  `gorm:"not null;column:end_time"`
	DurationSeconds int64      `gorm:"not null;default:0;column:duration_seconds"`
	HourlyRate      float64    `gorm:"type:decimal(10,2);not null;default:0;column:hourly_rate"`
	Income          float64    `gorm:"type:decimal(15,2);not null;default:0"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;index;column:owner_id"`
}

// Recalculate derives duration and income from the entry's own fields.
// Duration is end minus start in whole seconds; income is duration in hours
// times the snapshotted hourly rate.
func (e *TimeEntry) Recalculate() {
	e.DurationSeconds = int64(e.EndTime.Sub(e.StartTime).Seconds())
	if e.DurationSeconds < 0 {
		e.DurationSeconds = 0
	}
	e.Income = float64(e.DurationSeconds) / 3600 * e.HourlyRate
}

// Income represents an invoice-like revenue record with VAT
type Income struct {
	BaseModel
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index;column:customer_id"`
	Date            time.Time `gorm:"type:date;not null"`
	InvoiceNumber   string    `gorm:"type:varchar(50);column:invoice_number"`
	VatRate         float64   `gorm:"type:decimal(5,4);not null;default:0;column:vat_rate"`
	AmountBeforeVat float64   `gorm:"type:decimal(15,2);not null;column:amount_before_vat"`
	VatAmount       float64   `gorm:"type:decimal(15,2);not null;default:0;column:vat_amount"`
	FinalAmount     float64   `gorm:"type:decimal(15,2);not null;default:0;column:final_amount"`
	OwnerID         uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id"`
}

// Recalculate derives the VAT and final amounts. Rounding happens at
// presentation, not here.
func (i *Income) Recalculate() {
	i.VatAmount = i.AmountBeforeVat * i.VatRate
	i.FinalAmount = i.AmountBeforeVat + i.VatAmount
}

// ActiveTimer represents the single running work timer for a user
type ActiveTimer struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;column:customer_id"`
	ProjectID  uuid.UUID  `gorm:"type:uuid;not null;column:project_id"`
	TaskID     *uuid.UUID `gorm:"type:uuid;column:task_id"`
	StartTime  time.Time  `gorm:"not null;column:start_time"`
	IsRunning  bool       `gorm:"not null;default:true;column:is_running"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeTaskAssigned    NotificationType = "task_assigned"
	NotificationTypeTaskCompleted   NotificationType = "task_completed"
	NotificationTypeProjectUpdate   NotificationType = "project_update"
	NotificationTypeTimerReminder   NotificationType = "timer_reminder"
	NotificationTypeTrialExpired    NotificationType = "trial_expired"
	NotificationTypePaymentReceived NotificationType = "payment_received"
)

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID  uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id"`
	Type    string     `gorm:"type:varchar(50);not null"`
	Message string     `gorm:"type:varchar(500);not null"`
	Read    bool       `gorm:"column:read;not null;default:false;index"`
	ReadAt  *time.Time `gorm:"column:read_at"`
}

// ActivityType represents the type of activity event
type ActivityType string

const (
	ActivityTypeCreate ActivityType = "create"
	ActivityTypeUpdate ActivityType = "update"
	ActivityTypeDelete ActivityType = "delete"
	ActivityTypeTimer  ActivityType = "timer"
	ActivityTypeSystem ActivityType = "system"
)

// IsValid checks if the ActivityType is a valid enum value
func (at ActivityType) IsValid() bool {
	switch at {
	case ActivityTypeCreate, ActivityTypeUpdate, ActivityTypeDelete, ActivityTypeTimer, ActivityTypeSystem:
		return true
	}
	return false
}

// Activity represents an append-only event log entry scoped to a user
type Activity struct {
	BaseModel
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index;column:user_id"`
	Type        ActivityType `gorm:"type:varchar(50);not null;default:'system'"`
	Description string       `gorm:"type:varchar(500);not null"`
	ActorID     uuid.UUID    `gorm:"type:uuid;not null;column:actor_id"`
	ActorName   string       `gorm:"type:varchar(200);column:actor_name"`
	ProjectID   *uuid.UUID   `gorm:"type:uuid;column:project_id"`
	TaskID      *uuid.UUID   `gorm:"type:uuid;column:task_id"`
	OccurredAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
}

// IsDuplicateOf reports whether two activities describe the same event.
// Same description and actor within one second counts as a double dispatch.
func (a *Activity) IsDuplicateOf(other *Activity) bool {
	if a.Description != other.Description || a.ActorID != other.ActorID {
		return false
	}
	d := a.OccurredAt.Sub(other.OccurredAt)
	if d < 0 {
		d = -d
	}
	return d <= time.Second
}

// SubscriptionPlan represents a billing plan
type SubscriptionPlan string

const (
	PlanTrial  SubscriptionPlan = "trial"
	PlanSolo   SubscriptionPlan = "solo"
	PlanStudio SubscriptionPlan = "studio"
)

// IsValid checks if the SubscriptionPlan is a valid enum value
func (p SubscriptionPlan) IsValid() bool {
	switch p {
	case PlanTrial, PlanSolo, PlanStudio:
		return true
	}
	return false
}

// SubscriptionStatus represents the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusTrialing SubscriptionStatus = "trialing"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Subscription represents a user's billing subscription
type Subscription struct {
	BaseModel
	UserID           uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex;column:user_id"`
	Plan             SubscriptionPlan   `gorm:"type:varchar(50);not null;default:'trial'"`
	Status           SubscriptionStatus `gorm:"type:varchar(50);not null;default:'trialing';index"`
	ProcessorSubID   string             `gorm:"type:varchar(100);column:processor_sub_id;index"`
	TrialEndsAt      *time.Time         `gorm:"column:trial_ends_at"`
	CurrentPeriodEnd *time.Time         `gorm:"column:current_period_end"`
	CanceledAt       *time.Time         `gorm:"column:canceled_at"`
}

// IsTrialExpired reports whether the trial window has passed as of now
func (s *Subscription) IsTrialExpired(now time.Time) bool {
	return s.Status == SubscriptionStatusTrialing && s.TrialEndsAt != nil && s.TrialEndsAt.Before(now)
}

// WebhookEvent records a processed payment-processor event for idempotency
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID     string    `gorm:"type:varchar(100);not null;unique;column:event_id"`
	EventType   string    `gorm:"type:varchar(100);not null;column:event_type"`
	Payload     string    `gorm:"type:jsonb"`
	ProcessedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;column:processed_at"`
}

// BeforeCreate assigns an id when the caller did not set one.
func (w *WebhookEvent) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
