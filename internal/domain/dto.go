package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents a simple error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SignupRequest is the payload for account creation
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=200"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for credential login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries a session token and the authenticated user
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UpdateProfileRequest is the payload for profile edits
type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=200"`
	Avatar      string `json:"avatar" validate:"omitempty,url,max=500"`
}

// UserDTO is the API representation of a user
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        UserRole  `json:"role"`
	Avatar      string    `json:"avatar,omitempty"`
	IsOnline    bool      `json:"isOnline"`
	CreatedAt   string    `json:"createdAt"`
}

// CreateProjectRequest is the payload for project creation
type CreateProjectRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `json:"status" validate:"omitempty,oneof=planning in_progress completed on_hold"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	MemberIDs   []string   `json:"memberIds" validate:"dive,uuid"`
	CustomerID  *uuid.UUID `json:"customerId"`
}

// UpdateProjectRequest is the payload for project updates
type UpdateProjectRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `json:"status" validate:"required,oneof=planning in_progress completed on_hold"`
	Priority    string     `json:"priority" validate:"required,oneof=low medium high"`
	MemberIDs   []string   `json:"memberIds" validate:"dive,uuid"`
	CustomerID  *uuid.UUID `json:"customerId"`
}

// ProjectDTO is the API representation of a project
type ProjectDTO struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate,omitempty"`
	Status      ProjectStatus `json:"status"`
	Progress    int           `json:"progress"`
	Priority    Priority      `json:"priority"`
	MemberIDs   []string      `json:"memberIds"`
	CustomerID  *uuid.UUID    `json:"customerId,omitempty"`
	CreatorID   uuid.UUID     `json:"creatorId"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

// CreateTaskRequest is the payload for task creation
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	ProjectID   uuid.UUID  `json:"projectId" validate:"required"`
	AssigneeIDs []string   `json:"assigneeIds" validate:"dive,uuid"`
	Status      string     `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags" validate:"dive,max=50"`
}

// UpdateTaskRequest is the payload for task updates
type UpdateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	AssigneeIDs []string   `json:"assigneeIds" validate:"dive,uuid"`
	Status      string     `json:"status" validate:"required,oneof=todo in_progress completed"`
	Priority    string     `json:"priority" validate:"required,oneof=low medium high"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags" validate:"dive,max=50"`
}

// TaskDTO is the API representation of a task
type TaskDTO struct {
	ID          uuid.UUID           `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	ProjectID   uuid.UUID           `json:"projectId"`
	AssigneeIDs []string            `json:"assigneeIds"`
	Status      TaskStatus          `json:"status"`
	Priority    Priority            `json:"priority"`
	DueDate     string              `json:"dueDate,omitempty"`
	Tags        []string            `json:"tags"`
	Comments    []TaskCommentDTO    `json:"comments"`
	Attachments []TaskAttachmentDTO `json:"attachments"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

// CreateTaskCommentRequest is the payload for commenting on a task
type CreateTaskCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// TaskCommentDTO is the API representation of a task comment
type TaskCommentDTO struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"taskId"`
	AuthorID   uuid.UUID `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  string    `json:"createdAt"`
}

// TaskAttachmentDTO is the API representation of a task attachment
type TaskAttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"taskId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   string    `json:"createdAt"`
}

// CreateCustomerRequest is the payload for customer creation
type CreateCustomerRequest struct {
	Name                string     `json:"name" validate:"required,max=200"`
	Status              string     `json:"status" validate:"omitempty,oneof=active trial paused churned"`
	Email               string     `json:"email" validate:"omitempty,email"`
	Phone               string     `json:"phone" validate:"max=50"`
	Country             string     `json:"country" validate:"max=100"`
	TaxID               string     `json:"taxId" validate:"max=50"`
	JoinDate            time.Time  `json:"joinDate"`
	BillingModel        string     `json:"billingModel" validate:"omitempty,oneof=hourly retainer project"`
	Currency            string     `json:"currency" validate:"omitempty,len=3"`
	HourlyRate          float64    `json:"hourlyRate" validate:"gte=0"`
	MonthlyRetainer     float64    `json:"monthlyRetainer" validate:"gte=0"`
	ProjectFee          float64    `json:"projectFee" validate:"gte=0"`
	EstimatedHoursMonth float64    `json:"estimatedHoursMonth" validate:"gte=0"`
	Notes               string     `json:"notes" validate:"max=5000"`
	ReferredByID        *uuid.UUID `json:"referredById"`
	Tags                []string   `json:"tags" validate:"dive,max=50"`
}

// UpdateCustomerRequest is the payload for customer updates
type UpdateCustomerRequest struct {
	Name                string     `json:"name" validate:"required,max=200"`
	Status              string     `json:"status" validate:"required,oneof=active trial paused churned"`
	Email               string     `json:"email" validate:"omitempty,email"`
	Phone               string     `json:"phone" validate:"max=50"`
	Country             string     `json:"country" validate:"max=100"`
	TaxID               string     `json:"taxId" validate:"max=50"`
	JoinDate            time.Time  `json:"joinDate"`
	BillingModel        string     `json:"billingModel" validate:"required,oneof=hourly retainer project"`
	Currency            string     `json:"currency" validate:"omitempty,len=3"`
	HourlyRate          float64    `json:"hourlyRate" validate:"gte=0"`
	MonthlyRetainer     float64    `json:"monthlyRetainer" validate:"gte=0"`
	ProjectFee          float64    `json:"projectFee" validate:"gte=0"`
	EstimatedHoursMonth float64    `json:"estimatedHoursMonth" validate:"gte=0"`
	Notes               string     `json:"notes" validate:"max=5000"`
	ReferredByID        *uuid.UUID `json:"referredById"`
	Tags                []string   `json:"tags" validate:"dive,max=50"`
}

// CustomerDTO is the API representation of a customer
type CustomerDTO struct {
	ID                  uuid.UUID      `json:"id"`
	Name                string         `json:"name"`
	Status              CustomerStatus `json:"status"`
	Email               string         `json:"email,omitempty"`
	Phone               string         `json:"phone,omitempty"`
	Country             string         `json:"country,omitempty"`
	TaxID               string         `json:"taxId,omitempty"`
	JoinDate            string         `json:"joinDate"`
	BillingModel        BillingModel   `json:"billingModel"`
	Currency            string         `json:"currency"`
	HourlyRate          float64        `json:"hourlyRate"`
	MonthlyRetainer     float64        `json:"monthlyRetainer"`
	ProjectFee          float64        `json:"projectFee"`
	EstimatedHoursMonth float64        `json:"estimatedHoursMonth"`
	Notes               string         `json:"notes,omitempty"`
	ReferredByID        *uuid.UUID     `json:"referredById,omitempty"`
	Tags                []string       `json:"tags"`
	CreatedAt           string         `json:"createdAt"`
	UpdatedAt           string         `json:"updatedAt"`
}

// CreateTimeEntryRequest is the payload for manual time entry creation
type CreateTimeEntryRequest struct {
	CustomerID  uuid.UUID  `json:"customerId" validate:"required"`
	ProjectID   uuid.UUID  `json:"projectId" validate:"required"`
	TaskID      *uuid.UUID `json:"taskId"`
	Description string     `json:"description" validate:"max=500"`
	StartTime   time.Time  `json:"startTime" validate:"required"`
	EndTime     time.Time  `json:"endTime" validate:"required,gtfield=StartTime"`
	HourlyRate  float64    `json:"hourlyRate" validate:"gte=0"`
}

// TimeEntryDTO is the API representation of a time entry
type TimeEntryDTO struct {
	ID              uuid.UUID  `json:"id"`
	CustomerID      uuid.UUID  `json:"customerId"`
	ProjectID       uuid.UUID  `json:"projectId"`
	TaskID          *uuid.UUID `json:"taskId,omitempty"`
	Description     string     `json:"description,omitempty"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	DurationSeconds int64      `json:"durationSeconds"`
	HourlyRate      float64    `json:"hourlyRate"`
	Income          float64    `json:"income"`
	CreatedAt       string     `json:"createdAt"`
}

// CreateIncomeRequest is the payload for income record creation
type CreateIncomeRequest struct {
	CustomerID      uuid.UUID `json:"customerId" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	InvoiceNumber   string    `json:"invoiceNumber" validate:"max=50"`
	VatRate         float64   `json:"vatRate" validate:"gte=0,lte=1"`
	AmountBeforeVat float64   `json:"amountBeforeVat" validate:"required,gt=0"`
}

// IncomeDTO is the API representation of an income record
type IncomeDTO struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customerId"`
	Date            string    `json:"date"`
	InvoiceNumber   string    `json:"invoiceNumber,omitempty"`
	VatRate         float64   `json:"vatRate"`
	AmountBeforeVat float64   `json:"amountBeforeVat"`
	VatAmount       float64   `json:"vatAmount"`
	FinalAmount     float64   `json:"finalAmount"`
	CreatedAt       string    `json:"createdAt"`
}

// StartTimerRequest is the payload for starting the work timer
type StartTimerRequest struct {
	CustomerID uuid.UUID  `json:"customerId" validate:"required"`
	ProjectID  uuid.UUID  `json:"projectId" validate:"required"`
	TaskID     *uuid.UUID `json:"taskId"`
}

// ActiveTimerDTO is the API representation of the running timer
type ActiveTimerDTO struct {
	ID         uuid.UUID  `json:"id"`
	CustomerID uuid.UUID  `json:"customerId"`
	ProjectID  uuid.UUID  `json:"projectId"`
	TaskID     *uuid.UUID `json:"taskId,omitempty"`
	StartTime  string     `json:"startTime"`
	IsRunning  bool       `json:"isRunning"`
}

// NotificationDTO is the API representation of a notification
type NotificationDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt string    `json:"createdAt"`
}

// UnreadCountDTO carries the unread notification count
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// CreateActivityRequest is the payload for appending an activity event
type CreateActivityRequest struct {
	Type        string     `json:"type" validate:"required,oneof=create update delete timer system"`
	Description string     `json:"description" validate:"required,max=500"`
	ProjectID   *uuid.UUID `json:"projectId"`
	TaskID      *uuid.UUID `json:"taskId"`
	OccurredAt  *time.Time `json:"occurredAt"`
}

// ActivityDTO is the API representation of an activity event
type ActivityDTO struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	ActorID     uuid.UUID    `json:"actorId"`
	ActorName   string       `json:"actorName,omitempty"`
	ProjectID   *uuid.UUID   `json:"projectId,omitempty"`
	TaskID      *uuid.UUID   `json:"taskId,omitempty"`
	OccurredAt  string       `json:"occurredAt"`
}

// ChangePlanRequest is the payload for switching subscription plans
type ChangePlanRequest struct {
	Plan string `json:"plan" validate:"required,oneof=solo studio"`
}

// SubscriptionDTO is the API representation of a subscription
type SubscriptionDTO struct {
	ID               uuid.UUID          `json:"id"`
	Plan             SubscriptionPlan   `json:"plan"`
	Status           SubscriptionStatus `json:"status"`
	TrialEndsAt      string             `json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd string             `json:"currentPeriodEnd,omitempty"`
}

// CustomerScore holds the detailed score breakdown for one customer
type CustomerScore struct {
	CustomerID    uuid.UUID `json:"customerId"`
	CustomerName  string    `json:"customerName"`
	TrackedHours  float64   `json:"trackedHours"`
	Revenue       float64   `json:"revenue"`
	IncomePerHour float64   `json:"incomePerHour"`
	Score         float64   `json:"score"`
}

// DashboardAnalytics holds derived metrics for the dashboard
type DashboardAnalytics struct {
	TotalHours     float64         `json:"totalHours"`
	TotalIncome    float64         `json:"totalIncome"`
	IncomePerHour  float64         `json:"incomePerHour"`
	ActiveProjects int             `json:"activeProjects"`
	OpenTasks      int             `json:"openTasks"`
	CustomerScores []CustomerScore `json:"customerScores"`
}

// DashboardSnapshot aggregates all collections for one user in a single
// response so clients can bootstrap with one round trip
type DashboardSnapshot struct {
	User          *UserDTO           `json:"user,omitempty"`
	Projects      []ProjectDTO       `json:"projects"`
	Tasks         []TaskDTO          `json:"tasks"`
	Customers     []CustomerDTO      `json:"customers"`
	TimeEntries   []TimeEntryDTO     `json:"timeEntries"`
	Incomes       []IncomeDTO        `json:"incomes"`
	Notifications []NotificationDTO  `json:"notifications"`
	Activities    []ActivityDTO      `json:"activities"`
	ActiveTimer   *ActiveTimerDTO    `json:"activeTimer,omitempty"`
	Analytics     DashboardAnalytics `json:"analytics"`
}

// AdminStats holds platform-wide counters for the admin view
type AdminStats struct {
	TotalUsers         int64 `json:"totalUsers"`
	ActiveSubscription int64 `json:"activeSubscriptions"`
	TrialingUsers      int64 `json:"trialingUsers"`
	TotalProjects      int64 `json:"totalProjects"`
}
