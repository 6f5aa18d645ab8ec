// Package remote is the typed HTTP client for the backend API. Every call
// is a single request with no retry or backoff; failures surface as an
// *APIError carrying the HTTP status so callers can decide how to degrade.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"go.uber.org/zap"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks JSON to the backend. The bearer token is set after login
// and sent on every subsequent request.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// SetToken installs the bearer token used for authenticated calls. An
// empty token reverts the client to unauthenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp domain.ErrorResponse
		message := resp.Status
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &errResp) == nil && errResp.Message != "" {
				message = errResp.Message
			}
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Auth

func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Signout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/signout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*domain.UserDTO, error) {
	var user domain.UserDTO
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Projects

func (c *Client) Projects(ctx context.Context) ([]domain.ProjectDTO, error) {
	var projects []domain.ProjectDTO
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	var project domain.ProjectDTO
	if err := c.do(ctx, http.MethodPost, "/api/projects", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id uuid.UUID, req domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	var project domain.ProjectDTO
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+id.String(), req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+id.String(), nil, nil)
}

// Tasks

func (c *Client) Tasks(ctx context.Context, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	var tasks []domain.TaskDTO
	path := "/api/tasks?projectId=" + url.QueryEscape(projectID.String())
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, req domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	var task domain.TaskDTO
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, req domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	var task domain.TaskDTO
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+id.String(), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil)
}

// Customers

func (c *Client) Customers(ctx context.Context) ([]domain.CustomerDTO, error) {
	var page struct {
		Data []domain.CustomerDTO `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/customers?pageSize=200", nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	var customer domain.CustomerDTO
	if err := c.do(ctx, http.MethodPost, "/api/customers", req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id uuid.UUID, req domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	var customer domain.CustomerDTO
	if err := c.do(ctx, http.MethodPut, "/api/customers/"+id.String(), req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/customers/"+id.String(), nil, nil)
}

// Time entries

func (c *Client) TimeEntries(ctx context.Context) ([]domain.TimeEntryDTO, error) {
	var entries []domain.TimeEntryDTO
	if err := c.do(ctx, http.MethodGet, "/api/time-entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) CreateTimeEntry(ctx context.Context, req domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	var entry domain.TimeEntryDTO
	if err := c.do(ctx, http.MethodPost, "/api/time-entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) UpdateTimeEntry(ctx context.Context, id uuid.UUID, req domain.CreateTimeEntryRequest) (*domain.TimeEntryDTO, error) {
	var entry domain.TimeEntryDTO
	if err := c.do(ctx, http.MethodPut, "/api/time-entries/"+id.String(), req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) DeleteTimeEntry(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/time-entries/"+id.String(), nil, nil)
}

// Incomes

func (c *Client) Incomes(ctx context.Context) ([]domain.IncomeDTO, error) {
	var incomes []domain.IncomeDTO
	if err := c.do(ctx, http.MethodGet, "/api/incomes", nil, &incomes); err != nil {
		return nil, err
	}
	return incomes, nil
}

func (c *Client) CreateIncome(ctx context.Context, req domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	var income domain.IncomeDTO
	if err := c.do(ctx, http.MethodPost, "/api/incomes", req, &income); err != nil {
		return nil, err
	}
	return &income, nil
}

func (c *Client) UpdateIncome(ctx context.Context, id uuid.UUID, req domain.CreateIncomeRequest) (*domain.IncomeDTO, error) {
	var income domain.IncomeDTO
	if err := c.do(ctx, http.MethodPut, "/api/incomes/"+id.String(), req, &income); err != nil {
		return nil, err
	}
	return &income, nil
}

func (c *Client) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/incomes/"+id.String(), nil, nil)
}

// Activities

func (c *Client) Activities(ctx context.Context) ([]domain.ActivityDTO, error) {
	var activities []domain.ActivityDTO
	if err := c.do(ctx, http.MethodGet, "/api/activities", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) AppendActivity(ctx context.Context, req domain.CreateActivityRequest) (*domain.ActivityDTO, error) {
	var activity domain.ActivityDTO
	if err := c.do(ctx, http.MethodPost, "/api/events", req, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Timer

func (c *Client) StartTimer(ctx context.Context, req domain.StartTimerRequest) (*domain.ActiveTimerDTO, error) {
	var timer domain.ActiveTimerDTO
	if err := c.do(ctx, http.MethodPost, "/api/timer/start", req, &timer); err != nil {
		return nil, err
	}
	return &timer, nil
}

func (c *Client) StopTimer(ctx context.Context) (*domain.TimeEntryDTO, error) {
	var entry domain.TimeEntryDTO
	if err := c.do(ctx, http.MethodPost, "/api/timer/stop", nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Bootstrap fetches every collection for the signed-in user in one round
// trip.
func (c *Client) Bootstrap(ctx context.Context) (*domain.DashboardSnapshot, error) {
	var snapshot domain.DashboardSnapshot
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// FetchAllIndividually is the fallback for a failed consolidated fetch: it
// issues the per-collection calls sequentially. A failed collection is
// logged and left empty rather than failing the whole snapshot.
func (c *Client) FetchAllIndividually(ctx context.Context) *domain.DashboardSnapshot {
	snapshot := &domain.DashboardSnapshot{
		Projects:      []domain.ProjectDTO{},
		Tasks:         []domain.TaskDTO{},
		Customers:     []domain.CustomerDTO{},
		TimeEntries:   []domain.TimeEntryDTO{},
		Incomes:       []domain.IncomeDTO{},
		Notifications: []domain.NotificationDTO{},
		Activities:    []domain.ActivityDTO{},
	}

	if user, err := c.Me(ctx); err != nil {
		c.logger.Warn("Profile fetch failed, continuing without it", zap.Error(err))
	} else {
		snapshot.User = user
	}

	if projects, err := c.Projects(ctx); err != nil {
		c.logger.Warn("Project fetch failed, treating as empty", zap.Error(err))
	} else {
		snapshot.Projects = projects
	}

	for _, project := range snapshot.Projects {
		tasks, err := c.Tasks(ctx, project.ID)
		if err != nil {
			c.logger.Warn("Task fetch failed, treating as empty",
				zap.String("project_id", project.ID.String()),
				zap.Error(err),
			)
			continue
		}
		snapshot.Tasks = append(snapshot.Tasks, tasks...)
	}

	if customers, err := c.Customers(ctx); err != nil {
		c.logger.Warn("Customer fetch failed, treating as empty", zap.Error(err))
	} else {
		snapshot.Customers = customers
	}

	if entries, err := c.TimeEntries(ctx); err != nil {
		c.logger.Warn("Time entry fetch failed, treating as empty", zap.Error(err))
	} else {
		snapshot.TimeEntries = entries
	}

	if incomes, err := c.Incomes(ctx); err != nil {
		c.logger.Warn("Income fetch failed, treating as empty", zap.Error(err))
	} else {
		snapshot.Incomes = incomes
	}

	if activities, err := c.Activities(ctx); err != nil {
		c.logger.Warn("Activity fetch failed, treating as empty", zap.Error(err))
	} else {
		snapshot.Activities = activities
	}

	return snapshot
}
