package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectService struct {
	projectRepo *repository.ProjectRepository
	taskRepo    *repository.TaskRepository
	activity    *ActivityService
	logger      *zap.Logger
}

func NewProjectService(
	projectRepo *repository.ProjectRepository,
	taskRepo *repository.TaskRepository,
	activity *ActivityService,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		activity:    activity,
		logger:      logger,
	}
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateProjectRequest) (*domain.ProjectDTO, error) {
	status := domain.ProjectStatus(req.Status)
	if req.Status == "" {
		status = domain.ProjectStatusPlanning
	}
	priority := domain.Priority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityMedium
	}

	project := &domain.Project{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
		Priority:    priority,
		MemberIDs:   req.MemberIDs,
		CustomerID:  req.CustomerID,
		CreatorID:   userID,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeCreate,
		fmt.Sprintf("Project '%s' was created", project.Title), &project.ID, nil)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Update(ctx context.Context, userID, id uuid.UUID, req *domain.UpdateProjectRequest) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	project.Title = req.Title
	project.Description = req.Description
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	project.Status = domain.ProjectStatus(req.Status)
	project.Priority = domain.Priority(req.Priority)
	project.MemberIDs = req.MemberIDs
	project.CustomerID = req.CustomerID

	// Progress is derived, never taken from the request
	project.Progress = domain.ComputeProgress(project.Tasks)

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeUpdate,
		fmt.Sprintf("Project '%s' was updated", project.Title), &project.ID, nil)

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeDelete,
		fmt.Sprintf("Project '%s' was deleted", project.Title), nil, nil)

	return nil
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	projects, total, err := s.projectRepo.ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = mapper.ToProjectDTO(&project)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// RecomputeProgress re-derives the progress of a project from its current
// task set and persists the value when it changed
func (s *ProjectService) RecomputeProgress(ctx context.Context, projectID uuid.UUID) (int, error) {
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to list project tasks: %w", err)
	}

	progress := domain.ComputeProgress(tasks)

	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to get project: %w", err)
	}

	if project.Progress != progress {
		if err := s.projectRepo.UpdateProgress(ctx, projectID, progress); err != nil {
			return 0, fmt.Errorf("failed to persist project progress: %w", err)
		}
	}

	return progress, nil
}
