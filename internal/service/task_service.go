package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/auth"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"github.com/loopdesk/loopdesk-api/internal/mapper"
	"github.com/loopdesk/loopdesk-api/internal/repository"
	"github.com/loopdesk/loopdesk-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TaskService struct {
	taskRepo     *repository.TaskRepository
	projectRepo  *repository.ProjectRepository
	projects     *ProjectService
	activity     *ActivityService
	notification *NotificationService
	storage      storage.Storage
	logger       *zap.Logger
}

func NewTaskService(
	taskRepo *repository.TaskRepository,
	projectRepo *repository.ProjectRepository,
	projects *ProjectService,
	activity *ActivityService,
	notification *NotificationService,
	store storage.Storage,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
		projects:     projects,
		activity:     activity,
		notification: notification,
		storage:      store,
		logger:       logger,
	}
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, req *domain.CreateTaskRequest) (*domain.TaskDTO, error) {
	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	status := domain.TaskStatus(req.Status)
	if req.Status == "" {
		status = domain.TaskStatusTodo
	}
	priority := domain.Priority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityMedium
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssigneeIDs: req.AssigneeIDs,
		Status:      status,
		Priority:    priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		CreatorID:   userID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if _, err := s.projects.RecomputeProgress(ctx, task.ProjectID); err != nil {
		s.logger.Warn("failed to recompute project progress",
			zap.String("project_id", task.ProjectID.String()),
			zap.Error(err),
		)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeCreate,
		fmt.Sprintf("Task '%s' was created", task.Title), &task.ProjectID, &task.ID)
	s.notifyAssignees(ctx, task, domain.NotificationTypeTaskAssigned,
		fmt.Sprintf("You were assigned to task '%s'", task.Title))

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, req *domain.UpdateTaskRequest) (*domain.TaskDTO, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	previousStatus := task.Status

	task.Title = req.Title
	task.Description = req.Description
	task.AssigneeIDs = req.AssigneeIDs
	task.Status = domain.TaskStatus(req.Status)
	task.Priority = domain.Priority(req.Priority)
	task.DueDate = req.DueDate
	task.Tags = req.Tags

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if _, err := s.projects.RecomputeProgress(ctx, task.ProjectID); err != nil {
		s.logger.Warn("failed to recompute project progress",
			zap.String("project_id", task.ProjectID.String()),
			zap.Error(err),
		)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeUpdate,
		fmt.Sprintf("Task '%s' was updated", task.Title), &task.ProjectID, &task.ID)

	if previousStatus != domain.TaskStatusCompleted && task.Status == domain.TaskStatusCompleted {
		s.notifyAssignees(ctx, task, domain.NotificationTypeTaskCompleted,
			fmt.Sprintf("Task '%s' was completed", task.Title))
	}

	dto := mapper.ToTaskDTO(task)
	return &dto, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if _, err := s.projects.RecomputeProgress(ctx, task.ProjectID); err != nil {
		s.logger.Warn("failed to recompute project progress",
			zap.String("project_id", task.ProjectID.String()),
			zap.Error(err),
		)
	}

	s.activity.Record(ctx, userID, domain.ActivityTypeDelete,
		fmt.Sprintf("Task '%s' was deleted", task.Title), &task.ProjectID, nil)

	return nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.TaskDTO, error) {
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dtos := make([]domain.TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = mapper.ToTaskDTO(&task)
	}

	return dtos, nil
}

func (s *TaskService) AddComment(ctx context.Context, userID, taskID uuid.UUID, req *domain.CreateTaskCommentRequest) (*domain.TaskCommentDTO, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	authorName := ""
	if userCtx, ok := auth.FromContext(ctx); ok {
		authorName = userCtx.DisplayName
	}

	comment := &domain.TaskComment{
		TaskID:     taskID,
		AuthorID:   userID,
		AuthorName: authorName,
		Body:       req.Body,
	}

	if err := s.taskRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	dto := mapper.ToTaskCommentDTO(comment)
	return &dto, nil
}

func (s *TaskService) AddAttachment(ctx context.Context, userID, taskID uuid.UUID, filename, contentType string, data io.Reader) (*domain.TaskAttachmentDTO, error) {
	if _, err := s.taskRepo.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	attachment := &domain.TaskAttachment{
		TaskID:      taskID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		UploaderID:  userID,
	}

	if err := s.taskRepo.AddAttachment(ctx, attachment); err != nil {
		// Best effort cleanup of the orphaned blob
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned attachment",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	dto := mapper.ToTaskAttachmentDTO(attachment)
	return &dto, nil
}

// DownloadAttachment streams an attachment's content
func (s *TaskService) DownloadAttachment(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, io.ReadCloser, error) {
	attachment, err := s.taskRepo.GetAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	reader, err := s.storage.Download(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download attachment: %w", err)
	}

	return attachment, reader, nil
}

func (s *TaskService) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.taskRepo.GetAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	if err := s.taskRepo.DeleteAttachment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	if err := s.storage.Delete(ctx, attachment.StoragePath); err != nil {
		s.logger.Warn("failed to delete attachment blob",
			zap.String("storage_path", attachment.StoragePath),
			zap.Error(err),
		)
	}

	return nil
}

func (s *TaskService) notifyAssignees(ctx context.Context, task *domain.Task, notificationType domain.NotificationType, message string) {
	for _, assignee := range task.AssigneeIDs {
		assigneeID, err := uuid.Parse(assignee)
		if err != nil {
			continue
		}
		s.notification.Notify(ctx, assigneeID, notificationType, message)
	}
}
