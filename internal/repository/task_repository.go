package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/loopdesk/loopdesk-api/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Comments").
		Preload("Attachments").
		Where("id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}

// ListByProject returns all tasks of a project ordered by creation
func (r *TaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListByProjects returns all tasks belonging to the given projects
func (r *TaskRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]domain.Task, error) {
	if len(projectIDs) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Preload("Comments").
		Preload("Attachments").
		Where("project_id IN ?", projectIDs).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) CountOpenByProjects(ctx context.Context, projectIDs []uuid.UUID) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("project_id IN ? AND status <> ?", projectIDs, domain.TaskStatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *TaskRepository) AddComment(ctx context.Context, comment *domain.TaskComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *TaskRepository) ListComments(ctx context.Context, taskID uuid.UUID) ([]domain.TaskComment, error) {
	var comments []domain.TaskComment
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *TaskRepository) AddAttachment(ctx context.Context, attachment *domain.TaskAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *TaskRepository) GetAttachment(ctx context.Context, id uuid.UUID) (*domain.TaskAttachment, error) {
	var attachment domain.TaskAttachment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *TaskRepository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TaskAttachment{}, "id = ?", id).Error
}
