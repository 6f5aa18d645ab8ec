package mapper

import (
	"github.com/loopdesk/loopdesk-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Avatar:      user.Avatar,
		IsOnline:    user.IsOnline,
		CreatedAt:   user.CreatedAt.Format(timeFormat),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		StartDate:   project.StartDate.Format(timeFormat),
		Status:      project.Status,
		Progress:    project.Progress,
		Priority:    project.Priority,
		MemberIDs:   stringSlice(project.MemberIDs),
		CustomerID:  project.CustomerID,
		CreatorID:   project.CreatorID,
		CreatedAt:   project.CreatedAt.Format(timeFormat),
		UpdatedAt:   project.UpdatedAt.Format(timeFormat),
	}

	if project.EndDate != nil {
		dto.EndDate = project.EndDate.Format(timeFormat)
	}

	return dto
}

// ToTaskDTO converts Task to TaskDTO
func ToTaskDTO(task *domain.Task) domain.TaskDTO {
	comments := make([]domain.TaskCommentDTO, len(task.Comments))
	for i, comment := range task.Comments {
		comments[i] = ToTaskCommentDTO(&comment)
	}

	attachments := make([]domain.TaskAttachmentDTO, len(task.Attachments))
	for i, attachment := range task.Attachments {
		attachments[i] = ToTaskAttachmentDTO(&attachment)
	}

	dto := domain.TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   task.ProjectID,
		AssigneeIDs: stringSlice(task.AssigneeIDs),
		Status:      task.Status,
		Priority:    task.Priority,
		Tags:        stringSlice(task.Tags),
		Comments:    comments,
		Attachments: attachments,
		CreatedAt:   task.CreatedAt.Format(timeFormat),
		UpdatedAt:   task.UpdatedAt.Format(timeFormat),
	}

	if task.DueDate != nil {
		dto.DueDate = task.DueDate.Format(timeFormat)
	}

	return dto
}

// ToTaskCommentDTO converts TaskComment to TaskCommentDTO
func ToTaskCommentDTO(comment *domain.TaskComment) domain.TaskCommentDTO {
	return domain.TaskCommentDTO{
		ID:         comment.ID,
		TaskID:     comment.TaskID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt.Format(timeFormat),
	}
}

// ToTaskAttachmentDTO converts TaskAttachment to TaskAttachmentDTO
func ToTaskAttachmentDTO(attachment *domain.TaskAttachment) domain.TaskAttachmentDTO {
	return domain.TaskAttachmentDTO{
		ID:          attachment.ID,
		TaskID:      attachment.TaskID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		CreatedAt:   attachment.CreatedAt.Format(timeFormat),
	}
}

// ToCustomerDTO converts Customer to CustomerDTO
func ToCustomerDTO(customer *domain.Customer) domain.CustomerDTO {
	return domain.CustomerDTO{
		ID:                  customer.ID,
		Name:                customer.Name,
		Status:              customer.Status,
		Email:               customer.Email,
		Phone:               customer.Phone,
		Country:             customer.Country,
		TaxID:               customer.TaxID,
		JoinDate:            customer.JoinDate.Format(timeFormat),
		BillingModel:        customer.BillingModel,
		Currency:            customer.Currency,
		HourlyRate:          customer.HourlyRate,
		MonthlyRetainer:     customer.MonthlyRetainer,
		ProjectFee:          customer.ProjectFee,
		EstimatedHoursMonth: customer.EstimatedHoursMonth,
		Notes:               customer.Notes,
		ReferredByID:        customer.ReferredByID,
		Tags:                stringSlice(customer.Tags),
		CreatedAt:           customer.CreatedAt.Format(timeFormat),
		UpdatedAt:           customer.UpdatedAt.Format(timeFormat),
	}
}

// ToTimeEntryDTO converts TimeEntry to TimeEntryDTO
func ToTimeEntryDTO(entry *domain.TimeEntry) domain.TimeEntryDTO {
	return domain.TimeEntryDTO{
		ID:              entry.ID,
		CustomerID:      entry.CustomerID,
		ProjectID:       entry.ProjectID,
		TaskID:          entry.TaskID,
		Description:     entry.Description,
		StartTime:       entry.StartTime.Format(timeFormat),
		EndTime:         entry.EndTime.Format(timeFormat),
		DurationSeconds: entry.DurationSeconds,
		HourlyRate:      entry.HourlyRate,
		Income:          entry.Income,
		CreatedAt:       entry.CreatedAt.Format(timeFormat),
	}
}

// ToIncomeDTO converts Income to IncomeDTO
func ToIncomeDTO(income *domain.Income) domain.IncomeDTO {
	return domain.IncomeDTO{
		ID:              income.ID,
		CustomerID:      income.CustomerID,
		Date:            income.Date.Format(timeFormat),
		InvoiceNumber:   income.InvoiceNumber,
		VatRate:         income.VatRate,
		AmountBeforeVat: income.AmountBeforeVat,
		VatAmount:       income.VatAmount,
		FinalAmount:     income.FinalAmount,
		CreatedAt:       income.CreatedAt.Format(timeFormat),
	}
}

// ToActiveTimerDTO converts ActiveTimer to ActiveTimerDTO
func ToActiveTimerDTO(timer *domain.ActiveTimer) domain.ActiveTimerDTO {
	return domain.ActiveTimerDTO{
		ID:         timer.ID,
		CustomerID: timer.CustomerID,
		ProjectID:  timer.ProjectID,
		TaskID:     timer.TaskID,
		StartTime:  timer.StartTime.Format(timeFormat),
		IsRunning:  timer.IsRunning,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		Type:      notification.Type,
		Message:   notification.Message,
		Read:      notification.Read,
		CreatedAt: notification.CreatedAt.Format(timeFormat),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		Type:        activity.Type,
		Description: activity.Description,
		ActorID:     activity.ActorID,
		ActorName:   activity.ActorName,
		ProjectID:   activity.ProjectID,
		TaskID:      activity.TaskID,
		OccurredAt:  activity.OccurredAt.Format(timeFormat),
	}
}

// ToSubscriptionDTO converts Subscription to SubscriptionDTO
func ToSubscriptionDTO(subscription *domain.Subscription) domain.SubscriptionDTO {
	dto := domain.SubscriptionDTO{
		ID:     subscription.ID,
		Plan:   subscription.Plan,
		Status: subscription.Status,
	}

	if subscription.TrialEndsAt != nil {
		dto.TrialEndsAt = subscription.TrialEndsAt.Format(timeFormat)
	}
	if subscription.CurrentPeriodEnd != nil {
		dto.CurrentPeriodEnd = subscription.CurrentPeriodEnd.Format(timeFormat)
	}

	return dto
}

// stringSlice converts a possibly-nil array column to a non-nil slice
func stringSlice(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
