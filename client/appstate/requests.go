package appstate

import (
	"time"

	"github.com/loopdesk/loopdesk-api/internal/domain"
)

// Converters from the optimistic local entities back to API request
// bodies for reconciliation.

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseDate(s)
	return &t
}

func createProjectRequest(p domain.ProjectDTO) domain.CreateProjectRequest {
	return domain.CreateProjectRequest{
		Title:       p.Title,
		Description: p.Description,
		StartDate:   parseDate(p.StartDate),
		EndDate:     parseOptionalDate(p.EndDate),
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		MemberIDs:   p.MemberIDs,
		CustomerID:  p.CustomerID,
	}
}

func updateProjectRequest(p domain.ProjectDTO) domain.UpdateProjectRequest {
	return domain.UpdateProjectRequest{
		Title:       p.Title,
		Description: p.Description,
		StartDate:   parseDate(p.StartDate),
		EndDate:     parseOptionalDate(p.EndDate),
		Status:      string(p.Status),
		Priority:    string(p.Priority),
		MemberIDs:   p.MemberIDs,
		CustomerID:  p.CustomerID,
	}
}

func createTaskRequest(t domain.TaskDTO) domain.CreateTaskRequest {
	return domain.CreateTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		AssigneeIDs: t.AssigneeIDs,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     parseOptionalDate(t.DueDate),
		Tags:        t.Tags,
	}
}

func updateTaskRequest(t domain.TaskDTO) domain.UpdateTaskRequest {
	return domain.UpdateTaskRequest{
		Title:       t.Title,
		Description: t.Description,
		AssigneeIDs: t.AssigneeIDs,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     parseOptionalDate(t.DueDate),
		Tags:        t.Tags,
	}
}

func createCustomerRequest(c domain.CustomerDTO) domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		Name:                c.Name,
		Status:              string(c.Status),
		Email:               c.Email,
		Phone:               c.Phone,
		Country:             c.Country,
		TaxID:               c.TaxID,
		JoinDate:            parseDate(c.JoinDate),
		BillingModel:        string(c.BillingModel),
		Currency:            c.Currency,
		HourlyRate:          c.HourlyRate,
		MonthlyRetainer:     c.MonthlyRetainer,
		ProjectFee:          c.ProjectFee,
		EstimatedHoursMonth: c.EstimatedHoursMonth,
		Notes:               c.Notes,
		ReferredByID:        c.ReferredByID,
		Tags:                c.Tags,
	}
}

func updateCustomerRequest(c domain.CustomerDTO) domain.UpdateCustomerRequest {
	return domain.UpdateCustomerRequest{
		Name:                c.Name,
		Status:              string(c.Status),
		Email:               c.Email,
		Phone:               c.Phone,
		Country:             c.Country,
		TaxID:               c.TaxID,
		JoinDate:            parseDate(c.JoinDate),
		BillingModel:        string(c.BillingModel),
		Currency:            c.Currency,
		HourlyRate:          c.HourlyRate,
		MonthlyRetainer:     c.MonthlyRetainer,
		ProjectFee:          c.ProjectFee,
		EstimatedHoursMonth: c.EstimatedHoursMonth,
		Notes:               c.Notes,
		ReferredByID:        c.ReferredByID,
		Tags:                c.Tags,
	}
}

func timeEntryRequest(e domain.TimeEntryDTO) domain.CreateTimeEntryRequest {
	return domain.CreateTimeEntryRequest{
		CustomerID:  e.CustomerID,
		ProjectID:   e.ProjectID,
		TaskID:      e.TaskID,
		Description: e.Description,
		StartTime:   parseDate(e.StartTime),
		EndTime:     parseDate(e.EndTime),
		HourlyRate:  e.HourlyRate,
	}
}

func incomeRequest(i domain.IncomeDTO) domain.CreateIncomeRequest {
	return domain.CreateIncomeRequest{
		CustomerID:      i.CustomerID,
		Date:            parseDate(i.Date),
		InvoiceNumber:   i.InvoiceNumber,
		VatRate:         i.VatRate,
		AmountBeforeVat: i.AmountBeforeVat,
	}
}

func activityRequest(a domain.ActivityDTO) domain.CreateActivityRequest {
	occurred := parseDate(a.OccurredAt)
	return domain.CreateActivityRequest{
		Type:        string(a.Type),
		Description: a.Description,
		ProjectID:   a.ProjectID,
		TaskID:      a.TaskID,
		OccurredAt:  &occurred,
	}
}
