package dto

import (
	"time"

	"github.com/timesheet-app/timesheet-api/internal/models"
)

// TimeEntryDTO represents a time entry in API responses
type TimeEntryDTO struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	ProjectID   uint64          `json:"project_id"`
	TaskID      *uint64         `json:"task_id"`
	WorkDate    string          `json:"work_date"`
	HoursWorked float64         `json:"hours_worked"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Project     *TaskProjectDTO `json:"project,omitempty"`
	Task        *TaskRefDTO     `json:"task,omitempty"`
}

// TaskRefDTO is the minimal task shape embedded in a time entry
type TaskRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ToTimeEntryDTO converts a TimeEntry model to TimeEntryDTO
func ToTimeEntryDTO(entry models.TimeEntry) TimeEntryDTO {
	dto := TimeEntryDTO{
		ID:          entry.ID,
		UserID:      entry.UserID,
		ProjectID:   entry.ProjectID,
		TaskID:      entry.TaskID,
		WorkDate:    entry.WorkDate.Format("2006-01-02"),
		HoursWorked: entry.HoursWorked,
		Description: entry.Description,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}

	if entry.Project.ID != 0 {
		dto.Project = &TaskProjectDTO{
			ID:   entry.Project.ID,
			Name: entry.Project.Name,
		}
	}
	if entry.Task != nil && entry.Task.ID != 0 {
		dto.Task = &TaskRefDTO{
			ID:   entry.Task.ID,
			Name: entry.Task.Name,
		}
	}

	return dto
}

// ToTimeEntryDTOs converts a slice of time entries
func ToTimeEntryDTOs(entries []models.TimeEntry) []TimeEntryDTO {
	items := make([]TimeEntryDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToTimeEntryDTO(entry)
	}
	return items
}
