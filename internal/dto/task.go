package dto

import (
	"time"

	"github.com/timesheet-app/timesheet-api/internal/models"
)

// TaskProjectDTO is the minimal project shape embedded in a task
type TaskProjectDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              uint64            `json:"id"`
	ProjectID       uint64            `json:"project_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Status          models.TaskStatus `json:"status"`
	DueDate         *time.Time        `json:"due_date"`
	AttachmentPath  *string           `json:"attachment_path"`
	TotalHoursSpent float64           `json:"total_hours_spent"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Project         *TaskProjectDTO   `json:"project,omitempty"`
	Users           []UserRefDTO      `json:"users"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	users := make([]UserRefDTO, len(task.Users))
	for i, user := range task.Users {
		users[i] = ToUserRefDTO(user)
	}

	dto := TaskDTO{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		Name:            task.Name,
		Description:     task.Description,
		Status:          task.Status,
		DueDate:         task.DueDate,
		AttachmentPath:  task.AttachmentPath,
		TotalHoursSpent: task.TotalHoursSpent,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
		Users:           users,
	}

	// Include project if loaded
	if task.Project.ID != 0 {
		dto.Project = &TaskProjectDTO{
			ID:   task.Project.ID,
			Name: task.Project.Name,
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}
