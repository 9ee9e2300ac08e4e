package dto

import (
	"time"

	"github.com/timesheet-app/timesheet-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID              uint64       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	StartDate       *time.Time   `json:"start_date"`
	EndDate         *time.Time   `json:"end_date"`
	TotalHoursSpent float64      `json:"total_hours_spent"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Users           []UserRefDTO `json:"users"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO `json:"projects"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalCount int64        `json:"total_count"`
	TotalPages int          `json:"total_pages"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	users := make([]UserRefDTO, len(project.Users))
	for i, user := range project.Users {
		users[i] = ToUserRefDTO(user)
	}

	return ProjectDTO{
		ID:              project.ID,
		Name:            project.Name,
		Description:     project.Description,
		StartDate:       project.StartDate,
		EndDate:         project.EndDate,
		TotalHoursSpent: project.TotalHoursSpent,
		CreatedAt:       project.CreatedAt,
		UpdatedAt:       project.UpdatedAt,
		Users:           users,
	}
}

// ToProjectListResponse converts a slice of projects to ProjectListResponse
func ToProjectListResponse(projects []models.Project, page, pageSize int, totalCount int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}

	return ProjectListResponse{
		Projects:   items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}
