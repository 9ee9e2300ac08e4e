package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type Task struct {
	ID             uint64     `gorm:"primarykey" json:"id"`
	ProjectID      uint64     `gorm:"not null;index" json:"project_id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Description    string     `gorm:"type:text" json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'TODO'" json:"status"`
	AttachmentPath *string    `gorm:"type:varchar(500)" json:"attachment_path"`

	// Cache of SUM(hours_worked) over this task's non-deleted time entries,
	// maintained alongside Project.TotalHoursSpent.
	TotalHoursSpent float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total_hours_spent"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `gorm:"type:varchar(100)" json:"created_by"`
	UpdatedBy string         `gorm:"type:varchar(100)" json:"updated_by"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project     Project          `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`

	// Users is filled by the repository's join fold, not persisted.
	Users []User `gorm:"-" json:"users,omitempty"`
}
