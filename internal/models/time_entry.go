package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeEntry is one logged row of work. It is the authoritative source for
// Project.TotalHoursSpent and Task.TotalHoursSpent.
type TimeEntry struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"user_id"`
	ProjectID   uint64    `gorm:"not null;index" json:"project_id"`
	TaskID      *uint64   `gorm:"index" json:"task_id"`
	WorkDate    time.Time `gorm:"not null" json:"work_date"`
	HoursWorked float64   `gorm:"type:decimal(10,2);not null" json:"hours_worked"`
	Description string    `gorm:"type:text" json:"description"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `gorm:"type:varchar(100)" json:"created_by"`
	UpdatedBy string         `gorm:"type:varchar(100)" json:"updated_by"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Task    *Task   `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
