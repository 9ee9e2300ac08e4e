package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`

	// TotalHoursSpent is a cache of SUM(hours_worked) over the project's
	// non-deleted time entries. It is only ever written inside the same
	// transaction as a time entry write; see repository.TimesheetRepository.
	TotalHoursSpent float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total_hours_spent"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	CreatedBy string         `gorm:"type:varchar(100)" json:"created_by"`
	UpdatedBy string         `gorm:"type:varchar(100)" json:"updated_by"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
	Tasks       []Task              `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
	TimeEntries []TimeEntry         `gorm:"foreignKey:ProjectID" json:"time_entries,omitempty"`

	// Users is filled by the repository's join fold, not persisted.
	Users []User `gorm:"-" json:"users,omitempty"`
}
