package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	EmpID         string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"emp_id"`
	Username      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	FullName      string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber   string         `gorm:"type:varchar(50)" json:"phone_number"`
	Department    string         `gorm:"type:varchar(100)" json:"department"`
	Role          string         `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	DateOfJoining *time.Time     `json:"date_of_joining"`
	PasswordHash  string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	CreatedBy     string         `gorm:"type:varchar(100)" json:"created_by"`
	UpdatedBy     string         `gorm:"type:varchar(100)" json:"updated_by"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	ProjectAssignments []ProjectAssignment `gorm:"foreignKey:UserID" json:"-"`
	TaskAssignments    []TaskAssignment    `gorm:"foreignKey:UserID" json:"-"`
	TimeEntries        []TimeEntry         `gorm:"foreignKey:UserID" json:"-"`
}
