package repository

import (
	"time"

	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
)

// PagedResult is the shape of every paginated listing: one page of data plus
// the total count of rows matching the same predicate without pagination.
type PagedResult[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

// ProjectFilter holds the optional filter criteria for listing projects.
// Absent fields contribute no predicate.
type ProjectFilter struct {
	Name      string
	StartFrom *time.Time
	EndTo     *time.Time
}

// UserFilter holds the optional filter criteria for listing users.
type UserFilter struct {
	ProjectID  *uint64
	JoinedFrom *time.Time
	JoinedTo   *time.Time
}

// TimeEntryFilter holds the optional filter criteria for listing time entries.
type TimeEntryFilter struct {
	ProjectID *uint64
	TaskID    *uint64
	UserID    *uint64
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// List retrieves one page of non-deleted projects matching the filter,
	// each with its de-duplicated assigned users.
	List(filter ProjectFilter, page query.Page) (*PagedResult[models.Project], error)

	// ListAll retrieves every non-deleted project matching the filter,
	// unpaginated, for export.
	ListAll(filter ProjectFilter) ([]models.Project, error)

	// FindByID finds a non-deleted project with its assigned users.
	// Returns gorm.ErrRecordNotFound when no row exists.
	FindByID(id uint64) (*models.Project, error)

	// Create creates a project and its user assignments in one transaction.
	Create(project *models.Project, userIDs []uint64) error

	// Update updates a project and replaces its user assignments in one
	// transaction.
	Update(project *models.Project, userIDs []uint64) error

	// Delete soft deletes a project, stamping the acting user.
	Delete(id uint64, actor string) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// ListAll retrieves all non-deleted tasks with project and assigned users.
	ListAll() ([]models.Task, error)

	// ListByProject retrieves one page of a project's tasks, each with its
	// project and de-duplicated assigned users.
	ListByProject(projectID uint64, page query.Page) (*PagedResult[models.Task], error)

	// FindByID finds a non-deleted task with its project and assigned users.
	FindByID(id uint64) (*models.Task, error)

	// Create creates a task and its user assignments in one transaction.
	Create(task *models.Task, userIDs []uint64) error

	// Update updates a task and replaces its user assignments in one
	// transaction.
	Update(task *models.Task, userIDs []uint64) error

	// Delete soft deletes a task, stamping the acting user.
	Delete(id uint64, actor string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// List retrieves one page of non-deleted users matching the filter.
	List(filter UserFilter, page query.Page) (*PagedResult[models.User], error)

	// FindByID finds a non-deleted user by ID.
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a non-deleted user by username.
	FindByUsername(username string) (*models.User, error)

	// Create creates a new user.
	Create(user *models.User) error

	// Update updates a user.
	Update(user *models.User) error

	// Delete soft deletes a user, stamping the acting user.
	Delete(id uint64, actor string) error

	// CountByIDs counts how many of the given user IDs exist and are not
	// deleted.
	CountByIDs(ids []uint64) (int64, error)
}

// TimesheetRepository defines the interface for time entry data access.
// Every write recomputes the affected project's (and task's) total hours from
// the surviving entries inside the same transaction as the write.
type TimesheetRepository interface {
	// List retrieves all non-deleted time entries.
	List() ([]models.TimeEntry, error)

	// Filter retrieves non-deleted time entries matching the filter, newest
	// work date first.
	Filter(filter TimeEntryFilter) ([]models.TimeEntry, error)

	// ListByUser retrieves a user's non-deleted entries with project and task
	// loaded, for export.
	ListByUser(userID uint64) ([]models.TimeEntry, error)

	// FindByID finds a non-deleted time entry by ID.
	FindByID(id uint64) (*models.TimeEntry, error)

	// CountByTask counts a task's non-deleted entries.
	CountByTask(taskID uint64) (int64, error)

	// Create inserts an entry and recomputes the project/task totals.
	Create(entry *models.TimeEntry) error

	// Update saves an entry and recomputes totals for every project and task
	// the entry referenced before or after the change.
	Update(entry *models.TimeEntry) error

	// Delete soft deletes an entry and recomputes the totals it contributed
	// to, stamping the acting user.
	Delete(id uint64, actor string) error
}

// DashboardRepository defines read-only aggregate queries for the dashboard
type DashboardRepository interface {
	// HoursPerProject returns total logged hours per project, highest first.
	HoursPerProject(limit int) ([]ProjectHours, error)

	// TaskTrends returns the number of entries logged per work date.
	TaskTrends() ([]TaskTrend, error)

	// WeeklySummary returns hours per day over the trailing seven days.
	WeeklySummary() ([]DaySummary, error)
}

// ProjectHours is one row of the hours-per-project aggregate.
type ProjectHours struct {
	ProjectName string  `json:"project_name"`
	TotalHours  float64 `json:"total_hours"`
}

// TaskTrend is one row of the entries-per-day aggregate.
type TaskTrend struct {
	Date       time.Time `json:"date"`
	EntryCount int64     `json:"entry_count"`
}

// DaySummary is one row of the weekly hours aggregate.
type DaySummary struct {
	Day        time.Time `json:"day"`
	TotalHours float64   `json:"total_hours"`
}
