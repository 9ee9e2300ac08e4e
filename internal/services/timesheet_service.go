package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/timesheet-app/timesheet-api/internal/constants"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/repository"
)

var (
	ErrEntryNotFound       = errors.New("time entry not found")
	ErrInvalidHours        = errors.New("hours worked must not be negative")
	ErrTaskProjectMismatch = errors.New("task does not belong to the given project")
)

// TimesheetService handles time entry business logic. All total-hours
// bookkeeping happens inside the repository's transactions; this layer
// only validates references before handing the write down.
type TimesheetService struct {
	timesheetRepo repository.TimesheetRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
	userRepo      repository.UserRepository
}

// NewTimesheetService creates a new TimesheetService.
func NewTimesheetService(
	timesheetRepo repository.TimesheetRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		userRepo:      userRepo,
	}
}

// List returns every time entry.
func (s *TimesheetService) List() ([]models.TimeEntry, error) {
	return s.timesheetRepo.List()
}

// Filter returns time entries matching the given criteria.
func (s *TimesheetService) Filter(filter repository.TimeEntryFilter) ([]models.TimeEntry, error) {
	return s.timesheetRepo.Filter(filter)
}

// Get returns a single time entry.
func (s *TimesheetService) Get(id uint64) (*models.TimeEntry, error) {
	entry, err := s.timesheetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to find time entry: %w", err)
	}
	return entry, nil
}

// EntryInput carries the writable fields of a time entry.
type EntryInput struct {
	Entry models.TimeEntry
	Actor string
}

// Create validates and logs a new time entry.
func (s *TimesheetService) Create(input EntryInput) (*models.TimeEntry, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	entry := input.Entry
	entry.ID = 0
	entry.WorkDate = dayOf(entry.WorkDate)
	entry.CreatedBy = input.Actor
	entry.UpdatedBy = input.Actor

	if err := s.timesheetRepo.Create(&entry); err != nil {
		return nil, fmt.Errorf("failed to create time entry: %w", err)
	}
	return &entry, nil
}

// Update validates and rewrites an existing time entry.
func (s *TimesheetService) Update(id uint64, input EntryInput) (*models.TimeEntry, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	existing.UserID = input.Entry.UserID
	existing.ProjectID = input.Entry.ProjectID
	existing.TaskID = input.Entry.TaskID
	existing.WorkDate = dayOf(input.Entry.WorkDate)
	existing.HoursWorked = input.Entry.HoursWorked
	existing.Description = input.Entry.Description
	existing.UpdatedBy = input.Actor
	existing.User = models.User{}
	existing.Project = models.Project{}
	existing.Task = nil

	if err := s.timesheetRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update time entry: %w", err)
	}
	return existing, nil
}

// Delete soft deletes a time entry.
func (s *TimesheetService) Delete(id uint64, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}
	if err := s.timesheetRepo.Delete(id, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("failed to delete time entry: %w", err)
	}
	return nil
}

// ExportCSVByUser writes a user's time entries as CSV rows.
func (s *TimesheetService) ExportCSVByUser(userID uint64, w io.Writer) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	entries, err := s.timesheetRepo.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to list time entries: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Project", "Task", "WorkDate", "HoursWorked", "Description"}); err != nil {
		return err
	}
	for _, e := range entries {
		taskName := ""
		if e.Task != nil {
			taskName = e.Task.Name
		}
		row := []string{
			strconv.FormatUint(e.ID, 10),
			e.Project.Name,
			taskName,
			e.WorkDate.Format(constants.DateFormat),
			strconv.FormatFloat(e.HoursWorked, 'f', 2, 64),
			e.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *TimesheetService) validate(input *EntryInput) error {
	if input.Actor == "" {
		return ErrActorRequired
	}
	if input.Entry.HoursWorked < 0 {
		return ErrInvalidHours
	}
	if input.Entry.WorkDate.IsZero() {
		return fmt.Errorf("work date is required")
	}

	if _, err := s.userRepo.FindByID(input.Entry.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if _, err := s.projectRepo.FindByID(input.Entry.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if input.Entry.TaskID != nil {
		task, err := s.taskRepo.FindByID(*input.Entry.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}
		if task.ProjectID != input.Entry.ProjectID {
			return ErrTaskProjectMismatch
		}
	}
	return nil
}

// dayOf truncates a timestamp to day granularity in UTC; entries are
// logged per day, not per clock time.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
