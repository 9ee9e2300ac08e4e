package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"github.com/timesheet-app/timesheet-api/internal/repository"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidStatus  = errors.New("invalid task status")
	ErrTaskHasEntries = errors.New("task has logged time entries and cannot move to another project")
)

// TaskService handles task related business logic.
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	timesheetRepo repository.TimesheetRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, timesheetRepo repository.TimesheetRepository) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		timesheetRepo: timesheetRepo,
	}
}

// ListAll returns every task with its project and assigned users.
func (s *TaskService) ListAll() ([]models.Task, error) {
	return s.taskRepo.ListAll()
}

// ListByProject returns one page of a project's tasks.
func (s *TaskService) ListByProject(projectID uint64, page query.Page) (*repository.PagedResult[models.Task], error) {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return s.taskRepo.ListByProject(projectID, page)
}

// Get returns a single task with its project and assigned users.
func (s *TaskService) Get(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// TaskInput carries the writable task fields plus the user IDs to assign.
type TaskInput struct {
	Task    models.Task
	UserIDs []uint64
	Actor   string
}

// Create validates and creates a task with its assignments. The task must
// belong to an existing project.
func (s *TaskService) Create(input TaskInput) (*models.Task, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	task := input.Task
	task.ID = 0
	task.TotalHoursSpent = 0
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	task.CreatedBy = input.Actor
	task.UpdatedBy = input.Actor

	if err := s.taskRepo.Create(&task, input.UserIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return s.Get(task.ID)
}

// Update validates and updates a task, replacing its assignments.
func (s *TaskService) Update(id uint64, input TaskInput) (*models.Task, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	// A task's entries are logged against its project; moving the task would
	// leave them pointing at a project the task no longer belongs to and both
	// projects' cached totals wrong.
	if input.Task.ProjectID != existing.ProjectID {
		count, err := s.timesheetRepo.CountByTask(id)
		if err != nil {
			return nil, fmt.Errorf("failed to count task entries: %w", err)
		}
		if count > 0 {
			return nil, ErrTaskHasEntries
		}
	}

	existing.ProjectID = input.Task.ProjectID
	existing.Name = input.Task.Name
	existing.Description = input.Task.Description
	existing.DueDate = input.Task.DueDate
	if input.Task.Status != "" {
		existing.Status = input.Task.Status
	}
	if input.Task.AttachmentPath != nil {
		existing.AttachmentPath = input.Task.AttachmentPath
	}
	existing.UpdatedBy = input.Actor
	existing.Users = nil
	existing.Project = models.Project{}

	if err := s.taskRepo.Update(existing, input.UserIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.Get(id)
}

// SetAttachment records the stored attachment path on a task.
func (s *TaskService) SetAttachment(id uint64, path string, actor string) (*models.Task, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	// Keep the current assignments untouched.
	userIDs := make([]uint64, 0, len(existing.Users))
	for _, u := range existing.Users {
		userIDs = append(userIDs, u.ID)
	}

	existing.AttachmentPath = &path
	existing.UpdatedBy = actor
	existing.Users = nil
	existing.Project = models.Project{}

	if err := s.taskRepo.Update(existing, userIDs); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.Get(id)
}

// Delete soft deletes a task.
func (s *TaskService) Delete(id uint64, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}
	if err := s.taskRepo.Delete(id, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) validate(input *TaskInput) error {
	input.Task.Name = strings.TrimSpace(input.Task.Name)
	if input.Task.Name == "" {
		return ErrNameRequired
	}
	if input.Actor == "" {
		return ErrActorRequired
	}
	switch input.Task.Status {
	case "", models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone:
	default:
		return ErrInvalidStatus
	}

	if _, err := s.projectRepo.FindByID(input.Task.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if len(input.UserIDs) == 0 {
		return nil
	}
	count, err := s.userRepo.CountByIDs(input.UserIDs)
	if err != nil {
		return fmt.Errorf("failed to check assignees: %w", err)
	}
	if count != int64(len(uniqueUint64(input.UserIDs))) {
		return ErrInvalidAssignee
	}
	return nil
}
