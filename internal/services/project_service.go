package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/timesheet-app/timesheet-api/internal/constants"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"github.com/timesheet-app/timesheet-api/internal/repository"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrNameRequired    = errors.New("name is required")
	ErrActorRequired   = errors.New("acting user is required")
	ErrInvalidAssignee = errors.New("one or more assigned users do not exist")
)

// ProjectService handles project related business logic.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// List returns one page of projects matching the filter, with their
// assigned users.
func (s *ProjectService) List(filter repository.ProjectFilter, page query.Page) (*repository.PagedResult[models.Project], error) {
	return s.projectRepo.List(filter, page)
}

// Get returns a single project with its assigned users.
func (s *ProjectService) Get(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// ProjectInput carries the writable project fields plus the user IDs to
// assign to it.
type ProjectInput struct {
	Project models.Project
	UserIDs []uint64
	Actor   string
}

// Create validates and creates a project with its assignments.
func (s *ProjectService) Create(input ProjectInput) (*models.Project, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	project := input.Project
	project.ID = 0
	project.TotalHoursSpent = 0
	project.CreatedBy = input.Actor
	project.UpdatedBy = input.Actor

	if err := s.projectRepo.Create(&project, input.UserIDs); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return s.Get(project.ID)
}

// Update validates and updates a project, replacing its assignments.
func (s *ProjectService) Update(id uint64, input ProjectInput) (*models.Project, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	existing.Name = input.Project.Name
	existing.Description = input.Project.Description
	existing.StartDate = input.Project.StartDate
	existing.EndDate = input.Project.EndDate
	existing.UpdatedBy = input.Actor
	existing.Users = nil

	if err := s.projectRepo.Update(existing, input.UserIDs); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.Get(id)
}

// Delete soft deletes a project.
func (s *ProjectService) Delete(id uint64, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}
	if err := s.projectRepo.Delete(id, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ExportCSV writes every project matching the filter as CSV rows.
func (s *ProjectService) ExportCSV(filter repository.ProjectFilter, w io.Writer) error {
	projects, err := s.projectRepo.ListAll(filter)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Description", "StartDate", "EndDate", "TotalHoursSpent", "AssignedUsers"}); err != nil {
		return err
	}
	for _, p := range projects {
		usernames := make([]string, len(p.Users))
		for i, u := range p.Users {
			usernames[i] = u.Username
		}
		row := []string{
			strconv.FormatUint(p.ID, 10),
			p.Name,
			p.Description,
			formatDate(p.StartDate),
			formatDate(p.EndDate),
			strconv.FormatFloat(p.TotalHoursSpent, 'f', 2, 64),
			strings.Join(usernames, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *ProjectService) validate(input *ProjectInput) error {
	input.Project.Name = strings.TrimSpace(input.Project.Name)
	if input.Project.Name == "" {
		return ErrNameRequired
	}
	if input.Actor == "" {
		return ErrActorRequired
	}
	return s.checkAssignees(s.userRepo, input.UserIDs)
}

// checkAssignees verifies every referenced user exists and is not deleted.
func (s *ProjectService) checkAssignees(userRepo repository.UserRepository, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := userRepo.CountByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to check assignees: %w", err)
	}
	if count != int64(len(uniqueUint64(ids))) {
		return ErrInvalidAssignee
	}
	return nil
}

func uniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(constants.DateFormat)
}
