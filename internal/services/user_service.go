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

// UserService handles user directory business logic.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List returns one page of users matching the filter.
func (s *UserService) List(filter repository.UserFilter, page query.Page) (*repository.PagedResult[models.User], error) {
	return s.userRepo.List(filter, page)
}

// Get returns a single user.
func (s *UserService) Get(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Update rewrites a user's profile fields. Username and password are not
// touched here.
func (s *UserService) Update(id uint64, input models.User, actor string) (*models.User, error) {
	if actor == "" {
		return nil, ErrActorRequired
	}
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(input.EmpID); v != "" {
		existing.EmpID = v
	}
	if v := strings.TrimSpace(input.FullName); v != "" {
		existing.FullName = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		existing.Email = v
	}
	existing.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	existing.Department = strings.TrimSpace(input.Department)
	if input.Role != "" {
		existing.Role = input.Role
	}
	if input.DateOfJoining != nil {
		existing.DateOfJoining = input.DateOfJoining
	}
	existing.UpdatedBy = actor

	if err := s.userRepo.Update(existing); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return existing, nil
}

// Delete soft deletes a user.
func (s *UserService) Delete(id uint64, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}
	if err := s.userRepo.Delete(id, actor); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
