package services

import (
	"github.com/timesheet-app/timesheet-api/internal/repository"
)

const defaultProjectHoursLimit = 10

// DashboardService exposes read-only aggregates for the dashboard.
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(dashboardRepo repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// HoursPerProject returns total logged hours per project, highest first.
func (s *DashboardService) HoursPerProject(limit int) ([]repository.ProjectHours, error) {
	if limit <= 0 {
		limit = defaultProjectHoursLimit
	}
	return s.dashboardRepo.HoursPerProject(limit)
}

// TaskTrends returns the number of entries logged per work date.
func (s *DashboardService) TaskTrends() ([]repository.TaskTrend, error) {
	return s.dashboardRepo.TaskTrends()
}

// WeeklySummary returns hours per day over the trailing seven days.
func (s *DashboardService) WeeklySummary() ([]repository.DaySummary, error) {
	return s.dashboardRepo.WeeklySummary()
}
