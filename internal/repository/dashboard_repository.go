package repository

import (
	"time"

	"gorm.io/gorm"
)

// GormDashboardRepository is a GORM implementation of DashboardRepository
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new DashboardRepository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &GormDashboardRepository{db: db}
}

// HoursPerProject returns total logged hours per project, highest first.
func (r *GormDashboardRepository) HoursPerProject(limit int) ([]ProjectHours, error) {
	sqlText := `SELECT p.name AS project_name, COALESCE(SUM(t.hours_worked), 0) AS total_hours
	FROM projects p
	LEFT JOIN time_entries t ON t.project_id = p.id AND t.deleted_at IS NULL
	WHERE p.deleted_at IS NULL
	GROUP BY p.id, p.name
	ORDER BY total_hours DESC
	LIMIT ?`

	var rows []ProjectHours
	if err := r.db.Raw(sqlText, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TaskTrends returns the number of entries logged per work date. Work dates
// are stored at day granularity, so grouping by the column groups by day.
func (r *GormDashboardRepository) TaskTrends() ([]TaskTrend, error) {
	sqlText := `SELECT work_date AS date, COUNT(*) AS entry_count
	FROM time_entries
	WHERE deleted_at IS NULL
	GROUP BY work_date
	ORDER BY work_date`

	var rows []TaskTrend
	if err := r.db.Raw(sqlText).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// WeeklySummary returns hours per day over the trailing seven days.
func (r *GormDashboardRepository) WeeklySummary() ([]DaySummary, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -7)

	sqlText := `SELECT work_date AS day, COALESCE(SUM(hours_worked), 0) AS total_hours
	FROM time_entries
	WHERE deleted_at IS NULL AND work_date >= ?
	GROUP BY work_date
	ORDER BY work_date`

	var rows []DaySummary
	if err := r.db.Raw(sqlText, cutoff).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
