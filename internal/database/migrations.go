package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes beyond what AutoMigrate creates
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Time entry indexes for aggregate recomputes and filters
		{"time_entries", "idx_time_entries_project_id", "project_id"},
		{"time_entries", "idx_time_entries_task_id", "task_id"},
		{"time_entries", "idx_time_entries_user_id", "user_id"},
		{"time_entries", "idx_time_entries_work_date", "work_date"},

		// Assignment join tables
		{"project_assignments", "idx_project_assignments_project_id", "project_id"},
		{"project_assignments", "idx_project_assignments_user_id", "user_id"},
		{"task_assignments", "idx_task_assignments_task_id", "task_id"},
		{"task_assignments", "idx_task_assignments_user_id", "user_id"},

		// Listing sort/filter columns
		{"projects", "idx_projects_start_date", "start_date"},
		{"tasks", "idx_tasks_due_date", "due_date"},
		{"users", "idx_users_date_of_joining", "date_of_joining"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
