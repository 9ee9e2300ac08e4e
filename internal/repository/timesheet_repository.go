package repository

import (
	"sort"

	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTimesheetRepository is a GORM implementation of TimesheetRepository.
//
// Project.TotalHoursSpent and Task.TotalHoursSpent are caches of the sum of
// non-deleted entry hours. Every write here recomputes them from the entry
// table inside the same transaction as the write, holding a row lock on the
// parent rows so two concurrent writers cannot both persist a stale sum.
type GormTimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository creates a new TimesheetRepository
func NewTimesheetRepository(db *gorm.DB) TimesheetRepository {
	return &GormTimesheetRepository{db: db}
}

// List retrieves all non-deleted time entries.
func (r *GormTimesheetRepository) List() ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.Order("work_date DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Filter retrieves time entries matching the sparse filter, newest first.
func (r *GormTimesheetRepository) Filter(filter TimeEntryFilter) ([]models.TimeEntry, error) {
	b := query.NewBuilder().
		WhereNotDeleted("").
		WhereID("project_id", filter.ProjectID).
		WhereID("task_id", filter.TaskID).
		WhereID("user_id", filter.UserID).
		WhereDateFrom("work_date", filter.DateFrom).
		WhereDateTo("work_date", filter.DateTo)

	sqlText := "SELECT * FROM time_entries " + b.Clause() + " ORDER BY work_date DESC, id DESC"

	var entries []models.TimeEntry
	if err := r.db.Raw(sqlText, b.Args()...).Scan(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByUser retrieves a user's entries with project and task loaded.
func (r *GormTimesheetRepository) ListByUser(userID uint64) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := r.db.Preload("Project").Preload("Task").
		Where("user_id = ?", userID).
		Order("work_date DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByID finds a time entry by ID
func (r *GormTimesheetRepository) FindByID(id uint64) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CountByTask counts a task's entries.
func (r *GormTimesheetRepository) CountByTask(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TimeEntry{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

// Create inserts an entry, then recomputes the owning project's and task's
// totals under the same transaction.
func (r *GormTimesheetRepository) Create(entry *models.TimeEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return r.recompute(tx, []uint64{entry.ProjectID}, taskIDSet(entry.TaskID))
	})
}

// Update saves an entry and recomputes totals for both the rows it referenced
// before the change and the rows it references after, so reassigning an entry
// to another project never leaves the old total stale.
func (r *GormTimesheetRepository) Update(entry *models.TimeEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TimeEntry
		if err := tx.First(&existing, entry.ID).Error; err != nil {
			return err
		}

		if err := tx.Save(entry).Error; err != nil {
			return err
		}

		projectIDs := uniqueIDs(existing.ProjectID, entry.ProjectID)
		taskIDs := uniqueIDs(append(taskIDSet(existing.TaskID), taskIDSet(entry.TaskID)...)...)
		return r.recompute(tx, projectIDs, taskIDs)
	})
}

// Delete soft deletes an entry and recomputes the totals it contributed to.
// The deleted entry drops out of the sum exactly as if it were removed.
func (r *GormTimesheetRepository) Delete(id uint64, actor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TimeEntry
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&existing).Update("updated_by", actor).Error; err != nil {
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}

		return r.recompute(tx, []uint64{existing.ProjectID}, taskIDSet(existing.TaskID))
	})
}

// recompute re-derives the cached totals for the given projects and tasks from
// the surviving entries. It must run inside the transaction that applied the
// entry write, after that write, with the parent rows locked.
func (r *GormTimesheetRepository) recompute(tx *gorm.DB, projectIDs, taskIDs []uint64) error {
	if err := lockRows(tx, &models.Project{}, projectIDs); err != nil {
		return err
	}
	if err := lockRows(tx, &models.Task{}, taskIDs); err != nil {
		return err
	}

	for _, projectID := range projectIDs {
		var total float64
		if err := tx.Model(&models.TimeEntry{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(SUM(hours_worked), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", projectID).
			UpdateColumn("total_hours_spent", total).Error; err != nil {
			return err
		}
	}

	for _, taskID := range taskIDs {
		var total float64
		if err := tx.Model(&models.TimeEntry{}).
			Where("task_id = ?", taskID).
			Select("COALESCE(SUM(hours_worked), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			UpdateColumn("total_hours_spent", total).Error; err != nil {
			return err
		}
	}

	return nil
}

// lockRows takes FOR UPDATE locks on the parent rows, in id order so two
// transactions touching the same pair cannot deadlock. SQLite has no FOR
// UPDATE and serializes writers at the database level, so it is skipped there.
func lockRows(tx *gorm.DB, model any, ids []uint64) error {
	if len(ids) == 0 || tx.Dialector.Name() == "sqlite" {
		return nil
	}

	var locked []uint64
	return tx.Model(model).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &locked).Error
}

func taskIDSet(taskID *uint64) []uint64 {
	if taskID == nil {
		return nil
	}
	return []uint64{*taskID}
}

// uniqueIDs removes duplicates and returns the ids sorted ascending.
func uniqueIDs(ids ...uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	result := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
