package repository

import (
	"database/sql"

	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// taskRow is one flat row of the task/project/user join. The project block is
// always present (inner join); the user block is NULL-filled for tasks with no
// assignments.
type taskRow struct {
	ID                     uint64
	ProjectID              uint64
	Name                   string
	Description            sql.NullString
	DueDate                sql.NullTime
	Status                 string
	AttachmentPath         sql.NullString
	TotalHoursSpent        float64
	ProjectName            string
	ProjectDescription     sql.NullString
	ProjectStartDate       sql.NullTime
	ProjectEndDate         sql.NullTime
	ProjectTotalHoursSpent float64
	UserID                 sql.NullInt64
	EmpID                  sql.NullString
	Username               sql.NullString
	FullName               sql.NullString
	Email                  sql.NullString
	PhoneNumber            sql.NullString
	Department             sql.NullString
	UserRole               sql.NullString
}

const taskColumns = `
	t.id, t.project_id, t.name, t.description, t.due_date, t.status,
	t.attachment_path, t.total_hours_spent,
	p.name AS project_name, p.description AS project_description,
	p.start_date AS project_start_date, p.end_date AS project_end_date,
	p.total_hours_spent AS project_total_hours_spent,
	u.id AS user_id, u.emp_id, u.username, u.full_name, u.email, u.phone_number,
	u.department, u.role AS user_role`

const taskJoins = `
	INNER JOIN projects p ON p.id = t.project_id AND p.deleted_at IS NULL
	LEFT JOIN task_assignments ta ON ta.task_id = t.id AND ta.deleted_at IS NULL
	LEFT JOIN users u ON u.id = ta.user_id AND u.deleted_at IS NULL`

// ListAll retrieves all tasks with project and assigned users.
func (r *GormTaskRepository) ListAll() ([]models.Task, error) {
	b := query.NewBuilder().WhereNotDeleted("t")

	sqlText := `SELECT` + taskColumns + `
	FROM tasks t` + taskJoins + `
	` + b.Clause() + `
	ORDER BY t.id`

	var rows []taskRow
	if err := r.db.Raw(sqlText, b.Args()...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return foldTaskRows(rows), nil
}

// ListByProject retrieves one page of a project's tasks. Pagination applies to
// tasks, not join rows, and the count query shares the predicate — including
// the project-liveness condition the page query's inner join would otherwise
// apply on its own.
func (r *GormTaskRepository) ListByProject(projectID uint64, page query.Page) (*PagedResult[models.Task], error) {
	b := query.NewBuilder().
		WhereNotDeleted("t").
		Where("t.project_id = ?", projectID).
		Where("EXISTS (SELECT 1 FROM projects p WHERE p.id = t.project_id AND p.deleted_at IS NULL)")

	var total int64
	countSQL := "SELECT COUNT(*) FROM tasks t " + b.Clause()
	if err := r.db.Raw(countSQL, b.Args()...).Scan(&total).Error; err != nil {
		return nil, err
	}

	pageSQL := `SELECT` + taskColumns + `
	FROM (SELECT * FROM tasks t ` + b.Clause() + ` ORDER BY t.id LIMIT ? OFFSET ?) t` +
		taskJoins + `
	ORDER BY t.id`

	args := append(append([]any{}, b.Args()...), page.Limit(), page.Offset())

	var rows []taskRow
	if err := r.db.Raw(pageSQL, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedResult[models.Task]{
		Data:  foldTaskRows(rows),
		Total: total,
	}, nil
}

// FindByID finds a task with its project and assigned users.
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	b := query.NewBuilder().WhereNotDeleted("t").Where("t.id = ?", id)

	sqlText := `SELECT` + taskColumns + `
	FROM tasks t` + taskJoins + `
	` + b.Clause()

	var rows []taskRow
	if err := r.db.Raw(sqlText, b.Args()...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	tasks := foldTaskRows(rows)
	if len(tasks) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &tasks[0], nil
}

// Create creates a task and its user assignments atomically.
func (r *GormTaskRepository) Create(task *models.Task, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		return upsertTaskAssignments(tx, task.ID, userIDs)
	})
}

// Update updates a task and replaces its user assignments atomically.
func (r *GormTaskRepository) Update(task *models.Task, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).
			Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}
		return upsertTaskAssignments(tx, task.ID, userIDs)
	})
}

// Delete soft deletes a task, stamping the acting user first.
func (r *GormTaskRepository) Delete(id uint64, actor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).Where("id = ?", id).
			Update("updated_by", actor)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&models.Task{}, id).Error
	})
}

func upsertTaskAssignments(tx *gorm.DB, taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
		}).
		Create(&assignments).Error
}

func foldTaskRows(rows []taskRow) []models.Task {
	g := query.NewGraph[uint64, models.Task, uint64](func(t *models.Task, u models.User) {
		t.Users = append(t.Users, u)
	})

	for _, row := range rows {
		row := row
		g.Visit(row.ID, func() *models.Task {
			return &models.Task{
				ID:              row.ID,
				ProjectID:       row.ProjectID,
				Name:            row.Name,
				Description:     row.Description.String,
				DueDate:         nullTimePtr(row.DueDate),
				Status:          models.TaskStatus(row.Status),
				AttachmentPath:  nullStringPtr(row.AttachmentPath),
				TotalHoursSpent: row.TotalHoursSpent,
				Project: models.Project{
					ID:              row.ProjectID,
					Name:            row.ProjectName,
					Description:     row.ProjectDescription.String,
					StartDate:       nullTimePtr(row.ProjectStartDate),
					EndDate:         nullTimePtr(row.ProjectEndDate),
					TotalHoursSpent: row.ProjectTotalHoursSpent,
				},
				Users: []models.User{},
			}
		})

		if row.UserID.Valid && row.UserID.Int64 != 0 {
			g.VisitChild(row.ID, uint64(row.UserID.Int64), models.User{
				ID:          uint64(row.UserID.Int64),
				EmpID:       row.EmpID.String,
				Username:    row.Username.String,
				FullName:    row.FullName.String,
				Email:       row.Email.String,
				PhoneNumber: row.PhoneNumber.String,
				Department:  row.Department.String,
				Role:        row.UserRole.String,
			})
		}
	}

	tasks := make([]models.Task, 0, g.Len())
	for _, t := range g.Parents() {
		tasks = append(tasks, *t)
	}
	return tasks
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
