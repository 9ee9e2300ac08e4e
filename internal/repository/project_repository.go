package repository

import (
	"database/sql"
	"time"

	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// projectUserRow is one flat row of the project/user LEFT JOIN. The user block
// is all-NULL when the project has no assignments.
type projectUserRow struct {
	ID              uint64
	Name            string
	Description     sql.NullString
	StartDate       sql.NullTime
	EndDate         sql.NullTime
	TotalHoursSpent float64
	UserID          sql.NullInt64
	EmpID           sql.NullString
	Username        sql.NullString
	FullName        sql.NullString
	Email           sql.NullString
	PhoneNumber     sql.NullString
	Department      sql.NullString
	UserRole        sql.NullString
}

const projectUserColumns = `
	p.id, p.name, p.description, p.start_date, p.end_date, p.total_hours_spent,
	u.id AS user_id, u.emp_id, u.username, u.full_name, u.email, u.phone_number,
	u.department, u.role AS user_role`

const projectUserJoins = `
	LEFT JOIN project_assignments pu ON pu.project_id = p.id AND pu.deleted_at IS NULL
	LEFT JOIN users u ON u.id = pu.user_id AND u.deleted_at IS NULL`

func projectFilterBuilder(filter ProjectFilter) *query.Builder {
	return query.NewBuilder().
		WhereNotDeleted("p").
		WhereContains("p.name", filter.Name).
		WhereDateFrom("p.start_date", filter.StartFrom).
		WhereDateTo("p.end_date", filter.EndTo)
}

// List retrieves one page of projects matching the filter, with their users.
// The page is taken over projects, not join rows, so a project with many
// assignments still counts once; the count query shares the same predicate.
func (r *GormProjectRepository) List(filter ProjectFilter, page query.Page) (*PagedResult[models.Project], error) {
	b := projectFilterBuilder(filter)

	var total int64
	countSQL := "SELECT COUNT(*) FROM projects p " + b.Clause()
	if err := r.db.Raw(countSQL, b.Args()...).Scan(&total).Error; err != nil {
		return nil, err
	}

	pageSQL := `SELECT` + projectUserColumns + `
	FROM (SELECT * FROM projects p ` + b.Clause() + ` ORDER BY p.id LIMIT ? OFFSET ?) p` +
		projectUserJoins + `
	ORDER BY p.id`

	args := append(append([]any{}, b.Args()...), page.Limit(), page.Offset())

	var rows []projectUserRow
	if err := r.db.Raw(pageSQL, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return &PagedResult[models.Project]{
		Data:  foldProjectRows(rows),
		Total: total,
	}, nil
}

// ListAll retrieves every project matching the filter, unpaginated.
func (r *GormProjectRepository) ListAll(filter ProjectFilter) ([]models.Project, error) {
	b := projectFilterBuilder(filter)

	sqlText := `SELECT` + projectUserColumns + `
	FROM projects p` + projectUserJoins + `
	` + b.Clause() + `
	ORDER BY p.id`

	var rows []projectUserRow
	if err := r.db.Raw(sqlText, b.Args()...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	return foldProjectRows(rows), nil
}

// FindByID finds a project with its assigned users. An empty fold means the
// project does not exist (or is deleted), which is a not-found, not an empty
// result.
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	b := query.NewBuilder().WhereNotDeleted("p").Where("p.id = ?", id)

	sqlText := `SELECT` + projectUserColumns + `
	FROM projects p` + projectUserJoins + `
	` + b.Clause()

	var rows []projectUserRow
	if err := r.db.Raw(sqlText, b.Args()...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	projects := foldProjectRows(rows)
	if len(projects) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &projects[0], nil
}

// Create creates a project and its user assignments atomically.
func (r *GormProjectRepository) Create(project *models.Project, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return upsertProjectAssignments(tx, project.ID, userIDs)
	})
}

// Update updates a project and replaces its user assignments atomically.
func (r *GormProjectRepository) Update(project *models.Project, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(project).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", project.ID).
			Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}
		return upsertProjectAssignments(tx, project.ID, userIDs)
	})
}

// Delete soft deletes a project, stamping the acting user first.
func (r *GormProjectRepository) Delete(id uint64, actor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", id).
			Update("updated_by", actor)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&models.Project{}, id).Error
	})
}

// upsertProjectAssignments inserts assignment rows, reviving soft-deleted ones
// so the composite primary key never conflicts.
func upsertProjectAssignments(tx *gorm.DB, projectID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.ProjectAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.ProjectAssignment{
			ProjectID: projectID,
			UserID:    userID,
		}
	}

	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
		}).
		Create(&assignments).Error
}

// foldProjectRows folds the flat join rows into projects with de-duplicated
// user collections, preserving row order.
func foldProjectRows(rows []projectUserRow) []models.Project {
	g := query.NewGraph[uint64, models.Project, uint64](func(p *models.Project, u models.User) {
		p.Users = append(p.Users, u)
	})

	for _, row := range rows {
		row := row
		g.Visit(row.ID, func() *models.Project {
			return &models.Project{
				ID:              row.ID,
				Name:            row.Name,
				Description:     row.Description.String,
				StartDate:       nullTimePtr(row.StartDate),
				EndDate:         nullTimePtr(row.EndDate),
				TotalHoursSpent: row.TotalHoursSpent,
				Users:           []models.User{},
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

	projects := make([]models.Project, 0, g.Len())
	for _, p := range g.Parents() {
		projects = append(projects, *p)
	}
	return projects
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
