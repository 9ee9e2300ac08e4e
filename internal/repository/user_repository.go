package repository

import (
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/query"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// List retrieves one page of users matching the filter. The project filter
// joins through project_assignments, so both queries select DISTINCT users and
// share the same predicate.
func (r *GormUserRepository) List(filter UserFilter, page query.Page) (*PagedResult[models.User], error) {
	b := query.NewBuilder().
		WhereNotDeleted("u").
		WhereID("pu.project_id", filter.ProjectID).
		WhereDateFrom("u.date_of_joining", filter.JoinedFrom).
		WhereDateTo("u.date_of_joining", filter.JoinedTo)

	join := ` LEFT JOIN project_assignments pu ON pu.user_id = u.id AND pu.deleted_at IS NULL `

	var total int64
	countSQL := "SELECT COUNT(DISTINCT u.id) FROM users u" + join + b.Clause()
	if err := r.db.Raw(countSQL, b.Args()...).Scan(&total).Error; err != nil {
		return nil, err
	}

	pageSQL := `SELECT DISTINCT
	u.id, u.emp_id, u.username, u.full_name, u.email, u.phone_number,
	u.department, u.role, u.date_of_joining, u.created_at, u.updated_at
	FROM users u` + join + b.Clause() + `
	ORDER BY u.id LIMIT ? OFFSET ?`

	args := append(append([]any{}, b.Args()...), page.Limit(), page.Offset())

	var users []models.User
	if err := r.db.Raw(pageSQL, args...).Scan(&users).Error; err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}

	return &PagedResult[models.User]{
		Data:  users,
		Total: total,
	}, nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes a user, stamping the acting user first.
func (r *GormUserRepository) Delete(id uint64, actor string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).
			Update("updated_by", actor)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// CountByIDs counts how many of the given user IDs exist and are not deleted.
func (r *GormUserRepository) CountByIDs(ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.User{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
