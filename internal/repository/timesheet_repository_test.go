package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type TimesheetRepositoryTestSuite struct {
	suite.Suite
	db      *gorm.DB
	repo    TimesheetRepository
	user    *models.User
	project *models.Project
	task    *models.Task
}

func (suite *TimesheetRepositoryTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectAssignment{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TimeEntry{},
	)
	suite.Require().NoError(err)

	suite.repo = NewTimesheetRepository(suite.db)

	suite.user = &models.User{
		EmpID:        "E001",
		Username:     "worker",
		FullName:     "Worker One",
		Email:        "worker@example.com",
		Role:         "user",
		PasswordHash: "x",
	}
	suite.Require().NoError(suite.db.Create(suite.user).Error)

	suite.project = &models.Project{Name: "Project P"}
	suite.Require().NoError(suite.db.Create(suite.project).Error)

	suite.task = &models.Task{ProjectID: suite.project.ID, Name: "Task T", Status: models.TaskStatusTodo}
	suite.Require().NoError(suite.db.Create(suite.task).Error)
}

func (suite *TimesheetRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TimesheetRepositoryTestSuite) newEntry(hours float64, taskID *uint64) *models.TimeEntry {
	return &models.TimeEntry{
		UserID:      suite.user.ID,
		ProjectID:   suite.project.ID,
		TaskID:      taskID,
		WorkDate:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		HoursWorked: hours,
		CreatedBy:   "worker",
	}
}

func (suite *TimesheetRepositoryTestSuite) projectTotal(id uint64) float64 {
	var p models.Project
	suite.Require().NoError(suite.db.First(&p, id).Error)
	return p.TotalHoursSpent
}

func (suite *TimesheetRepositoryTestSuite) taskTotal(id uint64) float64 {
	var t models.Task
	suite.Require().NoError(suite.db.First(&t, id).Error)
	return t.TotalHoursSpent
}

// Spec scenario: 3.5 + 2.0 inserts, soft delete of the first, then an update
// of the second from 2h to 4h.
func (suite *TimesheetRepositoryTestSuite) TestAggregate_InsertDeleteUpdate() {
	suite.Equal(0.0, suite.projectTotal(suite.project.ID))

	first := suite.newEntry(3.5, nil)
	suite.Require().NoError(suite.repo.Create(first))
	suite.Equal(3.5, suite.projectTotal(suite.project.ID))

	second := suite.newEntry(2, nil)
	suite.Require().NoError(suite.repo.Create(second))
	suite.Equal(5.5, suite.projectTotal(suite.project.ID))

	suite.Require().NoError(suite.repo.Delete(first.ID, "worker"))
	suite.Equal(2.0, suite.projectTotal(suite.project.ID))

	second.HoursWorked = 4
	suite.Require().NoError(suite.repo.Update(second))
	suite.Equal(4.0, suite.projectTotal(suite.project.ID))
}

func (suite *TimesheetRepositoryTestSuite) TestAggregate_TaskTotals() {
	entry := suite.newEntry(6, &suite.task.ID)
	suite.Require().NoError(suite.repo.Create(entry))

	suite.Equal(6.0, suite.projectTotal(suite.project.ID))
	suite.Equal(6.0, suite.taskTotal(suite.task.ID))

	suite.Require().NoError(suite.repo.Delete(entry.ID, "worker"))
	suite.Equal(0.0, suite.taskTotal(suite.task.ID))
}

func (suite *TimesheetRepositoryTestSuite) TestAggregate_ReassignAcrossProjects() {
	other := &models.Project{Name: "Project Q"}
	suite.Require().NoError(suite.db.Create(other).Error)

	entry := suite.newEntry(5, nil)
	suite.Require().NoError(suite.repo.Create(entry))
	suite.Equal(5.0, suite.projectTotal(suite.project.ID))
	suite.Equal(0.0, suite.projectTotal(other.ID))

	entry.ProjectID = other.ID
	suite.Require().NoError(suite.repo.Update(entry))

	// Both sides recomputed: the old project must not keep a stale total.
	suite.Equal(0.0, suite.projectTotal(suite.project.ID))
	suite.Equal(5.0, suite.projectTotal(other.ID))
}

func (suite *TimesheetRepositoryTestSuite) TestAggregate_IdempotentRecompute() {
	entry := suite.newEntry(2.5, nil)
	suite.Require().NoError(suite.repo.Create(entry))
	suite.Equal(2.5, suite.projectTotal(suite.project.ID))

	// Re-saving without changes recomputes and lands on the same value.
	suite.Require().NoError(suite.repo.Update(entry))
	suite.Equal(2.5, suite.projectTotal(suite.project.ID))
}

func (suite *TimesheetRepositoryTestSuite) TestDelete_ExcludedFromReads() {
	entry := suite.newEntry(5, nil)
	suite.Require().NoError(suite.repo.Create(entry))
	suite.Require().NoError(suite.repo.Delete(entry.ID, "worker"))

	_, err := suite.repo.FindByID(entry.ID)
	suite.True(errors.Is(err, gorm.ErrRecordNotFound))

	entries, err := suite.repo.List()
	suite.Require().NoError(err)
	suite.Empty(entries)
}

func (suite *TimesheetRepositoryTestSuite) TestDelete_NotFound() {
	err := suite.repo.Delete(12345, "worker")
	suite.True(errors.Is(err, gorm.ErrRecordNotFound))
}

func (suite *TimesheetRepositoryTestSuite) TestFilter_SparseCriteria() {
	taskID := suite.task.ID
	suite.Require().NoError(suite.repo.Create(suite.newEntry(1, &taskID)))
	suite.Require().NoError(suite.repo.Create(suite.newEntry(2, nil)))

	all, err := suite.repo.Filter(TimeEntryFilter{})
	suite.Require().NoError(err)
	suite.Len(all, 2)

	byTask, err := suite.repo.Filter(TimeEntryFilter{TaskID: &taskID})
	suite.Require().NoError(err)
	suite.Len(byTask, 1)

	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	none, err := suite.repo.Filter(TimeEntryFilter{DateFrom: &from})
	suite.Require().NoError(err)
	suite.Empty(none)
}

func TestTimesheetRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TimesheetRepositoryTestSuite))
}

// A failed entry insert must roll back the whole transaction: no entry row and
// no aggregate step runs.
func TestTimesheetCreate_RollbackOnInsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	boom := errors.New("insert failed")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `time_entries`").WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewTimesheetRepository(db)
	err = repo.Create(&models.TimeEntry{
		UserID:      1,
		ProjectID:   1,
		WorkDate:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		HoursWorked: 1,
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failure during the aggregate recompute must roll the entry write back too:
// partial application is never observable.
func TestTimesheetCreate_RollbackOnRecomputeFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	boom := errors.New("lock failed")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `time_entries`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT `id` FROM `projects`").WillReturnError(boom)
	mock.ExpectRollback()

	repo := NewTimesheetRepository(db)
	err = repo.Create(&models.TimeEntry{
		UserID:      1,
		ProjectID:   1,
		WorkDate:    time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		HoursWorked: 1,
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
