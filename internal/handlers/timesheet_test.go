package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/timesheet-app/timesheet-api/internal/auth"
	"github.com/timesheet-app/timesheet-api/internal/dto"
	"github.com/timesheet-app/timesheet-api/internal/middleware"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/repository"
	"github.com/timesheet-app/timesheet-api/internal/services"
)

type timesheetTestEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	token    string
	user     models.User
	project  models.Project
	task     models.Task
	otherPrj models.Project
}

func setupTimesheetTestEnv(t *testing.T) timesheetTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectAssignment{},
		&models.Task{},
		&models.TaskAssignment{},
		&models.TimeEntry{},
	)
	require.NoError(t, err)

	user := models.User{
		EmpID:        "EMP-001",
		Username:     "worker",
		FullName:     "Worker One",
		Email:        "worker@example.com",
		Role:         "user",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)

	project := models.Project{Name: "Main Project"}
	require.NoError(t, db.Create(&project).Error)
	otherPrj := models.Project{Name: "Other Project"}
	require.NoError(t, db.Create(&otherPrj).Error)

	task := models.Task{ProjectID: project.ID, Name: "Main Task", Status: models.TaskStatusTodo}
	require.NoError(t, db.Create(&task).Error)

	timesheetRepo := repository.NewTimesheetRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	timesheetService := services.NewTimesheetService(timesheetRepo, projectRepo, taskRepo, userRepo)
	handler := NewTimesheetHandler(timesheetService)

	token, err := auth.GenerateToken(testJWTSecret, "timesheet-api-test", 1, user.ID, user.Username, user.Role)
	require.NoError(t, err)

	r := gin.New()
	timesheets := r.Group("/api/timesheets")
	timesheets.Use(middleware.RequireAuth(testJWTSecret))
	{
		timesheets.GET("", handler.ListEntries)
		timesheets.POST("", handler.CreateEntry)
		timesheets.GET("/:id", handler.GetEntry)
		timesheets.PUT("/:id", handler.UpdateEntry)
		timesheets.DELETE("/:id", handler.DeleteEntry)
	}
	r.GET("/api/users/:id/timesheets/export", middleware.RequireAuth(testJWTSecret), handler.ExportUserEntries)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return timesheetTestEnv{
		db:       db,
		router:   r,
		token:    token,
		user:     user,
		project:  project,
		task:     task,
		otherPrj: otherPrj,
	}
}

func (env timesheetTestEnv) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env timesheetTestEnv) projectTotal(t *testing.T, id uint64) float64 {
	t.Helper()
	var project models.Project
	require.NoError(t, env.db.First(&project, id).Error)
	return project.TotalHoursSpent
}

func TestTimesheetHandler_CreateUpdatesProjectTotal(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.project.ID,
		"task_id":      env.task.ID,
		"work_date":    "2025-03-10",
		"hours_worked": 3.5,
		"description":  "implementation",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.TimeEntryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, env.user.ID, created.UserID)
	require.Equal(t, "2025-03-10", created.WorkDate)

	require.InDelta(t, 3.5, env.projectTotal(t, env.project.ID), 0.001)

	var task models.Task
	require.NoError(t, env.db.First(&task, env.task.ID).Error)
	require.InDelta(t, 3.5, task.TotalHoursSpent, 0.001)
}

func TestTimesheetHandler_TaskFromOtherProjectRejected(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.otherPrj.ID,
		"task_id":      env.task.ID,
		"work_date":    "2025-03-10",
		"hours_worked": 2.0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.InDelta(t, 0, env.projectTotal(t, env.otherPrj.ID), 0.001)
}

func TestTimesheetHandler_NegativeHoursRejected(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.project.ID,
		"work_date":    "2025-03-10",
		"hours_worked": -1.0,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimesheetHandler_UpdateMovesHoursAcrossProjects(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.project.ID,
		"work_date":    "2025-03-10",
		"hours_worked": 4.0,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.TimeEntryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/timesheets/%d", created.ID), map[string]any{
		"project_id":   env.otherPrj.ID,
		"work_date":    "2025-03-11",
		"hours_worked": 4.0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	require.InDelta(t, 0, env.projectTotal(t, env.project.ID), 0.001)
	require.InDelta(t, 4.0, env.projectTotal(t, env.otherPrj.ID), 0.001)
}

func TestTimesheetHandler_DeleteRestoresTotal(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.project.ID,
		"work_date":    "2025-03-10",
		"hours_worked": 2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.TimeEntryDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.InDelta(t, 2.5, env.projectTotal(t, env.project.ID), 0.001)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/timesheets/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.InDelta(t, 0, env.projectTotal(t, env.project.ID), 0.001)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/timesheets/%d", created.ID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimesheetHandler_ListWithFilters(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	for i, date := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		projectID := env.project.ID
		if i == 2 {
			projectID = env.otherPrj.ID
		}
		w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
			"project_id":   projectID,
			"work_date":    date,
			"hours_worked": 1.0,
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/timesheets?project_id=%d", env.project.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Entries []dto.TimeEntryDTO `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Entries, 2)

	w = env.do(t, http.MethodGet, "/api/timesheets?date_from=2025-03-11&date_to=2025-03-12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Entries, 2)
}

func TestTimesheetHandler_ExportUserEntries(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/timesheets", map[string]any{
		"project_id":   env.project.ID,
		"work_date":    "2025-03-10",
		"hours_worked": 2.0,
		"description":  "review",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/timesheets/export", env.user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	require.Contains(t, w.Body.String(), "Main Project")
	require.Contains(t, w.Body.String(), "2025-03-10")
}

func TestTimesheetHandler_ExportUnknownUser_CleanError(t *testing.T) {
	env := setupTimesheetTestEnv(t)

	// A failed export must be a plain error response, not CSV with an error
	// object appended.
	w := env.do(t, http.MethodGet, "/api/users/9999/timesheets/export", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.NotContains(t, w.Header().Get("Content-Type"), "text/csv")
	require.NotContains(t, w.Body.String(), "WorkDate")
}
