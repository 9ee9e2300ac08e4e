package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timesheet-app/timesheet-api/internal/constants"
	"github.com/timesheet-app/timesheet-api/internal/dto"
	apierrors "github.com/timesheet-app/timesheet-api/internal/errors"
	"github.com/timesheet-app/timesheet-api/internal/middleware"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/repository"
	"github.com/timesheet-app/timesheet-api/internal/services"
)

// TimesheetHandler coordinates time entry HTTP handlers.
type TimesheetHandler struct {
	timesheetService *services.TimesheetService
}

// NewTimesheetHandler creates a new TimesheetHandler.
func NewTimesheetHandler(timesheetService *services.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{
		timesheetService: timesheetService,
	}
}

// ListEntries returns time entries, optionally narrowed by project_id,
// task_id, user_id, date_from and date_to query parameters.
func (h *TimesheetHandler) ListEntries(c *gin.Context) {
	filter, hasFilter, err := entryFilterFromQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var entries []models.TimeEntry
	if hasFilter {
		entries, err = h.timesheetService.Filter(filter)
	} else {
		entries, err = h.timesheetService.List()
	}
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch time entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": dto.ToTimeEntryDTOs(entries)})
}

// GetEntry returns a single time entry.
func (h *TimesheetHandler) GetEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	entry, err := h.timesheetService.Get(id)
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// EntryRequest is the JSON body for logging or rewriting a time entry.
type EntryRequest struct {
	UserID      uint64  `json:"user_id"`
	ProjectID   uint64  `json:"project_id" binding:"required"`
	TaskID      *uint64 `json:"task_id"`
	WorkDate    string  `json:"work_date" binding:"required"`
	HoursWorked float64 `json:"hours_worked"`
	Description string  `json:"description"`
}

func (r EntryRequest) toEntry(defaultUserID uint64) (models.TimeEntry, error) {
	workDate, err := time.Parse(constants.DateFormat, r.WorkDate)
	if err != nil {
		return models.TimeEntry{}, errors.New("invalid work_date, expected YYYY-MM-DD")
	}
	userID := r.UserID
	if userID == 0 {
		userID = defaultUserID
	}
	return models.TimeEntry{
		UserID:      userID,
		ProjectID:   r.ProjectID,
		TaskID:      r.TaskID,
		WorkDate:    workDate,
		HoursWorked: r.HoursWorked,
		Description: r.Description,
	}, nil
}

// CreateEntry logs a new time entry.
func (h *TimesheetHandler) CreateEntry(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	model, err := req.toEntry(userID)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	entry, err := h.timesheetService.Create(services.EntryInput{
		Entry: model,
		Actor: actor,
	})
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryDTO(*entry))
}

// UpdateEntry rewrites an existing time entry.
func (h *TimesheetHandler) UpdateEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	model, err := req.toEntry(userID)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	entry, err := h.timesheetService.Update(id, services.EntryInput{
		Entry: model,
		Actor: actor,
	})
	if err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryDTO(*entry))
}

// DeleteEntry soft deletes a time entry.
func (h *TimesheetHandler) DeleteEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := h.timesheetService.Delete(id, actor); err != nil {
		respondTimesheetError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Time entry deleted successfully"})
}

// FilterEntries returns time entries narrowed by the filter query
// parameters; with no parameters it behaves like ListEntries.
func (h *TimesheetHandler) FilterEntries(c *gin.Context) {
	filter, _, err := entryFilterFromQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	entries, err := h.timesheetService.Filter(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch time entries")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": dto.ToTimeEntryDTOs(entries)})
}

// ExportEntries streams time entries as a CSV download for the user named
// by the user_id query parameter, defaulting to the caller.
func (h *TimesheetHandler) ExportEntries(c *gin.Context) {
	userID, err := parseIDQuery(c, "user_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if userID == nil {
		current, ok := middleware.GetUserID(c)
		if !ok {
			apierrors.Unauthorized(c, "Not authenticated")
			return
		}
		userID = &current
	}

	h.exportCSV(c, *userID)
}

// ExportUserEntries streams a user's time entries as a CSV download.
func (h *TimesheetHandler) ExportUserEntries(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	h.exportCSV(c, userID)
}

// exportCSV builds the document first so a failure yields a clean error
// response instead of a truncated download.
func (h *TimesheetHandler) exportCSV(c *gin.Context, userID uint64) {
	var buf bytes.Buffer
	if err := h.timesheetService.ExportCSVByUser(userID, &buf); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			apierrors.NotFound(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to export time entries")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="timesheet.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func entryFilterFromQuery(c *gin.Context) (repository.TimeEntryFilter, bool, error) {
	projectID, err := parseIDQuery(c, "project_id")
	if err != nil {
		return repository.TimeEntryFilter{}, false, err
	}
	taskID, err := parseIDQuery(c, "task_id")
	if err != nil {
		return repository.TimeEntryFilter{}, false, err
	}
	userID, err := parseIDQuery(c, "user_id")
	if err != nil {
		return repository.TimeEntryFilter{}, false, err
	}
	dateFrom, err := parseDateQuery(c, "date_from")
	if err != nil {
		return repository.TimeEntryFilter{}, false, err
	}
	dateTo, err := parseDateQuery(c, "date_to")
	if err != nil {
		return repository.TimeEntryFilter{}, false, err
	}

	filter := repository.TimeEntryFilter{
		ProjectID: projectID,
		TaskID:    taskID,
		UserID:    userID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
	}
	hasFilter := projectID != nil || taskID != nil || userID != nil || dateFrom != nil || dateTo != nil
	return filter, hasFilter, nil
}

func respondTimesheetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidHours),
		errors.Is(err, services.ErrTaskProjectMismatch):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrActorRequired):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
