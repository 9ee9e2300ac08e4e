package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timesheet-app/timesheet-api/internal/dto"
	apierrors "github.com/timesheet-app/timesheet-api/internal/errors"
	"github.com/timesheet-app/timesheet-api/internal/middleware"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/repository"
	"github.com/timesheet-app/timesheet-api/internal/services"
	"github.com/timesheet-app/timesheet-api/internal/utils"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns a filtered, paginated project listing.
// Filters: name (substring, case-insensitive), start_from, end_to.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	filter, err := projectFilterFromQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	page := utils.GetPaginationParams(c)

	result, err := h.projectService.List(filter, page)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(result.Data, page.Number, page.Size, result.Total))
}

// GetProject returns a single project with its assigned users.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Get(id)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// ProjectRequest is the JSON body for creating or updating a project.
type ProjectRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	UserIDs     []uint64   `json:"user_ids"`
}

// CreateProject creates a project with its user assignments.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	project, err := h.projectService.Create(services.ProjectInput{
		Project: models.Project{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		},
		UserIDs: req.UserIDs,
		Actor:   actor,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// UpdateProject updates a project and replaces its user assignments.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	project, err := h.projectService.Update(id, services.ProjectInput{
		Project: models.Project{
			Name:        req.Name,
			Description: req.Description,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		},
		UserIDs: req.UserIDs,
		Actor:   actor,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject soft deletes a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
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

	if err := h.projectService.Delete(id, actor); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

// ExportProjects streams the filtered project list as a CSV download.
func (h *ProjectHandler) ExportProjects(c *gin.Context) {
	filter, err := projectFilterFromQuery(c)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	// Build the document first so a failure yields a clean error response
	// instead of a truncated download.
	var buf bytes.Buffer
	if err := h.projectService.ExportCSV(filter, &buf); err != nil {
		apierrors.InternalError(c, "Failed to export projects")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="projects.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func projectFilterFromQuery(c *gin.Context) (repository.ProjectFilter, error) {
	startFrom, err := parseDateQuery(c, "start_from")
	if err != nil {
		return repository.ProjectFilter{}, err
	}
	endTo, err := parseDateQuery(c, "end_to")
	if err != nil {
		return repository.ProjectFilter{}, err
	}
	return repository.ProjectFilter{
		Name:      c.Query("name"),
		StartFrom: startFrom,
		EndTo:     endTo,
	}, nil
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrActorRequired):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
