package handlers

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timesheet-app/timesheet-api/internal/dto"
	apierrors "github.com/timesheet-app/timesheet-api/internal/errors"
	"github.com/timesheet-app/timesheet-api/internal/middleware"
	"github.com/timesheet-app/timesheet-api/internal/models"
	"github.com/timesheet-app/timesheet-api/internal/services"
	"github.com/timesheet-app/timesheet-api/internal/storage"
	"github.com/timesheet-app/timesheet-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	store       *storage.LocalStore
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, store *storage.LocalStore) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		store:       store,
	}
}

// ListTasks returns every task with its project and assigned users.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	tasks, err := h.taskService.ListAll()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = dto.ToTaskDTO(task)
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

// ListProjectTasks returns one page of a project's tasks.
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	projectID, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	page := utils.GetPaginationParams(c)

	result, err := h.taskService.ListByProject(projectID, page)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(result.Data, page.Number, page.Size, result.Total))
}

// GetTask returns a single task with its project and assigned users.
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// TaskRequest is the JSON body for creating or updating a task.
type TaskRequest struct {
	ProjectID   uint64            `json:"project_id" binding:"required"`
	Name        string            `json:"name" binding:"required,max=255"`
	Description string            `json:"description"`
	DueDate     *time.Time        `json:"due_date"`
	Status      models.TaskStatus `json:"status"`
	UserIDs     []uint64          `json:"user_ids"`
}

// CreateTask creates a task with its user assignments.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.Create(services.TaskInput{
		Task: models.Task{
			ProjectID:   req.ProjectID,
			Name:        req.Name,
			Description: req.Description,
			DueDate:     req.DueDate,
			Status:      req.Status,
		},
		UserIDs: req.UserIDs,
		Actor:   actor,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task and replaces its user assignments.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.Update(id, services.TaskInput{
		Task: models.Task{
			ProjectID:   req.ProjectID,
			Name:        req.Name,
			Description: req.Description,
			DueDate:     req.DueDate,
			Status:      req.Status,
		},
		UserIDs: req.UserIDs,
		Actor:   actor,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
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

	if err := h.taskService.Delete(id, actor); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// UploadAttachment stores a file upload and records its path on the task.
func (h *TaskHandler) UploadAttachment(c *gin.Context) {
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

	file, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "Missing file upload")
		return
	}

	path, err := h.store.Save(c, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, storage.ErrEmptyFilename):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to store attachment")
		}
		return
	}

	task, err := h.taskService.SetAttachment(id, path, actor)
	if err != nil {
		// The task write failed; do not leave the orphaned file behind.
		_ = h.store.Remove(path)
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DownloadAttachment serves a task's stored attachment.
func (h *TaskHandler) DownloadAttachment(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.Get(id)
	if err != nil {
		respondTaskError(c, err)
		return
	}
	if task.AttachmentPath == nil || *task.AttachmentPath == "" {
		apierrors.NotFound(c, "Task has no attachment")
		return
	}

	c.FileAttachment(h.store.Resolve(*task.AttachmentPath), filepath.Base(*task.AttachmentPath))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNameRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTaskHasEntries):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrActorRequired):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
