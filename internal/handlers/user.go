package handlers

import (
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

// UserHandler coordinates user directory HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers returns a filtered, paginated user listing.
// Filters: project_id, joined_from, joined_to.
func (h *UserHandler) ListUsers(c *gin.Context) {
	projectID, err := parseIDQuery(c, "project_id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	joinedFrom, err := parseDateQuery(c, "joined_from")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	joinedTo, err := parseDateQuery(c, "joined_to")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	page := utils.GetPaginationParams(c)

	result, err := h.userService.List(repository.UserFilter{
		ProjectID:  projectID,
		JoinedFrom: joinedFrom,
		JoinedTo:   joinedTo,
	}, page)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(result.Data, page.Number, page.Size, result.Total))
}

// GetUser returns a single user.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Get(id)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser rewrites a user's profile fields.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	type UpdateUserRequest struct {
		EmpID         string     `json:"emp_id"`
		FullName      string     `json:"full_name"`
		Email         string     `json:"email"`
		PhoneNumber   string     `json:"phone_number"`
		Department    string     `json:"department"`
		Role          string     `json:"role"`
		DateOfJoining *time.Time `json:"date_of_joining"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.Update(id, models.User{
		EmpID:         req.EmpID,
		FullName:      req.FullName,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Department:    req.Department,
		Role:          req.Role,
		DateOfJoining: req.DateOfJoining,
	}, actor)
	if err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeleteUser soft deletes a user.
func (h *UserHandler) DeleteUser(c *gin.Context) {
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

	if err := h.userService.Delete(id, actor); err != nil {
		respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrActorRequired):
		apierrors.Unauthorized(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
