package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/timesheet-app/timesheet-api/internal/errors"
	"github.com/timesheet-app/timesheet-api/internal/services"
)

// DashboardHandler serves read-only aggregates.
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// HoursPerProject returns total logged hours per project, highest first.
func (h *DashboardHandler) HoursPerProject(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	rows, err := h.dashboardService.HoursPerProject(limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch project hours")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": rows})
}

// TaskTrends returns the number of entries logged per work date.
func (h *DashboardHandler) TaskTrends(c *gin.Context) {
	rows, err := h.dashboardService.TaskTrends()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch task trends")
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": rows})
}

// WeeklySummary returns hours per day over the trailing seven days.
func (h *DashboardHandler) WeeklySummary(c *gin.Context) {
	rows, err := h.dashboardService.WeeklySummary()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch weekly summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": rows})
}
