package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timesheet-app/timesheet-api/internal/constants"
	"github.com/timesheet-app/timesheet-api/internal/query"
)

// GetPaginationParams extracts and clamps pagination parameters from the
// request. Out-of-range values fall back to sane defaults, so repositories
// never see page <= 0 or page_size <= 0.
func GetPaginationParams(c *gin.Context) query.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPage)))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPage {
		page = constants.MinPage
	}
	if size < 1 || size > constants.MaxPageSize {
		size = constants.DefaultPageSize
	}

	return query.Page{
		Number: page,
		Size:   size,
	}
}
