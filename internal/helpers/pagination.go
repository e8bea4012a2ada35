package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wanderbay/wanderbay-api/internal/apperr"
	"github.com/wanderbay/wanderbay-api/internal/models"
)

const maxPageSize = 100

// ParseListOptions reads the shared page/limit/sortBy/sortOrder query
// parameters once at the API edge so handlers never touch raw strings.
func ParseListOptions(c *gin.Context) (models.ListOptions, error) {
	opts := models.ListOptions{
		SortBy:    StringTrim(c.DefaultQuery("sortBy", "")),
		SortOrder: StringTrim(c.DefaultQuery("sortOrder", "desc")),
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return opts, apperr.BadRequest("invalid page parameter")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		return opts, apperr.BadRequest("invalid limit parameter")
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return opts, apperr.BadRequest("sortOrder must be asc or desc")
	}

	opts.Page = page
	opts.Limit = limit
	return opts, nil
}
