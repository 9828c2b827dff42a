package httpserver

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuskul/crm-console-api/internal/model"
	"github.com/campuskul/crm-console-api/pkg/utils"
)

// idParam parses the :id path segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func queryUint(c *gin.Context, name string) uint {
	v, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// leadFilterFromQuery maps list query parameters onto the lead filter.
// Date bounds are parsed permissively; a garbled date is ignored rather
// than failing the whole list.
func leadFilterFromQuery(c *gin.Context) model.LeadListFilter {
	filter := model.LeadListFilter{
		Search:          c.Query("search"),
		Status:          c.Query("status"),
		AssignedOwnerID: queryUint(c, "assigned_owner_id"),
		LeadSource:      c.Query("lead_source"),
		Priority:        c.Query("priority"),
		FollowUpStatus:  c.Query("follow_up_status"),
		Page:            queryInt(c, "page", 1),
		PerPage:         queryInt(c, "per_page", model.DefaultPerPage),
	}
	if raw := c.Query("from_date"); raw != "" {
		if t, err := utils.ParseDateOrDateTime(raw, time.UTC); err == nil {
			filter.FromDate = &t
		}
	}
	if raw := c.Query("to_date"); raw != "" {
		if t, err := utils.ParseDateOrDateTime(raw, time.UTC); err == nil {
			end := t.AddDate(0, 0, 1) // inclusive upper bound for bare dates
			filter.ToDate = &end
		}
	}
	return filter
}

// saveUpload stores an optional multipart file and returns its public
// path. A missing file is not an error; the caller gets an empty path.
func saveUpload(c *gin.Context, field, dir string) (string, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}
	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return "uploads/" + name, nil
}
