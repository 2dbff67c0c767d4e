package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edukita/campus-assignment-api/internal/service"
	"github.com/edukita/campus-assignment-api/pkg/response"
)

// RosterHandler serves roster export downloads.
type RosterHandler struct {
	roster *service.RosterService
}

// NewRosterHandler constructs RosterHandler.
func NewRosterHandler(roster *service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

// Export godoc
// @Summary Export campus roster
// @Description Download the campus roster as CSV or PDF
// @Tags Rosters
// @Produce text/csv
// @Produce application/pdf
// @Param campusId path string true "Campus ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Param include_inactive query bool false "Include non-active assignments"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campuses/{campusId}/assignments/export [get]
func (h *RosterHandler) Export(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	export, err := h.roster.Export(c.Request.Context(), claimsFromContext(c), c.Param("campusId"), c.DefaultQuery("format", "csv"), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Content)
}
