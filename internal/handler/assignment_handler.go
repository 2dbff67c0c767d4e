package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edukita/campus-assignment-api/internal/service"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
	"github.com/edukita/campus-assignment-api/pkg/response"
)

// AssignmentHandler exposes campus, class and subject assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// AssignToCampus godoc
// @Summary Assign person to campus
// @Tags Assignments
// @Accept json
// @Produce json
// @Param campusId path string true "Campus ID"
// @Param payload body service.AssignCampusRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /campuses/{campusId}/assignments [post]
func (h *AssignmentHandler) AssignToCampus(c *gin.Context) {
	var req service.AssignCampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.assignments.AssignPersonToCampus(c.Request.Context(), claimsFromContext(c), c.Param("campusId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// UpdateStatus godoc
// @Summary Update assignment status
// @Tags Assignments
// @Accept json
// @Produce json
// @Param campusId path string true "Campus ID"
// @Param personId path string true "Person ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /campuses/{campusId}/assignments/{personId}/status [patch]
func (h *AssignmentHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.assignments.UpdateStatus(c.Request.Context(), claimsFromContext(c), c.Param("campusId"), c.Param("personId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Remove godoc
// @Summary Remove person from campus
// @Description Deletes the campus assignment and its class and subject assignments
// @Tags Assignments
// @Produce json
// @Param campusId path string true "Campus ID"
// @Param personId path string true "Person ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campuses/{campusId}/assignments/{personId} [delete]
func (h *AssignmentHandler) Remove(c *gin.Context) {
	if err := h.assignments.RemovePersonFromCampus(c.Request.Context(), claimsFromContext(c), c.Param("campusId"), c.Param("personId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CampusRoster godoc
// @Summary List persons assigned to a campus
// @Tags Assignments
// @Produce json
// @Param campusId path string true "Campus ID"
// @Param include_inactive query bool false "Include non-active assignments"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /campuses/{campusId}/assignments [get]
func (h *AssignmentHandler) CampusRoster(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	entries, err := h.assignments.GetPersonsForCampus(c.Request.Context(), claimsFromContext(c), c.Param("campusId"), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// PersonCampuses godoc
// @Summary List a person's campus assignments
// @Tags Assignments
// @Produce json
// @Param personId path string true "Person ID"
// @Param include_inactive query bool false "Include non-active assignments"
// @Success 200 {object} response.Envelope
// @Router /persons/{personId}/campuses [get]
func (h *AssignmentHandler) PersonCampuses(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	details, err := h.assignments.GetCampusesForPerson(c.Request.Context(), c.Param("personId"), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// MyCampuses godoc
// @Summary List the caller's own campus assignments
// @Tags Assignments
// @Produce json
// @Param include_inactive query bool false "Include non-active assignments"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /me/campuses [get]
func (h *AssignmentHandler) MyCampuses(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil || claims.PersonID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no person linked to this account"))
		return
	}
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))
	details, err := h.assignments.GetCampusesForPerson(c.Request.Context(), claims.PersonID, includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// SetPrimaryCampus godoc
// @Summary Set a person's primary campus
// @Tags Assignments
// @Accept json
// @Produce json
// @Param personId path string true "Person ID"
// @Param payload body object true "Primary campus payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /persons/{personId}/primary-campus [put]
func (h *AssignmentHandler) SetPrimaryCampus(c *gin.Context) {
	var payload struct {
		CampusID string `json:"campus_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "campus_id required"))
		return
	}
	detail, err := h.assignments.SetPrimaryCampus(c.Request.Context(), c.Param("personId"), payload.CampusID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// AssignToClass godoc
// @Summary Assign campus assignment to a class
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Campus assignment ID"
// @Param payload body service.AssignClassRequest true "Class assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments/{id}/classes [post]
func (h *AssignmentHandler) AssignToClass(c *gin.Context) {
	var req service.AssignClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.assignments.AssignToClass(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// AssignSubjects godoc
// @Summary Assign subjects to a class assignment
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Class assignment ID"
// @Param payload body service.AssignSubjectsRequest true "Subject batch payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /class-assignments/{id}/subjects [post]
func (h *AssignmentHandler) AssignSubjects(c *gin.Context) {
	var req service.AssignSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	details, err := h.assignments.AssignSubjects(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, details)
}
