package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edukita/campus-assignment-api/internal/service"
	"github.com/edukita/campus-assignment-api/pkg/response"
)

// PersonHandler exposes read-only person listings.
type PersonHandler struct {
	persons *service.PersonService
}

// NewPersonHandler constructs PersonHandler.
func NewPersonHandler(persons *service.PersonService) *PersonHandler {
	return &PersonHandler{persons: persons}
}

// List godoc
// @Summary List persons
// @Tags Persons
// @Produce json
// @Param kind query string false "Filter by person kind" Enums(TEACHER, STUDENT)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /persons [get]
func (h *PersonHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	persons, pagination, err := h.persons.List(c.Request.Context(), c.Query("kind"), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, persons, pagination)
}
