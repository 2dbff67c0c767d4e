package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edukita/campus-assignment-api/internal/service"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
	"github.com/edukita/campus-assignment-api/pkg/response"
)

// PermissionHandler exposes campus permission grants.
type PermissionHandler struct {
	permissions *service.PermissionService
}

// NewPermissionHandler constructs PermissionHandler.
func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// MyGrants godoc
// @Summary List the caller's campus permission grants
// @Tags Permissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /me/permissions [get]
func (h *PermissionHandler) MyGrants(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	grants, err := h.permissions.GrantsFor(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grants, nil)
}
