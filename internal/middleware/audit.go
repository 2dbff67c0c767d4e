package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/internal/service"
)

// Audit records an audit trail entry after successful requests. Entries are
// enqueued to the async audit writer so failed audit persistence never
// affects the response.
func Audit(audit *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if audit == nil || c.Writer.Status() >= 400 {
			return
		}

		var claims *models.JWTClaims
		if value, ok := c.Get(ContextUserKey); ok {
			claims = value.(*models.JWTClaims)
		}

		resourceID := c.Param("id")
		if resourceID == "" {
			resourceID = c.Param("campusId")
		}

		audit.Record(claims, action, resource, resourceID, map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		}, c.ClientIP(), c.GetHeader("User-Agent"))
	}
}
