package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/edukita/campus-assignment-api/internal/models"
)

func rbacRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/persons/:personId/campuses", func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	}, RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRBACAllowsListedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}
	r := rbacRouter(claims, string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p1/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACRejectsUnlistedRole(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}
	r := rbacRouter(claims, string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p1/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfMatchesLinkedPerson(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, PersonID: "p1"}
	r := rbacRouter(claims, string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p1/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRBACSelfRejectsOtherPerson(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher, PersonID: "p1"}
	r := rbacRouter(claims, string(models.RoleAdmin), "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p2/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACSelfRejectsUnlinkedUser(t *testing.T) {
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}
	r := rbacRouter(claims, "SELF")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p1/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRBACRequiresClaims(t *testing.T) {
	r := rbacRouter(nil, string(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/persons/p1/campuses", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
