package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/middleware"
	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/internal/service"
	"github.com/edukita/campus-assignment-api/pkg/response"
)

type assignmentRepoStub struct {
	assignments map[string]models.CampusAssignment
}

func (s *assignmentRepoStub) CreateCampusAssignment(ctx context.Context, assignment *models.CampusAssignment, clearPrimary bool) error {
	if s.assignments == nil {
		s.assignments = make(map[string]models.CampusAssignment)
	}
	if assignment.ID == "" {
		assignment.ID = "a1"
	}
	assignment.Status = models.AssignmentStatusActive
	s.assignments[assignment.ID] = *assignment
	return nil
}

func (s *assignmentRepoStub) FindCampusAssignment(ctx context.Context, id string) (*models.CampusAssignment, error) {
	if a, ok := s.assignments[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) FindCampusAssignmentByPair(ctx context.Context, personID, campusID string) (*models.CampusAssignment, error) {
	for _, a := range s.assignments {
		if a.PersonID == personID && a.CampusID == campusID {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) FindCampusAssignmentDetail(ctx context.Context, id string) (*models.CampusAssignmentDetail, error) {
	if a, ok := s.assignments[id]; ok {
		return &models.CampusAssignmentDetail{CampusAssignment: a}, nil
	}
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) ExistsCampusAssignment(ctx context.Context, personID, campusID string) (bool, error) {
	_, err := s.FindCampusAssignmentByPair(ctx, personID, campusID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func (s *assignmentRepoStub) ListByPerson(ctx context.Context, personID string, includeInactive bool) ([]models.CampusAssignmentDetail, error) {
	return nil, nil
}

func (s *assignmentRepoStub) ListRosterByCampus(ctx context.Context, campusID string, includeInactive bool) ([]models.RosterRow, error) {
	return nil, nil
}

func (s *assignmentRepoStub) UpdateCampusAssignmentStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	return nil
}

func (s *assignmentRepoStub) SetPrimary(ctx context.Context, personID, campusID string) error {
	return nil
}

func (s *assignmentRepoStub) DeleteCampusAssignment(ctx context.Context, id string) error {
	if _, ok := s.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.assignments, id)
	return nil
}

func (s *assignmentRepoStub) CreateClassAssignment(ctx context.Context, assignment *models.ClassAssignment) error {
	return nil
}

func (s *assignmentRepoStub) FindClassAssignment(ctx context.Context, id string) (*models.ClassAssignment, error) {
	return nil, sql.ErrNoRows
}

func (s *assignmentRepoStub) ExistsClassAssignment(ctx context.Context, campusAssignmentID, classID string) (bool, error) {
	return false, nil
}

func (s *assignmentRepoStub) CreateSubjectAssignments(ctx context.Context, classAssignmentID string, subjectIDs []string) ([]models.SubjectAssignment, error) {
	return nil, nil
}

func (s *assignmentRepoStub) ExistsSubjectAssignment(ctx context.Context, classAssignmentID, subjectID string) (bool, error) {
	return false, nil
}

func (s *assignmentRepoStub) ListSubjectAssignments(ctx context.Context, classAssignmentID string) ([]models.SubjectAssignmentDetail, error) {
	return nil, nil
}

type personReaderStub struct{}

func (personReaderStub) FindByID(ctx context.Context, id string) (*models.Person, error) {
	return &models.Person{ID: id, Active: true}, nil
}

type campusReaderStub struct{}

func (campusReaderStub) FindByID(ctx context.Context, id string) (*models.Campus, error) {
	return &models.Campus{ID: id, Active: true}, nil
}

type classReaderStub struct{}

func (classReaderStub) FindByID(ctx context.Context, id string) (*models.Class, error) {
	return nil, sql.ErrNoRows
}

type subjectReaderStub struct{}

func (subjectReaderStub) ExistingIDs(ctx context.Context, subjectIDs []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type authorizerStub struct {
	manage bool
	view   bool
}

func (a authorizerStub) CanManage(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error) {
	return a.manage, nil
}

func (a authorizerStub) CanView(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error) {
	return a.view, nil
}

func newAssignmentHandler(repo *assignmentRepoStub, authz authorizerStub) *AssignmentHandler {
	svc := service.NewAssignmentService(repo, personReaderStub{}, campusReaderStub{}, classReaderStub{}, subjectReaderStub{}, authz, nil, validator.New(), zap.NewNop())
	return NewAssignmentHandler(svc)
}

func testContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, target, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	return c, w
}

func TestAssignmentHandlerAssignToCampus(t *testing.T) {
	handler := newAssignmentHandler(&assignmentRepoStub{}, authorizerStub{manage: true})
	c, w := testContext(t, http.MethodPost, "/campuses/campus-1/assignments", service.AssignCampusRequest{PersonID: "p1"})
	c.Params = gin.Params{{Key: "campusId", Value: "campus-1"}}

	handler.AssignToCampus(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotNil(t, envelope.Data)
}

func TestAssignmentHandlerAssignToCampusInvalidBody(t *testing.T) {
	handler := newAssignmentHandler(&assignmentRepoStub{}, authorizerStub{manage: true})
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/campuses/campus-1/assignments", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "campusId", Value: "campus-1"}}

	handler.AssignToCampus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignmentHandlerForbiddenMapsTo403(t *testing.T) {
	handler := newAssignmentHandler(&assignmentRepoStub{}, authorizerStub{manage: false})
	c, w := testContext(t, http.MethodPost, "/campuses/campus-1/assignments", service.AssignCampusRequest{PersonID: "p1"})
	c.Params = gin.Params{{Key: "campusId", Value: "campus-1"}}

	handler.AssignToCampus(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAssignmentHandlerConflictMapsTo409(t *testing.T) {
	repo := &assignmentRepoStub{assignments: map[string]models.CampusAssignment{
		"a1": {ID: "a1", PersonID: "p1", CampusID: "campus-1", Status: models.AssignmentStatusActive},
	}}
	handler := newAssignmentHandler(repo, authorizerStub{manage: true})
	c, w := testContext(t, http.MethodPost, "/campuses/campus-1/assignments", service.AssignCampusRequest{PersonID: "p1"})
	c.Params = gin.Params{{Key: "campusId", Value: "campus-1"}}

	handler.AssignToCampus(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAssignmentHandlerRemoveNotFoundMapsTo404(t *testing.T) {
	handler := newAssignmentHandler(&assignmentRepoStub{}, authorizerStub{manage: true})
	c, w := testContext(t, http.MethodDelete, "/campuses/campus-1/assignments/p1", nil)
	c.Params = gin.Params{{Key: "campusId", Value: "campus-1"}, {Key: "personId", Value: "p1"}}

	handler.Remove(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignmentHandlerSetPrimaryRequiresCampusID(t *testing.T) {
	handler := newAssignmentHandler(&assignmentRepoStub{}, authorizerStub{manage: true})
	c, w := testContext(t, http.MethodPut, "/persons/p1/primary-campus", map[string]string{})
	c.Params = gin.Params{{Key: "personId", Value: "p1"}}

	handler.SetPrimaryCampus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
