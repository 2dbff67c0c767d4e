package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type assignmentRepository interface {
	CreateCampusAssignment(ctx context.Context, assignment *models.CampusAssignment, clearPrimary bool) error
	FindCampusAssignment(ctx context.Context, id string) (*models.CampusAssignment, error)
	FindCampusAssignmentByPair(ctx context.Context, personID, campusID string) (*models.CampusAssignment, error)
	FindCampusAssignmentDetail(ctx context.Context, id string) (*models.CampusAssignmentDetail, error)
	ExistsCampusAssignment(ctx context.Context, personID, campusID string) (bool, error)
	ListByPerson(ctx context.Context, personID string, includeInactive bool) ([]models.CampusAssignmentDetail, error)
	ListRosterByCampus(ctx context.Context, campusID string, includeInactive bool) ([]models.RosterRow, error)
	UpdateCampusAssignmentStatus(ctx context.Context, id string, status models.AssignmentStatus) error
	SetPrimary(ctx context.Context, personID, campusID string) error
	DeleteCampusAssignment(ctx context.Context, id string) error
	CreateClassAssignment(ctx context.Context, assignment *models.ClassAssignment) error
	FindClassAssignment(ctx context.Context, id string) (*models.ClassAssignment, error)
	ExistsClassAssignment(ctx context.Context, campusAssignmentID, classID string) (bool, error)
	CreateSubjectAssignments(ctx context.Context, classAssignmentID string, subjectIDs []string) ([]models.SubjectAssignment, error)
	ExistsSubjectAssignment(ctx context.Context, classAssignmentID, subjectID string) (bool, error)
	ListSubjectAssignments(ctx context.Context, classAssignmentID string) ([]models.SubjectAssignmentDetail, error)
}

type personReader interface {
	FindByID(ctx context.Context, id string) (*models.Person, error)
}

type campusReader interface {
	FindByID(ctx context.Context, id string) (*models.Campus, error)
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type subjectReader interface {
	ExistingIDs(ctx context.Context, subjectIDs []string) (map[string]bool, error)
}

// AssignCampusRequest describes a campus assignment creation payload.
type AssignCampusRequest struct {
	PersonID  string `json:"person_id" validate:"required"`
	IsPrimary bool   `json:"is_primary"`
}

// AssignClassRequest describes a class assignment creation payload.
type AssignClassRequest struct {
	ClassID        string `json:"class_id" validate:"required"`
	IsClassTeacher bool   `json:"is_class_teacher"`
}

// AssignSubjectsRequest describes a batch subject assignment payload.
type AssignSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1,dive,required"`
}

// UpdateStatusRequest describes a status transition payload.
type UpdateStatusRequest struct {
	Status models.AssignmentStatus `json:"status" validate:"required"`
}

// AssignmentService orchestrates the person-campus-class-subject assignment
// workflows and keeps the floating primary flag consistent.
type AssignmentService struct {
	repo      assignmentRepository
	persons   personReader
	campuses  campusReader
	classes   classReader
	subjects  subjectReader
	authz     CampusAuthorizer
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, persons personReader, campuses campusReader, classes classReader, subjects subjectReader, authz CampusAuthorizer, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, persons: persons, campuses: campuses, classes: classes, subjects: subjects, authz: authz, cache: cache, validator: validate, logger: logger}
}

// AssignPersonToCampus links a person to a campus, optionally marking the
// assignment as the person's primary campus.
func (s *AssignmentService) AssignPersonToCampus(ctx context.Context, actor *models.JWTClaims, campusID string, req AssignCampusRequest) (*models.CampusAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campus assignment payload")
	}
	if err := s.requireManage(ctx, actor, campusID); err != nil {
		return nil, err
	}
	if _, err := s.persons.FindByID(ctx, req.PersonID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
	}
	if _, err := s.campuses.FindByID(ctx, campusID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus")
	}
	exists, err := s.repo.ExistsCampusAssignment(ctx, req.PersonID, campusID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate campus assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "person is already assigned to campus")
	}
	assignment := &models.CampusAssignment{
		PersonID:  req.PersonID,
		CampusID:  campusID,
		IsPrimary: req.IsPrimary,
		Status:    models.AssignmentStatusActive,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateCampusAssignment(ctx, assignment, req.IsPrimary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campus assignment")
	}
	s.invalidatePerson(ctx, req.PersonID)
	detail, err := s.repo.FindCampusAssignmentDetail(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment detail")
	}
	return detail, nil
}

// AssignToClass links an existing campus assignment to a class on the same
// campus.
func (s *AssignmentService) AssignToClass(ctx context.Context, campusAssignmentID string, req AssignClassRequest) (*models.ClassAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class assignment payload")
	}
	parent, err := s.repo.FindCampusAssignment(ctx, campusAssignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment")
	}
	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if class.CampusID != parent.CampusID {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("class %s belongs to campus %s, not campus %s of the assignment", class.ID, class.CampusID, parent.CampusID))
	}
	exists, err := s.repo.ExistsClassAssignment(ctx, campusAssignmentID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate class assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "person is already assigned to class")
	}
	assignment := &models.ClassAssignment{
		CampusAssignmentID: campusAssignmentID,
		ClassID:            req.ClassID,
		IsClassTeacher:     req.IsClassTeacher,
		Status:             models.AssignmentStatusActive,
	}
	if err := s.repo.CreateClassAssignment(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class assignment")
	}
	s.invalidatePerson(ctx, parent.PersonID)
	return &models.ClassAssignmentDetail{ClassAssignment: *assignment, ClassName: class.Name}, nil
}

// AssignSubjects attaches a batch of subjects to a class assignment.
// Duplicate ids within the batch collapse to one; the insert is
// all-or-nothing.
func (s *AssignmentService) AssignSubjects(ctx context.Context, classAssignmentID string, req AssignSubjectsRequest) ([]models.SubjectAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject assignment payload")
	}
	subjectIDs := dedupe(req.SubjectIDs)
	parent, err := s.repo.FindClassAssignment(ctx, classAssignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class assignment")
	}
	known, err := s.subjects.ExistingIDs(ctx, subjectIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subjects")
	}
	for _, id := range subjectIDs {
		if !known[id] {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found", id))
		}
	}
	for _, id := range subjectIDs {
		exists, err := s.repo.ExistsSubjectAssignment(ctx, classAssignmentID, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subject assignment")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("subject %s is already assigned", id))
		}
	}
	if _, err := s.repo.CreateSubjectAssignments(ctx, classAssignmentID, subjectIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject assignments")
	}
	if campusAssignment, err := s.repo.FindCampusAssignment(ctx, parent.CampusAssignmentID); err == nil {
		s.invalidatePerson(ctx, campusAssignment.PersonID)
	}
	details, err := s.repo.ListSubjectAssignments(ctx, classAssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject assignments")
	}
	return details, nil
}

// SetPrimaryCampus makes the given campus the person's primary one. Any
// previous primary flag is cleared in the same transaction. Calling it for
// the current primary campus is a no-op.
func (s *AssignmentService) SetPrimaryCampus(ctx context.Context, personID, campusID string) (*models.CampusAssignmentDetail, error) {
	assignment, err := s.repo.FindCampusAssignmentByPair(ctx, personID, campusID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment")
	}
	if assignment.Status != models.AssignmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active assignment for person and campus")
	}
	if err := s.repo.SetPrimary(ctx, personID, campusID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active assignment for person and campus")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set primary campus")
	}
	s.invalidatePerson(ctx, personID)
	detail, err := s.repo.FindCampusAssignmentDetail(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment detail")
	}
	return detail, nil
}

// UpdateStatus transitions a campus assignment through the status machine.
// Archived assignments are terminal; requesting the current status is a
// no-op.
func (s *AssignmentService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, campusID, personID string, req UpdateStatusRequest) (*models.CampusAssignmentDetail, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown assignment status %q", req.Status))
	}
	if err := s.requireManage(ctx, actor, campusID); err != nil {
		return nil, err
	}
	assignment, err := s.repo.FindCampusAssignmentByPair(ctx, personID, campusID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment")
	}
	if req.Status != assignment.Status {
		if !assignment.Status.CanTransitionTo(req.Status) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot transition assignment from %s to %s", assignment.Status, req.Status))
		}
		if err := s.repo.UpdateCampusAssignmentStatus(ctx, assignment.ID, req.Status); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment status")
		}
		s.invalidatePerson(ctx, personID)
	}
	detail, err := s.repo.FindCampusAssignmentDetail(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment detail")
	}
	return detail, nil
}

// RemovePersonFromCampus deletes the campus assignment together with its
// class and subject assignments. If the removed campus was primary no other
// campus is promoted.
func (s *AssignmentService) RemovePersonFromCampus(ctx context.Context, actor *models.JWTClaims, campusID, personID string) error {
	if err := s.requireManage(ctx, actor, campusID); err != nil {
		return err
	}
	assignment, err := s.repo.FindCampusAssignmentByPair(ctx, personID, campusID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus assignment")
	}
	if err := s.repo.DeleteCampusAssignment(ctx, assignment.ID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "campus assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campus assignment")
	}
	s.invalidatePerson(ctx, personID)
	return nil
}

// GetCampusesForPerson returns the person's campus assignments with nested
// class and subject detail, primary campus first.
func (s *AssignmentService) GetCampusesForPerson(ctx context.Context, personID string, includeInactive bool) ([]models.CampusAssignmentDetail, error) {
	cacheKey := fmt.Sprintf("assignments:person:%s:%t", personID, includeInactive)
	var cached []models.CampusAssignmentDetail
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	details, err := s.repo.ListByPerson(ctx, personID, includeInactive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campus assignments")
	}
	if err := s.cache.Set(ctx, cacheKey, details, 0); err != nil {
		s.logger.Warn("failed to cache person assignments", zap.String("person_id", personID), zap.Error(err))
	}
	return details, nil
}

// GetPersonsForCampus returns the campus roster. Requires at least a VIEW
// grant on the campus.
func (s *AssignmentService) GetPersonsForCampus(ctx context.Context, actor *models.JWTClaims, campusID string, includeInactive bool) ([]models.RosterEntry, error) {
	ok, err := s.authz.CanView(ctx, actor, campusID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "missing campus permission")
	}
	if _, err := s.campuses.FindByID(ctx, campusID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campus not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campus")
	}
	rows, err := s.repo.ListRosterByCampus(ctx, campusID, includeInactive)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campus roster")
	}
	entries := make([]models.RosterEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.RosterEntry{
			Person: models.Person{
				ID:       row.PersonID,
				FullName: row.PersonName,
				Email:    row.PersonEmail,
				Kind:     row.PersonKind,
			},
			Assignment: models.CampusAssignmentDetail{
				CampusAssignment: row.CampusAssignment,
				PersonName:       row.PersonName,
				CampusName:       row.CampusName,
			},
		})
	}
	return entries, nil
}

func (s *AssignmentService) requireManage(ctx context.Context, actor *models.JWTClaims, campusID string) error {
	ok, err := s.authz.CanManage(ctx, actor, campusID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "missing campus permission")
	}
	return nil
}

func (s *AssignmentService) invalidatePerson(ctx context.Context, personID string) {
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("assignments:person:%s:*", personID)); err != nil {
		s.logger.Warn("failed to invalidate person assignment cache", zap.String("person_id", personID), zap.Error(err))
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
