package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edukita/campus-assignment-api/internal/models"
)

// AssignmentRepository persists the person-campus-class-subject junction
// graph. Multi-row mutations run inside a single transaction so a concurrent
// reader observes either the pre- or post-mutation state, never an
// intermediate one.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const campusAssignmentColumns = `id, person_id, campus_id, is_primary, status, joined_at, created_at, updated_at`

// CreateCampusAssignment inserts a campus assignment. When clearPrimary is
// set, every other ACTIVE row for the person loses its primary flag in the
// same transaction.
func (r *AssignmentRepository) CreateCampusAssignment(ctx context.Context, assignment *models.CampusAssignment, clearPrimary bool) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.JoinedAt.IsZero() {
		assignment.JoinedAt = now
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusActive
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create campus assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if clearPrimary {
		if _, err = tx.ExecContext(ctx, `UPDATE campus_assignments SET is_primary = FALSE, updated_at = $2 WHERE person_id = $1 AND is_primary = TRUE`, assignment.PersonID, now); err != nil {
			return fmt.Errorf("clear primary flags: %w", err)
		}
	}

	const query = `INSERT INTO campus_assignments (id, person_id, campus_id, is_primary, status, joined_at, created_at, updated_at)
		VALUES (:id, :person_id, :campus_id, :is_primary, :status, :joined_at, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create campus assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create campus assignment: %w", err)
	}
	return nil
}

// FindCampusAssignment returns a campus assignment by its ID.
func (r *AssignmentRepository) FindCampusAssignment(ctx context.Context, id string) (*models.CampusAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM campus_assignments WHERE id = $1`, campusAssignmentColumns)
	var assignment models.CampusAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindCampusAssignmentByPair returns the assignment for a (person, campus) pair.
func (r *AssignmentRepository) FindCampusAssignmentByPair(ctx context.Context, personID, campusID string) (*models.CampusAssignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM campus_assignments WHERE person_id = $1 AND campus_id = $2`, campusAssignmentColumns)
	var assignment models.CampusAssignment
	if err := r.db.GetContext(ctx, &assignment, query, personID, campusID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ExistsCampusAssignment checks whether a (person, campus) row exists.
func (r *AssignmentRepository) ExistsCampusAssignment(ctx context.Context, personID, campusID string) (bool, error) {
	const query = `SELECT 1 FROM campus_assignments WHERE person_id = $1 AND campus_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, personID, campusID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check campus assignment: %w", err)
	}
	return true, nil
}

// FindCampusAssignmentDetail returns one assignment with person and campus
// summaries plus nested class and subject assignments.
func (r *AssignmentRepository) FindCampusAssignmentDetail(ctx context.Context, id string) (*models.CampusAssignmentDetail, error) {
	const query = `
SELECT ca.id, ca.person_id, ca.campus_id, ca.is_primary, ca.status, ca.joined_at, ca.created_at, ca.updated_at,
       p.full_name AS person_name, c.name AS campus_name
FROM campus_assignments ca
JOIN persons p ON p.id = ca.person_id
JOIN campuses c ON c.id = ca.campus_id
WHERE ca.id = $1`
	var detail models.CampusAssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	if err := r.attachClassDetails(ctx, []*models.CampusAssignmentDetail{&detail}); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByPerson returns a person's campus assignments with nested class and
// subject assignments joined in. Inactive and archived rows are filtered out
// unless includeInactive is set.
func (r *AssignmentRepository) ListByPerson(ctx context.Context, personID string, includeInactive bool) ([]models.CampusAssignmentDetail, error) {
	query := `
SELECT ca.id, ca.person_id, ca.campus_id, ca.is_primary, ca.status, ca.joined_at, ca.created_at, ca.updated_at,
       p.full_name AS person_name, c.name AS campus_name
FROM campus_assignments ca
JOIN persons p ON p.id = ca.person_id
JOIN campuses c ON c.id = ca.campus_id
WHERE ca.person_id = $1`
	args := []interface{}{personID}
	if !includeInactive {
		query += fmt.Sprintf(" AND ca.status = $%d", len(args)+1)
		args = append(args, models.AssignmentStatusActive)
	}
	query += ` ORDER BY ca.is_primary DESC, ca.joined_at ASC`

	var details []models.CampusAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, args...); err != nil {
		return nil, fmt.Errorf("list campus assignments: %w", err)
	}

	refs := make([]*models.CampusAssignmentDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.attachClassDetails(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

// ListRosterByCampus returns (person, assignment) rows for one campus.
func (r *AssignmentRepository) ListRosterByCampus(ctx context.Context, campusID string, includeInactive bool) ([]models.RosterRow, error) {
	query := `
SELECT ca.id, ca.person_id, ca.campus_id, ca.is_primary, ca.status, ca.joined_at, ca.created_at, ca.updated_at,
       p.full_name AS person_name, p.email AS person_email, p.kind AS person_kind, c.name AS campus_name
FROM campus_assignments ca
JOIN persons p ON p.id = ca.person_id
JOIN campuses c ON c.id = ca.campus_id
WHERE ca.campus_id = $1`
	args := []interface{}{campusID}
	if !includeInactive {
		query += fmt.Sprintf(" AND ca.status = $%d", len(args)+1)
		args = append(args, models.AssignmentStatusActive)
	}
	query += ` ORDER BY p.full_name ASC`

	var rows []models.RosterRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list campus roster: %w", err)
	}
	return rows, nil
}

// UpdateCampusAssignmentStatus updates the lifecycle status of one row.
func (r *AssignmentRepository) UpdateCampusAssignmentStatus(ctx context.Context, id string, status models.AssignmentStatus) error {
	const query = `UPDATE campus_assignments SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update campus assignment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetPrimary clears every primary flag for the person and marks the (person,
// campus) row primary, in one transaction. The row lock taken by the UPDATE
// serializes concurrent callers at the storage layer.
func (r *AssignmentRepository) SetPrimary(ctx context.Context, personID, campusID string) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set primary campus: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE campus_assignments SET is_primary = FALSE, updated_at = $2 WHERE person_id = $1 AND is_primary = TRUE`, personID, now); err != nil {
		return fmt.Errorf("clear primary flags: %w", err)
	}

	var result sql.Result
	result, err = tx.ExecContext(ctx, `UPDATE campus_assignments SET is_primary = TRUE, updated_at = $3 WHERE person_id = $1 AND campus_id = $2 AND status = $4`,
		personID, campusID, now, models.AssignmentStatusActive)
	if err != nil {
		return fmt.Errorf("set primary flag: %w", err)
	}
	var affected int64
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check primary rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set primary campus: %w", err)
	}
	return nil
}

// ClearPrimary drops the primary flag from every ACTIVE row for the person.
func (r *AssignmentRepository) ClearPrimary(ctx context.Context, personID string) error {
	const query = `UPDATE campus_assignments SET is_primary = FALSE, updated_at = $2 WHERE person_id = $1 AND is_primary = TRUE AND status = $3`
	if _, err := r.db.ExecContext(ctx, query, personID, time.Now().UTC(), models.AssignmentStatusActive); err != nil {
		return fmt.Errorf("clear primary flags: %w", err)
	}
	return nil
}

// DeleteCampusAssignment removes the assignment and every dependent class and
// subject assignment in one transaction. Storage-level ON DELETE CASCADE is
// the second line of defense.
func (r *AssignmentRepository) DeleteCampusAssignment(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete campus assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subject_assignments WHERE class_assignment_id IN (SELECT id FROM class_assignments WHERE campus_assignment_id = $1)`, id); err != nil {
		return fmt.Errorf("delete subject assignments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM class_assignments WHERE campus_assignment_id = $1`, id); err != nil {
		return fmt.Errorf("delete class assignments: %w", err)
	}

	var result sql.Result
	result, err = tx.ExecContext(ctx, `DELETE FROM campus_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campus assignment: %w", err)
	}
	var affected int64
	affected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete campus assignment: %w", err)
	}
	return nil
}

// CreateClassAssignment inserts a class assignment.
func (r *AssignmentRepository) CreateClassAssignment(ctx context.Context, assignment *models.ClassAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	if assignment.Status == "" {
		assignment.Status = models.AssignmentStatusActive
	}
	const query = `INSERT INTO class_assignments (id, campus_assignment_id, class_id, is_class_teacher, status, created_at)
		VALUES (:id, :campus_assignment_id, :class_id, :is_class_teacher, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create class assignment: %w", err)
	}
	return nil
}

// FindClassAssignment returns a class assignment by its ID.
func (r *AssignmentRepository) FindClassAssignment(ctx context.Context, id string) (*models.ClassAssignment, error) {
	const query = `SELECT id, campus_assignment_id, class_id, is_class_teacher, status, created_at FROM class_assignments WHERE id = $1`
	var assignment models.ClassAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// ExistsClassAssignment checks for a duplicate (campus_assignment, class) pair.
func (r *AssignmentRepository) ExistsClassAssignment(ctx context.Context, campusAssignmentID, classID string) (bool, error) {
	const query = `SELECT 1 FROM class_assignments WHERE campus_assignment_id = $1 AND class_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, campusAssignmentID, classID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class assignment: %w", err)
	}
	return true, nil
}

// ListClassAssignments returns class assignments under one campus assignment.
func (r *AssignmentRepository) ListClassAssignments(ctx context.Context, campusAssignmentID string) ([]models.ClassAssignmentDetail, error) {
	const query = `
SELECT cla.id, cla.campus_assignment_id, cla.class_id, cla.is_class_teacher, cla.status, cla.created_at,
       cl.name AS class_name
FROM class_assignments cla
JOIN classes cl ON cl.id = cla.class_id
WHERE cla.campus_assignment_id = $1
ORDER BY cl.name ASC`
	var details []models.ClassAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, campusAssignmentID); err != nil {
		return nil, fmt.Errorf("list class assignments: %w", err)
	}

	refs := make([]*models.ClassAssignmentDetail, len(details))
	for i := range details {
		refs[i] = &details[i]
	}
	if err := r.attachSubjectDetails(ctx, refs); err != nil {
		return nil, err
	}
	return details, nil
}

// CreateSubjectAssignments inserts the given subjects under one class
// assignment in a single transaction. Either every row is created or none.
func (r *AssignmentRepository) CreateSubjectAssignments(ctx context.Context, classAssignmentID string, subjectIDs []string) ([]models.SubjectAssignment, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create subject assignments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	created := make([]models.SubjectAssignment, 0, len(subjectIDs))
	for _, subjectID := range subjectIDs {
		assignment := models.SubjectAssignment{
			ID:                uuid.NewString(),
			ClassAssignmentID: classAssignmentID,
			SubjectID:         subjectID,
			Status:            models.AssignmentStatusActive,
			CreatedAt:         now,
		}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO subject_assignments (id, class_assignment_id, subject_id, status, created_at)
			VALUES (:id, :class_assignment_id, :subject_id, :status, :created_at)`, &assignment); err != nil {
			return nil, fmt.Errorf("create subject assignment: %w", err)
		}
		created = append(created, assignment)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create subject assignments: %w", err)
	}
	return created, nil
}

// ExistsSubjectAssignment checks for a duplicate (class_assignment, subject) pair.
func (r *AssignmentRepository) ExistsSubjectAssignment(ctx context.Context, classAssignmentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM subject_assignments WHERE class_assignment_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, classAssignmentID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject assignment: %w", err)
	}
	return true, nil
}

// ListSubjectAssignments returns subject assignments under one class assignment.
func (r *AssignmentRepository) ListSubjectAssignments(ctx context.Context, classAssignmentID string) ([]models.SubjectAssignmentDetail, error) {
	const query = `
SELECT sa.id, sa.class_assignment_id, sa.subject_id, sa.status, sa.created_at,
       s.name AS subject_name, s.code AS subject_code
FROM subject_assignments sa
JOIN subjects s ON s.id = sa.subject_id
WHERE sa.class_assignment_id = $1
ORDER BY s.name ASC`
	var details []models.SubjectAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, classAssignmentID); err != nil {
		return nil, fmt.Errorf("list subject assignments: %w", err)
	}
	return details, nil
}

// attachClassDetails loads class assignments (and their subjects) for the
// given campus assignment details in two bulk queries.
func (r *AssignmentRepository) attachClassDetails(ctx context.Context, details []*models.CampusAssignmentDetail) error {
	if len(details) == 0 {
		return nil
	}
	placeholders := make([]string, len(details))
	args := make([]interface{}, len(details))
	index := make(map[string]*models.CampusAssignmentDetail, len(details))
	for i, d := range details {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = d.ID
		index[d.ID] = d
	}

	query := fmt.Sprintf(`
SELECT cla.id, cla.campus_assignment_id, cla.class_id, cla.is_class_teacher, cla.status, cla.created_at,
       cl.name AS class_name
FROM class_assignments cla
JOIN classes cl ON cl.id = cla.class_id
WHERE cla.campus_assignment_id IN (%s)
ORDER BY cl.name ASC`, strings.Join(placeholders, ","))

	var classes []models.ClassAssignmentDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return fmt.Errorf("load class assignments: %w", err)
	}

	refs := make([]*models.ClassAssignmentDetail, len(classes))
	for i := range classes {
		refs[i] = &classes[i]
	}
	if err := r.attachSubjectDetails(ctx, refs); err != nil {
		return err
	}

	for i := range classes {
		parent := index[classes[i].CampusAssignmentID]
		if parent != nil {
			parent.Classes = append(parent.Classes, classes[i])
		}
	}
	return nil
}

func (r *AssignmentRepository) attachSubjectDetails(ctx context.Context, details []*models.ClassAssignmentDetail) error {
	if len(details) == 0 {
		return nil
	}
	placeholders := make([]string, len(details))
	args := make([]interface{}, len(details))
	index := make(map[string]*models.ClassAssignmentDetail, len(details))
	for i, d := range details {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = d.ID
		index[d.ID] = d
	}

	query := fmt.Sprintf(`
SELECT sa.id, sa.class_assignment_id, sa.subject_id, sa.status, sa.created_at,
       s.name AS subject_name, s.code AS subject_code
FROM subject_assignments sa
JOIN subjects s ON s.id = sa.subject_id
WHERE sa.class_assignment_id IN (%s)
ORDER BY s.name ASC`, strings.Join(placeholders, ","))

	var subjects []models.SubjectAssignmentDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return fmt.Errorf("load subject assignments: %w", err)
	}

	for i := range subjects {
		parent := index[subjects[i].ClassAssignmentID]
		if parent != nil {
			parent.Subjects = append(parent.Subjects, subjects[i])
		}
	}
	return nil
}
