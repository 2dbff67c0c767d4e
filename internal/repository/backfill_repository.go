package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edukita/campus-assignment-api/internal/models"
)

// BackfillRepository reads the legacy tables consumed by the one-shot
// assignment backfill. Nothing here is used by steady-state request handling.
type BackfillRepository struct {
	db *sqlx.DB
}

// NewBackfillRepository constructs the repository.
func NewBackfillRepository(db *sqlx.DB) *BackfillRepository {
	return &BackfillRepository{db: db}
}

// ListInferredCampuses derives distinct (person, campus) pairs from legacy
// enrollments: a person is inferred to be at a campus when one of their
// enrolled classes belongs to it.
func (r *BackfillRepository) ListInferredCampuses(ctx context.Context) ([]models.InferredCampus, error) {
	const query = `
SELECT DISTINCT e.person_id, cl.campus_id
FROM enrollments e
JOIN classes cl ON cl.id = e.class_id
WHERE e.status = 'ACTIVE'
ORDER BY e.person_id, cl.campus_id`
	var pairs []models.InferredCampus
	if err := r.db.SelectContext(ctx, &pairs, query); err != nil {
		return nil, fmt.Errorf("list inferred campuses: %w", err)
	}
	return pairs, nil
}

// ListPersonsWithoutPrimary returns person IDs that hold at least one ACTIVE
// campus assignment but no primary one.
func (r *BackfillRepository) ListPersonsWithoutPrimary(ctx context.Context) ([]string, error) {
	const query = `
SELECT person_id
FROM campus_assignments
WHERE status = 'ACTIVE'
GROUP BY person_id
HAVING BOOL_OR(is_primary) = FALSE
ORDER BY person_id`
	var personIDs []string
	if err := r.db.SelectContext(ctx, &personIDs, query); err != nil {
		return nil, fmt.Errorf("list persons without primary: %w", err)
	}
	return personIDs, nil
}

// OldestActiveAssignment returns the earliest-joined ACTIVE assignment for a person.
func (r *BackfillRepository) OldestActiveAssignment(ctx context.Context, personID string) (*models.CampusAssignment, error) {
	const query = `
SELECT id, person_id, campus_id, is_primary, status, joined_at, created_at, updated_at
FROM campus_assignments
WHERE person_id = $1 AND status = 'ACTIVE'
ORDER BY joined_at ASC, id ASC
LIMIT 1`
	var assignment models.CampusAssignment
	if err := r.db.GetContext(ctx, &assignment, query, personID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find oldest active assignment: %w", err)
	}
	return &assignment, nil
}
