package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SubjectRepository reads subject records.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ExistingIDs returns the subset of the provided IDs that resolve to subjects.
func (r *SubjectRepository) ExistingIDs(ctx context.Context, subjectIDs []string) (map[string]bool, error) {
	if len(subjectIDs) == 0 {
		return map[string]bool{}, nil
	}
	placeholders := make([]string, len(subjectIDs))
	args := make([]interface{}, len(subjectIDs))
	for i, id := range subjectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT id FROM subjects WHERE id IN (%s)", strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("validate subjects: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(subjectIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subject id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}
