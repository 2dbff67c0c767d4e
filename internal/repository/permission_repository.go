package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edukita/campus-assignment-api/internal/models"
)

// PermissionRepository looks up campus-scoped permission grants.
type PermissionRepository struct {
	db *sqlx.DB
}

// NewPermissionRepository constructs the repository.
func NewPermissionRepository(db *sqlx.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

// HasScope checks whether the user holds any of the scopes at the campus.
func (r *PermissionRepository) HasScope(ctx context.Context, userID, campusID string, scopes ...models.PermissionScope) (bool, error) {
	if len(scopes) == 0 {
		return false, nil
	}
	query := `SELECT 1 FROM campus_permissions WHERE user_id = $1 AND campus_id = $2 AND scope IN (`
	args := []interface{}{userID, campusID}
	for i, scope := range scopes {
		if i > 0 {
			query += ","
		}
		query += fmt.Sprintf("$%d", len(args)+1)
		args = append(args, scope)
	}
	query += `) LIMIT 1`

	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check campus permission: %w", err)
	}
	return true, nil
}

// ListByUser returns every grant held by a user.
func (r *PermissionRepository) ListByUser(ctx context.Context, userID string) ([]models.CampusPermission, error) {
	const query = `SELECT id, user_id, campus_id, scope, created_at FROM campus_permissions WHERE user_id = $1 ORDER BY campus_id ASC`
	var grants []models.CampusPermission
	if err := r.db.SelectContext(ctx, &grants, query, userID); err != nil {
		return nil, fmt.Errorf("list campus permissions: %w", err)
	}
	return grants, nil
}
