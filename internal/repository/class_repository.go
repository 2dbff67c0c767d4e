package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edukita/campus-assignment-api/internal/models"
)

// ClassRepository reads class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns a class by its ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, campus_id, name, grade, created_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByCampus returns classes belonging to a campus.
func (r *ClassRepository) ListByCampus(ctx context.Context, campusID string) ([]models.Class, error) {
	const query = `SELECT id, campus_id, name, grade, created_at FROM classes WHERE campus_id = $1 ORDER BY name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, campusID); err != nil {
		return nil, fmt.Errorf("list classes by campus: %w", err)
	}
	return classes, nil
}
