package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edukita/campus-assignment-api/internal/models"
)

// CampusRepository reads campus records.
type CampusRepository struct {
	db *sqlx.DB
}

// NewCampusRepository constructs the repository.
func NewCampusRepository(db *sqlx.DB) *CampusRepository {
	return &CampusRepository{db: db}
}

// FindByID returns a campus by its ID.
func (r *CampusRepository) FindByID(ctx context.Context, id string) (*models.Campus, error) {
	const query = `SELECT id, name, city, active, created_at FROM campuses WHERE id = $1`
	var campus models.Campus
	if err := r.db.GetContext(ctx, &campus, query, id); err != nil {
		return nil, err
	}
	return &campus, nil
}

// List returns all campuses ordered by name.
func (r *CampusRepository) List(ctx context.Context) ([]models.Campus, error) {
	const query = `SELECT id, name, city, active, created_at FROM campuses ORDER BY name ASC`
	var campuses []models.Campus
	if err := r.db.SelectContext(ctx, &campuses, query); err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	return campuses, nil
}
