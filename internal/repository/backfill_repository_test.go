package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edukita/campus-assignment-api/internal/models"
)

func newBackfillRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBackfillRepositoryListInferredCampuses(t *testing.T) {
	db, mock, cleanup := newBackfillRepoMock(t)
	defer cleanup()
	repo := NewBackfillRepository(db)

	rows := sqlmock.NewRows([]string{"person_id", "campus_id"}).
		AddRow("p1", "c1").
		AddRow("p1", "c2").
		AddRow("p2", "c1")
	mock.ExpectQuery("SELECT DISTINCT e.person_id, cl.campus_id").WillReturnRows(rows)

	pairs, err := repo.ListInferredCampuses(context.Background())
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	require.Equal(t, models.InferredCampus{PersonID: "p1", CampusID: "c1"}, pairs[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBackfillRepositoryListPersonsWithoutPrimary(t *testing.T) {
	db, mock, cleanup := newBackfillRepoMock(t)
	defer cleanup()
	repo := NewBackfillRepository(db)

	rows := sqlmock.NewRows([]string{"person_id"}).AddRow("p1").AddRow("p3")
	mock.ExpectQuery("HAVING BOOL_OR\\(is_primary\\) = FALSE").WillReturnRows(rows)

	personIDs, err := repo.ListPersonsWithoutPrimary(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p3"}, personIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBackfillRepositoryOldestActiveAssignment(t *testing.T) {
	db, mock, cleanup := newBackfillRepoMock(t)
	defer cleanup()
	repo := NewBackfillRepository(db)

	joined := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "person_id", "campus_id", "is_primary", "status", "joined_at", "created_at", "updated_at"}).
		AddRow("a1", "p1", "c1", false, models.AssignmentStatusActive, joined, joined, joined)
	mock.ExpectQuery("ORDER BY joined_at ASC, id ASC").
		WithArgs("p1").
		WillReturnRows(rows)

	assignment, err := repo.OldestActiveAssignment(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, "c1", assignment.CampusID)

	mock.ExpectQuery("ORDER BY joined_at ASC, id ASC").
		WithArgs("p9").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.OldestActiveAssignment(context.Background(), "p9")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
