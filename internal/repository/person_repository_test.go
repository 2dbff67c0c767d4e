package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edukita/campus-assignment-api/internal/models"
)

func newPersonRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPersonRepositoryListFiltersByKind(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, kind, active, created_at FROM persons WHERE kind = $1 ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs(models.PersonKindTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "kind", "active", "created_at"}).
			AddRow("p1", "Guru Satu", "guru@example.com", "TEACHER", true, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM persons WHERE kind = $1")).
		WithArgs(models.PersonKindTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	persons, total, err := repo.List(context.Background(), models.PersonKindTeacher, 1, 20)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, "p1", persons[0].ID)
	assert.Equal(t, 7, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryListPaginationOffset(t *testing.T) {
	db, mock, cleanup := newPersonRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, email, kind, active, created_at FROM persons ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "kind", "active", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM persons")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	persons, total, err := repo.List(context.Background(), "", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, persons)
	assert.Equal(t, 12, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
