package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edukita/campus-assignment-api/internal/models"
)

func newPermissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPermissionRepositoryHasScope(t *testing.T) {
	db, mock, cleanup := newPermissionRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM campus_permissions WHERE user_id = $1 AND campus_id = $2 AND scope IN ($3,$4) LIMIT 1")).
		WithArgs("u1", "c1", models.ScopeView, models.ScopeManage).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	ok, err := repo.HasScope(context.Background(), "u1", "c1", models.ScopeView, models.ScopeManage)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryHasScopeNoGrant(t *testing.T) {
	db, mock, cleanup := newPermissionRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM campus_permissions WHERE user_id = $1 AND campus_id = $2 AND scope IN ($3) LIMIT 1")).
		WithArgs("u1", "c1", models.ScopeManage).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	ok, err := repo.HasScope(context.Background(), "u1", "c1", models.ScopeManage)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPermissionRepositoryHasScopeNoScopes(t *testing.T) {
	db, _, cleanup := newPermissionRepoMock(t)
	defer cleanup()
	repo := NewPermissionRepository(db)

	ok, err := repo.HasScope(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.False(t, ok)
}
