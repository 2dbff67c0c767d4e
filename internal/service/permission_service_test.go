package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
)

type mockPermissionRepo struct {
	grants map[string][]models.PermissionScope
	byUser map[string][]models.CampusPermission
}

func (m *mockPermissionRepo) HasScope(ctx context.Context, userID, campusID string, scopes ...models.PermissionScope) (bool, error) {
	held := m.grants[pairKey(userID, campusID)]
	for _, want := range scopes {
		for _, have := range held {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockPermissionRepo) ListByUser(ctx context.Context, userID string) ([]models.CampusPermission, error) {
	return m.byUser[userID], nil
}

func TestCanManageElevatedRoleShortCircuits(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{}, zap.NewNop())

	for _, role := range []models.UserRole{models.RoleSuperAdmin, models.RoleAdmin} {
		ok, err := svc.CanManage(context.Background(), &models.JWTClaims{UserID: "u1", Role: role}, "campus-1")
		require.NoError(t, err)
		assert.True(t, ok, "role %s should bypass grant lookup", role)
	}
}

func TestCanManageRequiresManageScope(t *testing.T) {
	repo := &mockPermissionRepo{grants: map[string][]models.PermissionScope{
		pairKey("u1", "campus-1"): {models.ScopeView},
		pairKey("u1", "campus-2"): {models.ScopeManage},
	}}
	svc := NewPermissionService(repo, zap.NewNop())
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleCoordinator}

	ok, err := svc.CanManage(context.Background(), claims, "campus-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanManage(context.Background(), claims, "campus-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCanViewManageGrantImpliesView(t *testing.T) {
	repo := &mockPermissionRepo{grants: map[string][]models.PermissionScope{
		pairKey("u1", "campus-1"): {models.ScopeManage},
	}}
	svc := NewPermissionService(repo, zap.NewNop())
	claims := &models.JWTClaims{UserID: "u1", Role: models.RoleCoordinator}

	ok, err := svc.CanView(context.Background(), claims, "campus-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanView(context.Background(), claims, "campus-9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanManageNilClaims(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{}, zap.NewNop())

	ok, err := svc.CanManage(context.Background(), nil, "campus-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantsForListsOnlyOwnGrants(t *testing.T) {
	repo := &mockPermissionRepo{byUser: map[string][]models.CampusPermission{
		"u1": {
			{ID: "g1", UserID: "u1", CampusID: "campus-1", Scope: models.ScopeManage},
			{ID: "g2", UserID: "u1", CampusID: "campus-2", Scope: models.ScopeView},
		},
		"u2": {
			{ID: "g3", UserID: "u2", CampusID: "campus-3", Scope: models.ScopeView},
		},
	}}
	svc := NewPermissionService(repo, zap.NewNop())

	grants, err := svc.GrantsFor(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, "campus-1", grants[0].CampusID)
	assert.Equal(t, models.ScopeView, grants[1].Scope)
}

func TestGrantsForEmptyForUnknownUser(t *testing.T) {
	svc := NewPermissionService(&mockPermissionRepo{}, zap.NewNop())

	grants, err := svc.GrantsFor(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, grants)
}
