package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type permissionReader interface {
	HasScope(ctx context.Context, userID, campusID string, scopes ...models.PermissionScope) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.CampusPermission, error)
}

// CampusAuthorizer answers campus-scoped permission questions for an
// authenticated caller.
type CampusAuthorizer interface {
	CanManage(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error)
	CanView(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error)
}

// PermissionService resolves campus permissions from explicit grants,
// short-circuiting for elevated roles.
type PermissionService struct {
	repo   permissionReader
	logger *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(repo permissionReader, logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{repo: repo, logger: logger}
}

// CanManage reports whether the caller may mutate assignments on the campus.
func (s *PermissionService) CanManage(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error) {
	if claims == nil {
		return false, nil
	}
	if claims.Role.Elevated() {
		return true, nil
	}
	ok, err := s.repo.HasScope(ctx, claims.UserID, campusID, models.ScopeManage)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve campus permission")
	}
	return ok, nil
}

// CanView reports whether the caller may read rosters on the campus. A
// MANAGE grant implies VIEW.
func (s *PermissionService) CanView(ctx context.Context, claims *models.JWTClaims, campusID string) (bool, error) {
	if claims == nil {
		return false, nil
	}
	if claims.Role.Elevated() {
		return true, nil
	}
	ok, err := s.repo.HasScope(ctx, claims.UserID, campusID, models.ScopeView, models.ScopeManage)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve campus permission")
	}
	return ok, nil
}

// GrantsFor lists the explicit campus grants held by a user.
func (s *PermissionService) GrantsFor(ctx context.Context, userID string) ([]models.CampusPermission, error) {
	grants, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campus permissions")
	}
	return grants, nil
}
