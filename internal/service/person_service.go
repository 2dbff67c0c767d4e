package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type personLister interface {
	List(ctx context.Context, kind models.PersonKind, page, size int) ([]models.Person, int, error)
}

// PersonService serves read-only person listings for the admin screens that
// pick assignment targets.
type PersonService struct {
	repo   personLister
	logger *zap.Logger
}

// NewPersonService constructs PersonService.
func NewPersonService(repo personLister, logger *zap.Logger) *PersonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonService{repo: repo, logger: logger}
}

// List returns persons optionally filtered by kind, with pagination metadata.
func (s *PersonService) List(ctx context.Context, kind string, page, size int) ([]models.Person, *models.Pagination, error) {
	personKind := models.PersonKind(kind)
	if kind != "" && personKind != models.PersonKindTeacher && personKind != models.PersonKindStudent {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown person kind %q", kind))
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	persons, total, err := s.repo.List(ctx, personKind, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list persons")
	}
	return persons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
