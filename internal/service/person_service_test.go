package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type mockPersonLister struct {
	persons  []models.Person
	total    int
	lastKind models.PersonKind
	lastPage int
	lastSize int
}

func (m *mockPersonLister) List(ctx context.Context, kind models.PersonKind, page, size int) ([]models.Person, int, error) {
	m.lastKind = kind
	m.lastPage = page
	m.lastSize = size
	return m.persons, m.total, nil
}

func TestPersonListReturnsPaginationMeta(t *testing.T) {
	repo := &mockPersonLister{
		persons: []models.Person{{ID: "p1", FullName: "Guru Satu", Kind: models.PersonKindTeacher}},
		total:   41,
	}
	svc := NewPersonService(repo, zap.NewNop())

	persons, pagination, err := svc.List(context.Background(), "TEACHER", 2, 20)
	require.NoError(t, err)
	assert.Len(t, persons, 1)
	assert.Equal(t, models.PersonKindTeacher, repo.lastKind)
	assert.Equal(t, 2, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 41, pagination.TotalCount)
}

func TestPersonListNormalizesPaging(t *testing.T) {
	repo := &mockPersonLister{}
	svc := NewPersonService(repo, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), "", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastPage)
	assert.Equal(t, 20, repo.lastSize)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}

func TestPersonListRejectsUnknownKind(t *testing.T) {
	svc := NewPersonService(&mockPersonLister{}, zap.NewNop())

	_, _, err := svc.List(context.Background(), "ALUMNI", 1, 20)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "ALUMNI")
}
