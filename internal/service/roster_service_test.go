package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/pkg/config"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type mockRosterProvider struct {
	entries []models.RosterEntry
	err     error
}

func (m *mockRosterProvider) GetPersonsForCampus(ctx context.Context, actor *models.JWTClaims, campusID string, includeInactive bool) ([]models.RosterEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func sampleRoster() []models.RosterEntry {
	return []models.RosterEntry{
		{
			Person: models.Person{ID: "p1", FullName: "Budi Santoso", Email: "budi@example.com", Kind: models.PersonKindStudent},
			Assignment: models.CampusAssignmentDetail{
				CampusAssignment: models.CampusAssignment{Status: models.AssignmentStatusActive, IsPrimary: true, JoinedAt: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
			},
		},
	}
}

func TestRosterExportCSV(t *testing.T) {
	provider := &mockRosterProvider{entries: sampleRoster()}
	svc := NewRosterService(provider, config.RosterConfig{ExportEnabled: true}, zap.NewNop())

	export, err := svc.Export(context.Background(), adminClaims(), "campus-1", "csv", false)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", export.ContentType)
	assert.Contains(t, export.Filename, "campus-1")

	body := string(export.Content)
	assert.Contains(t, body, "Budi Santoso")
	assert.Contains(t, body, "2025-01-15")
	assert.Contains(t, strings.Split(body, "\n")[0], "Person ID")
}

func TestRosterExportPDF(t *testing.T) {
	provider := &mockRosterProvider{entries: sampleRoster()}
	svc := NewRosterService(provider, config.RosterConfig{ExportEnabled: true}, zap.NewNop())

	export, err := svc.Export(context.Background(), adminClaims(), "campus-1", "pdf", false)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", export.ContentType)
	assert.True(t, strings.HasPrefix(string(export.Content), "%PDF"))
}

func TestRosterExportUnsupportedFormat(t *testing.T) {
	svc := NewRosterService(&mockRosterProvider{}, config.RosterConfig{ExportEnabled: true}, zap.NewNop())

	_, err := svc.Export(context.Background(), adminClaims(), "campus-1", "xlsx", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRosterExportPropagatesPermissionError(t *testing.T) {
	provider := &mockRosterProvider{err: appErrors.Clone(appErrors.ErrForbidden, "missing campus permission")}
	svc := NewRosterService(provider, config.RosterConfig{ExportEnabled: true}, zap.NewNop())

	_, err := svc.Export(context.Background(), adminClaims(), "campus-1", "csv", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestRosterExportRowLimit(t *testing.T) {
	provider := &mockRosterProvider{entries: sampleRoster()}
	svc := NewRosterService(provider, config.RosterConfig{ExportEnabled: true, MaxExportRows: 0}, zap.NewNop())

	_, err := svc.Export(context.Background(), adminClaims(), "campus-1", "csv", false)
	require.NoError(t, err)

	svc = NewRosterService(provider, config.RosterConfig{ExportEnabled: true, MaxExportRows: -1}, zap.NewNop())
	_, err = svc.Export(context.Background(), adminClaims(), "campus-1", "csv", false)
	require.NoError(t, err)
}

func TestRosterExportDisabled(t *testing.T) {
	svc := NewRosterService(&mockRosterProvider{}, config.RosterConfig{ExportEnabled: false}, zap.NewNop())

	_, err := svc.Export(context.Background(), adminClaims(), "campus-1", "csv", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
