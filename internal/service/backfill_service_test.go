package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/pkg/config"
)

type mockBackfillRepo struct {
	inferred       []models.InferredCampus
	withoutPrimary []string
	oldest         map[string]models.CampusAssignment
}

func (m *mockBackfillRepo) ListInferredCampuses(ctx context.Context) ([]models.InferredCampus, error) {
	return m.inferred, nil
}

func (m *mockBackfillRepo) ListPersonsWithoutPrimary(ctx context.Context) ([]string, error) {
	return m.withoutPrimary, nil
}

func (m *mockBackfillRepo) OldestActiveAssignment(ctx context.Context, personID string) (*models.CampusAssignment, error) {
	if a, ok := m.oldest[personID]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func TestBackfillCreatesMissingAssignments(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{
			{PersonID: "p1", CampusID: "campus-1"},
			{PersonID: "p2", CampusID: "campus-1"},
		},
	}
	assignments := &mockAssignmentRepo{campusAssignments: map[string]models.CampusAssignment{
		"a1": {ID: "a1", PersonID: "p1", CampusID: "campus-1", IsPrimary: true, Status: models.AssignmentStatusActive},
	}}
	svc := NewBackfillService(backfill, assignments, nil, config.BackfillConfig{}, zap.NewNop())

	summary, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PairsScanned)
	assert.Equal(t, 1, summary.AssignmentsCreated)
	assert.Equal(t, 1, summary.PairsSkipped)

	created, err := assignments.FindCampusAssignmentByPair(context.Background(), "p2", "campus-1")
	require.NoError(t, err)
	assert.False(t, created.IsPrimary)
	assert.Equal(t, models.AssignmentStatusActive, created.Status)
}

func TestBackfillElectsOldestActiveAsPrimary(t *testing.T) {
	older := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	backfill := &mockBackfillRepo{
		withoutPrimary: []string{"p1"},
		oldest: map[string]models.CampusAssignment{
			"p1": {ID: "a1", PersonID: "p1", CampusID: "campus-1", JoinedAt: older, Status: models.AssignmentStatusActive},
		},
	}
	assignments := &mockAssignmentRepo{campusAssignments: map[string]models.CampusAssignment{
		"a1": {ID: "a1", PersonID: "p1", CampusID: "campus-1", JoinedAt: older, Status: models.AssignmentStatusActive},
		"a2": {ID: "a2", PersonID: "p1", CampusID: "campus-2", Status: models.AssignmentStatusActive},
	}}
	svc := NewBackfillService(backfill, assignments, nil, config.BackfillConfig{}, zap.NewNop())

	summary, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PrimariesElected)
	assert.True(t, assignments.campusAssignments["a1"].IsPrimary)
	assert.False(t, assignments.campusAssignments["a2"].IsPrimary)
}

func TestBackfillDryRunWritesNothing(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred:       []models.InferredCampus{{PersonID: "p1", CampusID: "campus-1"}},
		withoutPrimary: []string{"p2"},
		oldest: map[string]models.CampusAssignment{
			"p2": {ID: "a2", PersonID: "p2", CampusID: "campus-2", Status: models.AssignmentStatusActive},
		},
	}
	assignments := &mockAssignmentRepo{campusAssignments: map[string]models.CampusAssignment{
		"a2": {ID: "a2", PersonID: "p2", CampusID: "campus-2", Status: models.AssignmentStatusActive},
	}}
	svc := NewBackfillService(backfill, assignments, nil, config.BackfillConfig{}, zap.NewNop())

	summary, err := svc.Run(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.AssignmentsCreated)
	assert.Equal(t, 1, summary.PrimariesElected)
	assert.Nil(t, assignments.created)
	assert.Empty(t, assignments.primarySet)
	assert.False(t, assignments.campusAssignments["a2"].IsPrimary)
}

func TestBackfillRunTwiceIsIdempotent(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{{PersonID: "p1", CampusID: "campus-1"}},
	}
	assignments := &mockAssignmentRepo{}
	svc := NewBackfillService(backfill, assignments, nil, config.BackfillConfig{}, zap.NewNop())

	first, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.AssignmentsCreated)

	second, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.AssignmentsCreated)
	assert.Equal(t, 1, second.PairsSkipped)
}

type mockAuditWriter struct {
	entries []*models.AuditLog
	fail    error
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if m.fail != nil {
		return m.fail
	}
	m.entries = append(m.entries, log)
	return nil
}

func TestBackfillBatchSizeDoesNotChangeOutcome(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{
			{PersonID: "p1", CampusID: "campus-1"},
			{PersonID: "p2", CampusID: "campus-1"},
			{PersonID: "p3", CampusID: "campus-2"},
		},
	}
	assignments := &mockAssignmentRepo{}
	svc := NewBackfillService(backfill, assignments, nil, config.BackfillConfig{BatchSize: 2}, zap.NewNop())

	summary, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.PairsScanned)
	assert.Equal(t, 3, summary.AssignmentsCreated)
	assert.Equal(t, 0, summary.PairsSkipped)
}

func TestBackfillRecordsAuditEntry(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{{PersonID: "p1", CampusID: "campus-1"}},
	}
	audit := &mockAuditWriter{}
	svc := NewBackfillService(backfill, &mockAssignmentRepo{}, audit, config.BackfillConfig{}, zap.NewNop())

	_, err := svc.Run(context.Background(), false)
	require.NoError(t, err)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, models.AuditActionBackfillRun, entry.Action)
	assert.Equal(t, "campus_assignments", entry.Resource)
	assert.Contains(t, string(entry.NewValues), `"assignments_created":1`)
}

func TestBackfillDryRunRecordsNoAuditEntry(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{{PersonID: "p1", CampusID: "campus-1"}},
	}
	audit := &mockAuditWriter{}
	svc := NewBackfillService(backfill, &mockAssignmentRepo{}, audit, config.BackfillConfig{}, zap.NewNop())

	_, err := svc.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, audit.entries)
}

func TestBackfillAuditFailureDoesNotFailRun(t *testing.T) {
	backfill := &mockBackfillRepo{
		inferred: []models.InferredCampus{{PersonID: "p1", CampusID: "campus-1"}},
	}
	audit := &mockAuditWriter{fail: sql.ErrConnDone}
	svc := NewBackfillService(backfill, &mockAssignmentRepo{}, audit, config.BackfillConfig{}, zap.NewNop())

	summary, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AssignmentsCreated)
}
