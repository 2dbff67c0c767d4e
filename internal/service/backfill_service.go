package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/pkg/config"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
)

type backfillRepository interface {
	ListInferredCampuses(ctx context.Context) ([]models.InferredCampus, error)
	ListPersonsWithoutPrimary(ctx context.Context) ([]string, error)
	OldestActiveAssignment(ctx context.Context, personID string) (*models.CampusAssignment, error)
}

type backfillAssignmentRepository interface {
	ExistsCampusAssignment(ctx context.Context, personID, campusID string) (bool, error)
	CreateCampusAssignment(ctx context.Context, assignment *models.CampusAssignment, clearPrimary bool) error
	SetPrimary(ctx context.Context, personID, campusID string) error
}

// BackfillSummary reports what a backfill run did, or would do in dry-run
// mode.
type BackfillSummary struct {
	DryRun             bool          `json:"dry_run"`
	PairsScanned       int           `json:"pairs_scanned"`
	AssignmentsCreated int           `json:"assignments_created"`
	PairsSkipped       int           `json:"pairs_skipped"`
	PrimariesElected   int           `json:"primaries_elected"`
	Duration           time.Duration `json:"duration"`
}

// BackfillService migrates legacy enrollment data into campus assignments.
// Both passes are idempotent so the runner can be re-executed after partial
// failures.
type BackfillService struct {
	repo        backfillRepository
	assignments backfillAssignmentRepository
	audit       auditWriter
	batchSize   int
	logger      *zap.Logger
}

// NewBackfillService constructs BackfillService. audit may be nil when no
// audit trail is wanted (tests, ad-hoc runs).
func NewBackfillService(repo backfillRepository, assignments backfillAssignmentRepository, audit auditWriter, cfg config.BackfillConfig, logger *zap.Logger) *BackfillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackfillService{repo: repo, assignments: assignments, audit: audit, batchSize: cfg.BatchSize, logger: logger}
}

// Run executes both backfill passes. With dryRun set it only counts the
// changes that would be made.
func (s *BackfillService) Run(ctx context.Context, dryRun bool) (*BackfillSummary, error) {
	start := time.Now()
	summary := &BackfillSummary{DryRun: dryRun}

	if err := s.inferCampusLinks(ctx, dryRun, summary); err != nil {
		return nil, err
	}
	if err := s.electPrimaries(ctx, dryRun, summary); err != nil {
		return nil, err
	}

	summary.Duration = time.Since(start)
	if !dryRun {
		s.recordRun(ctx, summary)
	}
	s.logger.Info("backfill run finished",
		zap.Bool("dry_run", summary.DryRun),
		zap.Int("pairs_scanned", summary.PairsScanned),
		zap.Int("assignments_created", summary.AssignmentsCreated),
		zap.Int("pairs_skipped", summary.PairsSkipped),
		zap.Int("primaries_elected", summary.PrimariesElected),
		zap.Duration("duration", summary.Duration))
	return summary, nil
}

// inferCampusLinks creates a campus assignment for every (person, campus)
// pair implied by active legacy enrollments that has no assignment yet.
func (s *BackfillService) inferCampusLinks(ctx context.Context, dryRun bool, summary *BackfillSummary) error {
	pairs, err := s.repo.ListInferredCampuses(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list inferred campus pairs")
	}
	summary.PairsScanned = len(pairs)

	batch := s.batchSize
	if batch <= 0 {
		batch = len(pairs)
	}
	for offset := 0; offset < len(pairs); offset += batch {
		end := offset + batch
		if end > len(pairs) {
			end = len(pairs)
		}
		for _, pair := range pairs[offset:end] {
			exists, err := s.assignments.ExistsCampusAssignment(ctx, pair.PersonID, pair.CampusID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing assignment")
			}
			if exists {
				summary.PairsSkipped++
				continue
			}
			if !dryRun {
				assignment := &models.CampusAssignment{
					PersonID:  pair.PersonID,
					CampusID:  pair.CampusID,
					IsPrimary: false,
					Status:    models.AssignmentStatusActive,
					JoinedAt:  time.Now().UTC(),
				}
				if err := s.assignments.CreateCampusAssignment(ctx, assignment, false); err != nil {
					return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create inferred assignment")
				}
			}
			summary.AssignmentsCreated++
		}
		s.logger.Debug("backfill batch processed",
			zap.Int("from", offset),
			zap.Int("to", end),
			zap.Int("total", len(pairs)))
	}
	return nil
}

// recordRun writes an audit trail entry for a completed non-dry run. Audit
// failures are logged, never surfaced: the backfill itself succeeded.
func (s *BackfillService) recordRun(ctx context.Context, summary *BackfillSummary) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   models.AuditActionBackfillRun,
		Resource: "campus_assignments",
	}
	if raw, err := json.Marshal(summary); err == nil {
		entry.NewValues = raw
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record backfill audit entry", zap.Error(err))
	}
}

// electPrimaries marks the oldest active assignment as primary for every
// person who has active assignments but no primary flag.
func (s *BackfillService) electPrimaries(ctx context.Context, dryRun bool, summary *BackfillSummary) error {
	personIDs, err := s.repo.ListPersonsWithoutPrimary(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list persons without primary campus")
	}

	for _, personID := range personIDs {
		oldest, err := s.repo.OldestActiveAssignment(ctx, personID)
		if err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find oldest active assignment")
		}
		if !dryRun {
			if err := s.assignments.SetPrimary(ctx, personID, oldest.CampusID); err != nil {
				if err == sql.ErrNoRows {
					continue
				}
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to elect primary campus")
			}
		}
		summary.PrimariesElected++
	}
	return nil
}
