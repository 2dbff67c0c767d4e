package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/pkg/config"
	"github.com/edukita/campus-assignment-api/pkg/jobs"
)

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditService records audit trail entries asynchronously through an
// in-memory worker queue so mutation latency is not tied to audit writes.
type AuditService struct {
	queue   *jobs.Queue
	logger  *zap.Logger
	enabled bool
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo auditWriter, cfg config.AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			logger.Error("unexpected audit job payload", zap.String("job_id", job.ID))
			return nil
		}
		return repo.CreateAuditLog(ctx, entry)
	}
	queue := jobs.NewQueue("audit-trail", handler, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return &AuditService{queue: queue, logger: logger, enabled: cfg.Enabled}
}

// Start launches the audit workers.
func (s *AuditService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the queue and stops the workers.
func (s *AuditService) Stop() {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Stop()
}

// Record enqueues an audit entry. Failures are logged, never surfaced to
// the caller.
func (s *AuditService) Record(actor *models.JWTClaims, action, resource string, resourceID string, detail interface{}, ip, userAgent string) {
	if s == nil || !s.enabled {
		return
	}
	entry := &models.AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if actor != nil {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			entry.NewValues = raw
		}
	}
	if err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: action, Payload: entry}); err != nil {
		s.logger.Warn("failed to enqueue audit entry", zap.String("action", action), zap.Error(err))
	}
}
