package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edukita/campus-assignment-api/internal/models"
	"github.com/edukita/campus-assignment-api/pkg/config"
	appErrors "github.com/edukita/campus-assignment-api/pkg/errors"
	"github.com/edukita/campus-assignment-api/pkg/export"
)

type rosterProvider interface {
	GetPersonsForCampus(ctx context.Context, actor *models.JWTClaims, campusID string, includeInactive bool) ([]models.RosterEntry, error)
}

// RosterExport is a rendered roster document.
type RosterExport struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RosterService renders campus rosters as downloadable documents.
type RosterService struct {
	assignments rosterProvider
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	cfg         config.RosterConfig
	logger      *zap.Logger
}

// NewRosterService constructs RosterService.
func NewRosterService(assignments rosterProvider, cfg config.RosterConfig, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{
		assignments: assignments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(true),
		cfg:         cfg,
		logger:      logger,
	}
}

// Export renders the campus roster in the requested format. Permission
// checks are delegated to the roster provider.
func (s *RosterService) Export(ctx context.Context, actor *models.JWTClaims, campusID, format string, includeInactive bool) (*RosterExport, error) {
	if !s.cfg.ExportEnabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "roster export is disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	entries, err := s.assignments.GetPersonsForCampus(ctx, actor, campusID, includeInactive)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxExportRows > 0 && len(entries) > s.cfg.MaxExportRows {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, fmt.Sprintf("roster has %d rows, export limit is %d", len(entries), s.cfg.MaxExportRows))
	}

	data := export.Dataset{
		Headers: []string{"Person ID", "Name", "Email", "Kind", "Status", "Primary", "Joined At"},
		Rows:    make([]map[string]string, 0, len(entries)),
	}
	for _, entry := range entries {
		primary := ""
		if entry.Assignment.IsPrimary {
			primary = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Person ID": entry.Person.ID,
			"Name":      entry.Person.FullName,
			"Email":     entry.Person.Email,
			"Kind":      string(entry.Person.Kind),
			"Status":    string(entry.Assignment.Status),
			"Primary":   primary,
			"Joined At": entry.Assignment.JoinedAt.Format("2006-01-02"),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "csv":
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster csv")
		}
		return &RosterExport{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("roster-%s-%s.csv", campusID, stamp),
		}, nil
	default:
		content, err := s.pdf.Render(data, fmt.Sprintf("Campus Roster %s", campusID))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster pdf")
		}
		return &RosterExport{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("roster-%s-%s.pdf", campusID, stamp),
		}, nil
	}
}
