package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/export"
)

type exportAssignmentsReader interface {
	ListAssignments(ctx context.Context, query dto.RosterQuery) ([]models.ScheduleAssignment, error)
}

type exportEmployeeLister interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFormat names a supported roster export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries a rendered roster document.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders stored assignments as downloadable documents.
type ExportService struct {
	assignments exportAssignmentsReader
	employees   exportEmployeeLister
	csv         csvRenderer
	pdf         pdfRenderer
	enabled     bool
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(assignments exportAssignmentsReader, employees exportEmployeeLister, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		assignments: assignments,
		employees:   employees,
		csv:         csv,
		pdf:         pdf,
		enabled:     enabled,
		logger:      logger,
	}
}

// Export renders the assignments matching the query in the requested format.
func (s *ExportService) Export(ctx context.Context, query dto.RosterQuery, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "roster exports are disabled")
	}

	assignments, err := s.assignments.ListAssignments(ctx, query)
	if err != nil {
		return nil, err
	}

	dataset, err := s.buildDataset(ctx, assignments)
	if err != nil {
		return nil, err
	}

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, s.buildTitle(query))
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster export")
	}

	s.logger.Info("roster export rendered",
		zap.String("format", string(format)), zap.Int("rows", len(assignments)))

	return &ExportResult{
		Filename:    s.buildFilename(query, format),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(ctx context.Context, assignments []models.ScheduleAssignment) (export.Dataset, error) {
	names := make(map[string]string)
	if s.employees != nil {
		employees, err := s.employees.ListActive(ctx)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees for export")
		}
		for _, emp := range employees {
			names[emp.ID] = emp.FullName()
		}
	}

	rows := make([]map[string]string, 0, len(assignments))
	for _, assignment := range assignments {
		// Deactivated employees can still appear in stored plans; fall
		// back to the raw id when no active record matches.
		name := names[assignment.EmployeeID]
		if name == "" {
			name = assignment.EmployeeID
		}
		rows = append(rows, map[string]string{
			"Date":     assignment.Date.Format(rosterDateLayout),
			"Employee": name,
			"Start":    assignment.StartTime,
			"End":      assignment.EndTime,
			"Kind":     assignment.SlotKind,
			"Source":   assignment.Source,
		})
	}
	return export.Dataset{
		Headers: []string{"Date", "Employee", "Start", "End", "Kind", "Source"},
		Rows:    rows,
	}, nil
}

func (s *ExportService) buildTitle(query dto.RosterQuery) string {
	if query.From != "" || query.To != "" {
		return fmt.Sprintf("Roster %s - %s", query.From, query.To)
	}
	return "Roster"
}

func (s *ExportService) buildFilename(query dto.RosterQuery, format ExportFormat) string {
	parts := []string{"roster"}
	if query.From != "" {
		parts = append(parts, query.From)
	}
	if query.To != "" {
		parts = append(parts, query.To)
	}
	if len(parts) == 1 {
		parts = append(parts, time.Now().UTC().Format("20060102_150405"))
	}
	return fmt.Sprintf("%s.%s", strings.Join(parts, "_"), format)
}
