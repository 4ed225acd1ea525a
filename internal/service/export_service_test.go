package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

func TestExportServiceCSV(t *testing.T) {
	service := newExportServiceFixture(t, true)

	result, err := service.Export(context.Background(), dto.RosterQuery{From: "2024-01-08", To: "2024-01-14"}, ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "roster_2024-01-08_2024-01-14.csv", result.Filename)

	body := string(result.Payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Employee,Start,End,Kind,Source", lines[0])
	assert.Contains(t, body, "Amy Archer")
	assert.Contains(t, body, "emp-ghost", "unknown employees fall back to the raw id")
}

func TestExportServicePDF(t *testing.T) {
	service := newExportServiceFixture(t, true)

	result, err := service.Export(context.Background(), dto.RosterQuery{}, ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceDisabled(t *testing.T) {
	service := newExportServiceFixture(t, false)

	_, err := service.Export(context.Background(), dto.RosterQuery{}, ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestExportServiceUnknownFormat(t *testing.T) {
	service := newExportServiceFixture(t, true)

	_, err := service.Export(context.Background(), dto.RosterQuery{}, ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newExportServiceFixture(t *testing.T, enabled bool) *ExportService {
	t.Helper()
	assignments := exportAssignmentsStub{items: []models.ScheduleAssignment{
		{EmployeeID: "emp-1", Date: mustDate(t, "2024-01-08"), StartTime: "08:00", EndTime: "16:00", SlotKind: "COVERAGE", Source: "rule-1"},
		{EmployeeID: "emp-ghost", Date: mustDate(t, "2024-01-09"), StartTime: "12:00", EndTime: "18:00", SlotKind: "FIXED", Source: "shift-late"},
	}}
	employees := employeeReaderStub{items: []models.Employee{
		{ID: "emp-1", FirstName: "Amy", LastName: "Archer", Active: true},
	}}
	return NewExportService(assignments, employees, enabled, zap.NewNop(), nil, nil)
}

type exportAssignmentsStub struct {
	items []models.ScheduleAssignment
}

func (s exportAssignmentsStub) ListAssignments(ctx context.Context, query dto.RosterQuery) ([]models.ScheduleAssignment, error) {
	return s.items, nil
}
