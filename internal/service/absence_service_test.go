package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

func TestAbsenceServiceCreate(t *testing.T) {
	repo := newAbsenceRepoStub()
	plans := &planInvalidatorStub{}
	service := newAbsenceServiceFixture(repo, plans)

	absence, err := service.Create(context.Background(), dto.CreateAbsenceRequest{
		EmployeeID: "emp-1",
		StartDate:  "2024-01-10",
		EndDate:    "2024-01-12",
		Type:       "VACATION",
		Note:       "ski trip",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AbsenceType("VACATION"), absence.Type)
	require.NotNil(t, absence.Note)
	assert.Equal(t, "ski trip", *absence.Note)
	assert.Equal(t, 1, plans.calls)
}

func TestAbsenceServiceCreateRejectsInvertedRange(t *testing.T) {
	service := newAbsenceServiceFixture(newAbsenceRepoStub(), nil)

	_, err := service.Create(context.Background(), dto.CreateAbsenceRequest{
		EmployeeID: "emp-1",
		StartDate:  "2024-01-12",
		EndDate:    "2024-01-10",
		Type:       "SICK",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDateRange.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceCreateUnknownEmployee(t *testing.T) {
	service := newAbsenceServiceFixture(newAbsenceRepoStub(), nil)

	_, err := service.Create(context.Background(), dto.CreateAbsenceRequest{
		EmployeeID: "ghost",
		StartDate:  "2024-01-10",
		EndDate:    "2024-01-12",
		Type:       "SICK",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceUpdateClearsNote(t *testing.T) {
	repo := newAbsenceRepoStub()
	note := "old note"
	repo.items["abs-1"] = &models.Absence{
		ID: "abs-1", EmployeeID: "emp-1",
		StartDate: mustDate(t, "2024-01-10"), EndDate: mustDate(t, "2024-01-12"),
		Type: models.AbsenceType("SICK"), Note: &note,
	}
	plans := &planInvalidatorStub{}
	service := newAbsenceServiceFixture(repo, plans)

	updated, err := service.Update(context.Background(), "abs-1", dto.UpdateAbsenceRequest{
		StartDate: "2024-01-11",
		EndDate:   "2024-01-13",
		Type:      "UNPAID",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AbsenceType("UNPAID"), updated.Type)
	assert.Nil(t, updated.Note)
	assert.Equal(t, mustDate(t, "2024-01-11"), updated.StartDate)
	assert.Equal(t, 1, plans.calls)
}

func TestAbsenceServiceDeleteNotFound(t *testing.T) {
	service := newAbsenceServiceFixture(newAbsenceRepoStub(), nil)

	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newAbsenceServiceFixture(repo *absenceRepoStub, plans *planInvalidatorStub) *AbsenceService {
	employees := newEmployeeRepoStub()
	employees.items["emp-1"] = &models.Employee{ID: "emp-1", Active: true}
	var invalidator planInvalidator
	if plans != nil {
		invalidator = plans
	}
	return NewAbsenceService(repo, employees, invalidator, validator.New(), zap.NewNop())
}

type absenceRepoStub struct {
	items map[string]*models.Absence
}

func newAbsenceRepoStub() *absenceRepoStub {
	return &absenceRepoStub{items: make(map[string]*models.Absence)}
}

func (s *absenceRepoStub) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error) {
	var out []models.Absence
	for _, item := range s.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (s *absenceRepoStub) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	if item, ok := s.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *absenceRepoStub) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = fmt.Sprintf("abs-%d", len(s.items)+1)
	}
	copied := *absence
	s.items[absence.ID] = &copied
	return nil
}

func (s *absenceRepoStub) Update(ctx context.Context, absence *models.Absence) error {
	if _, ok := s.items[absence.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *absence
	s.items[absence.ID] = &copied
	return nil
}

func (s *absenceRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}
