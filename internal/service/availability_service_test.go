package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

func TestAvailabilityServiceReplace(t *testing.T) {
	repo := &availabilityRepoStub{}
	plans := &planInvalidatorStub{}
	service := newAvailabilityServiceFixture(repo, plans)

	records, err := service.Replace(context.Background(), "emp-1", dto.ReplaceAvailabilityRequest{
		Entries: []dto.AvailabilityEntry{
			{Weekday: 0, Hour: 8, Kind: "FIXED"},
			{Weekday: 0, Hour: 9, Kind: "PREFERRED"},
			{Weekday: 4, Hour: 14, Kind: "AVAILABLE"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, models.AvailabilityFixed, records[0].Kind)
	assert.Len(t, repo.replaced["emp-1"], 3)
	assert.Equal(t, 1, plans.calls)
}

func TestAvailabilityServiceReplaceRejectsDuplicateCell(t *testing.T) {
	repo := &availabilityRepoStub{}
	service := newAvailabilityServiceFixture(repo, nil)

	_, err := service.Replace(context.Background(), "emp-1", dto.ReplaceAvailabilityRequest{
		Entries: []dto.AvailabilityEntry{
			{Weekday: 0, Hour: 8, Kind: "FIXED"},
			{Weekday: 0, Hour: 8, Kind: "AVAILABLE"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.replaced, "invalid payload must not touch the store")
}

func TestAvailabilityServiceReplaceClearsGrid(t *testing.T) {
	repo := &availabilityRepoStub{}
	plans := &planInvalidatorStub{}
	service := newAvailabilityServiceFixture(repo, plans)

	records, err := service.Replace(context.Background(), "emp-1", dto.ReplaceAvailabilityRequest{})
	require.NoError(t, err)

	assert.Empty(t, records)
	assert.Contains(t, repo.replaced, "emp-1")
	assert.Equal(t, 1, plans.calls)
}

func TestAvailabilityServiceUnknownEmployee(t *testing.T) {
	service := newAvailabilityServiceFixture(&availabilityRepoStub{}, nil)

	_, err := service.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newAvailabilityServiceFixture(repo *availabilityRepoStub, plans *planInvalidatorStub) *AvailabilityService {
	employees := newEmployeeRepoStub()
	employees.items["emp-1"] = &models.Employee{ID: "emp-1", Active: true}
	var invalidator planInvalidator
	if plans != nil {
		invalidator = plans
	}
	return NewAvailabilityService(repo, employees, invalidator, validator.New(), zap.NewNop())
}

type availabilityRepoStub struct {
	replaced map[string][]models.AvailabilityRecord
}

func (s *availabilityRepoStub) ListByEmployee(ctx context.Context, employeeID string) ([]models.AvailabilityRecord, error) {
	if s.replaced == nil {
		return nil, nil
	}
	return s.replaced[employeeID], nil
}

func (s *availabilityRepoStub) ReplaceForEmployee(ctx context.Context, employeeID string, records []models.AvailabilityRecord) error {
	if s.replaced == nil {
		s.replaced = make(map[string][]models.AvailabilityRecord)
	}
	s.replaced[employeeID] = records
	return nil
}
