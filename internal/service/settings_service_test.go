package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

func TestSettingsServiceUpdate(t *testing.T) {
	repo := &settingsRepoStub{}
	plans := &planInvalidatorStub{}
	service := NewSettingsService(repo, plans, validator.New(), zap.NewNop())

	settings, err := service.Update(context.Background(), dto.UpdateSettingsRequest{
		Weekdays: weekAllOpen(),
		SpecialDays: []dto.SpecialDayInput{
			{Date: "2024-12-24", Closed: true, Note: "Christmas Eve"},
		},
		ShiftTypes: []dto.ShiftTypeInput{
			{Name: "Morning", StartTime: "08:00", EndTime: "12:00"},
			{ID: "late", Name: "Late", StartTime: "16:00", EndTime: "22:00"},
		},
	})
	require.NoError(t, err)

	assert.True(t, settings.Weekdays[0].Open)
	assert.True(t, settings.SpecialDays["2024-12-24"].Closed)
	require.Len(t, settings.ShiftTypes, 2)
	assert.NotEmpty(t, settings.ShiftTypes[0].ID, "missing shift ids are generated")
	assert.Equal(t, "late", settings.ShiftTypes[1].ID)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 1, plans.calls)
}

func TestSettingsServiceUpdateRequiresFullWeek(t *testing.T) {
	service := NewSettingsService(&settingsRepoStub{}, nil, validator.New(), zap.NewNop())

	_, err := service.Update(context.Background(), dto.UpdateSettingsRequest{
		Weekdays: weekAllOpen()[:5],
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceUpdateRejectsDuplicateSpecialDay(t *testing.T) {
	service := NewSettingsService(&settingsRepoStub{}, nil, validator.New(), zap.NewNop())

	_, err := service.Update(context.Background(), dto.UpdateSettingsRequest{
		Weekdays: weekAllOpen(),
		SpecialDays: []dto.SpecialDayInput{
			{Date: "2024-12-24", Closed: true},
			{Date: "2024-12-24", OpeningTime: "10:00", ClosingTime: "14:00"},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceGetNotConfigured(t *testing.T) {
	service := NewSettingsService(&settingsRepoStub{missing: true}, nil, validator.New(), zap.NewNop())

	_, err := service.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func weekAllOpen() []dto.WeekdayHoursInput {
	week := make([]dto.WeekdayHoursInput, 7)
	for i := range week {
		week[i] = dto.WeekdayHoursInput{Open: true, OpeningTime: "08:00", ClosingTime: "20:00"}
	}
	return week
}

type settingsRepoStub struct {
	missing bool
	current *models.StoreSettings
	saves   int
}

func (s *settingsRepoStub) Get(ctx context.Context) (*models.StoreSettings, error) {
	if s.missing || s.current == nil {
		return nil, sql.ErrNoRows
	}
	return s.current, nil
}

func (s *settingsRepoStub) Save(ctx context.Context, settings *models.StoreSettings) error {
	s.saves++
	settings.Version = s.saves
	s.current = settings
	return nil
}
