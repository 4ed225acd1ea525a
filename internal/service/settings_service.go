package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) error
}

// SettingsService manages the store calendar and shift-type templates.
type SettingsService struct {
	repo      settingsRepository
	plans     planInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, plans planInvalidator, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, plans: plans, validator: validate, logger: logger}
}

// Get returns the current store settings.
func (s *SettingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "store settings not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load store settings")
	}
	return settings, nil
}

// Update replaces the full store calendar as a new settings version.
func (s *SettingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*models.StoreSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings := &models.StoreSettings{
		SpecialDays: make(map[string]models.SpecialDay, len(req.SpecialDays)),
		ShiftTypes:  make([]models.ShiftTypeDefinition, 0, len(req.ShiftTypes)),
	}

	for i, day := range req.Weekdays {
		settings.Weekdays[i] = models.WeekdayHours{
			Open:        day.Open,
			OpeningTime: day.OpeningTime,
			ClosingTime: day.ClosingTime,
		}
	}

	for _, special := range req.SpecialDays {
		if _, exists := settings.SpecialDays[special.Date]; exists {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate special day %s", special.Date))
		}
		settings.SpecialDays[special.Date] = models.SpecialDay{
			Closed:      special.Closed,
			OpeningTime: special.OpeningTime,
			ClosingTime: special.ClosingTime,
			Note:        special.Note,
		}
	}

	seen := make(map[string]bool, len(req.ShiftTypes))
	for _, shift := range req.ShiftTypes {
		id := shift.ID
		if id == "" {
			id = uuid.NewString()
		}
		if seen[id] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate shift type id %s", id))
		}
		seen[id] = true
		settings.ShiftTypes = append(settings.ShiftTypes, models.ShiftTypeDefinition{
			ID:        id,
			Name:      shift.Name,
			StartTime: shift.StartTime,
			EndTime:   shift.EndTime,
		})
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save store settings")
	}

	s.logger.Info("store settings updated", zap.Int("version", settings.Version))
	if s.plans != nil {
		s.plans.InvalidatePlans(ctx)
	}
	return settings, nil
}
