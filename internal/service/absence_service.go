package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

type absenceRepository interface {
	List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error)
	FindByID(ctx context.Context, id string) (*models.Absence, error)
	Create(ctx context.Context, absence *models.Absence) error
	Update(ctx context.Context, absence *models.Absence) error
	Delete(ctx context.Context, id string) error
}

type absenceEmployeeReader interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// AbsenceService manages absence intervals.
type AbsenceService struct {
	repo      absenceRepository
	employees absenceEmployeeReader
	plans     planInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs an AbsenceService.
func NewAbsenceService(repo absenceRepository, employees absenceEmployeeReader, plans planInvalidator, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{repo: repo, employees: employees, plans: plans, validator: validate, logger: logger}
}

// List returns absences with pagination metadata.
func (s *AbsenceService) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error) {
	absences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return absences, total, nil
}

// Create records a new absence interval.
func (s *AbsenceService) Create(ctx context.Context, req dto.CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	start, end, err := parseAbsenceRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	absence := &models.Absence{
		EmployeeID: req.EmployeeID,
		StartDate:  start,
		EndDate:    end,
		Type:       models.AbsenceType(req.Type),
	}
	if req.Note != "" {
		absence.Note = &req.Note
	}
	if err := s.repo.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}

	s.invalidate(ctx)
	return absence, nil
}

// Update modifies an existing absence interval.
func (s *AbsenceService) Update(ctx context.Context, id string, req dto.UpdateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	start, end, err := parseAbsenceRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	absence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}

	absence.StartDate = start
	absence.EndDate = end
	absence.Type = models.AbsenceType(req.Type)
	if req.Note != "" {
		absence.Note = &req.Note
	} else {
		absence.Note = nil
	}

	if err := s.repo.Update(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence")
	}

	s.invalidate(ctx)
	return absence, nil
}

// Delete removes an absence interval.
func (s *AbsenceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	s.invalidate(ctx)
	return nil
}

func (s *AbsenceService) invalidate(ctx context.Context) {
	if s.plans != nil {
		s.plans.InvalidatePlans(ctx)
	}
}

func parseAbsenceRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(rosterDateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable start date")
	}
	end, err := time.Parse(rosterDateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable end date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidDateRange, "end date before start date")
	}
	return start, end, nil
}
