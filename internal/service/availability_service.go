package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

type availabilityRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]models.AvailabilityRecord, error)
	ReplaceForEmployee(ctx context.Context, employeeID string, records []models.AvailabilityRecord) error
}

// AvailabilityService manages the weekly availability grid per employee.
type AvailabilityService struct {
	repo      availabilityRepository
	employees absenceEmployeeReader
	plans     planInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, employees absenceEmployeeReader, plans planInvalidator, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{repo: repo, employees: employees, plans: plans, validator: validate, logger: logger}
}

// Get returns one employee's full weekly grid.
func (s *AvailabilityService) Get(ctx context.Context, employeeID string) ([]models.AvailabilityRecord, error) {
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list availability")
	}
	return records, nil
}

// Replace swaps an employee's grid atomically. Duplicate weekday-hour
// cells are rejected rather than silently collapsed.
func (s *AvailabilityService) Replace(ctx context.Context, employeeID string, req dto.ReplaceAvailabilityRequest) ([]models.AvailabilityRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if err := s.ensureEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	seen := make(map[[2]int]bool, len(req.Entries))
	records := make([]models.AvailabilityRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		cell := [2]int{entry.Weekday, entry.Hour}
		if seen[cell] {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("duplicate availability cell weekday %d hour %d", entry.Weekday, entry.Hour))
		}
		seen[cell] = true
		records = append(records, models.AvailabilityRecord{
			EmployeeID: employeeID,
			Weekday:    entry.Weekday,
			Hour:       entry.Hour,
			Kind:       models.AvailabilityKind(entry.Kind),
		})
	}

	if err := s.repo.ReplaceForEmployee(ctx, employeeID, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace availability")
	}

	s.invalidate(ctx)
	return records, nil
}

func (s *AvailabilityService) ensureEmployee(ctx context.Context, employeeID string) error {
	if _, err := s.employees.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return nil
}

func (s *AvailabilityService) invalidate(ctx context.Context) {
	if s.plans != nil {
		s.plans.InvalidatePlans(ctx)
	}
}
