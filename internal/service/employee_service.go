package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	Create(ctx context.Context, emp *models.Employee) error
	Update(ctx context.Context, emp *models.Employee) error
	Deactivate(ctx context.Context, id string) error
}

// planInvalidator drops cached rosters after domain data changes; every
// mutation in the CRUD services goes through it.
type planInvalidator interface {
	InvalidatePlans(ctx context.Context)
}

// EmployeeService implements roster-member management.
type EmployeeService struct {
	repo      employeeRepository
	plans     planInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, plans planInvalidator, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, plans: plans, validator: validate, logger: logger}
}

// List returns employees with pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	return employees, total, nil
}

// Get fetches a single employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Create adds a new employee to the roster.
func (s *EmployeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	emp := &models.Employee{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Group:           models.EmployeeGroup(req.Group),
		Keyholder:       req.Keyholder,
		Active:          true,
		ContractedHours: req.ContractedHours,
		MaxHoursPerWeek: req.MaxHoursPerWeek,
		MaxHoursPerDay:  req.MaxHoursPerDay,
		MinRestHours:    req.MinRestHours,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.invalidate(ctx)
	return emp, nil
}

// Update modifies an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req dto.UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	emp.FirstName = req.FirstName
	emp.LastName = req.LastName
	emp.Group = models.EmployeeGroup(req.Group)
	if req.Keyholder != nil {
		emp.Keyholder = *req.Keyholder
	}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if req.ContractedHours != nil {
		emp.ContractedHours = *req.ContractedHours
	}
	if req.MaxHoursPerWeek != nil {
		emp.MaxHoursPerWeek = *req.MaxHoursPerWeek
	}
	if req.MaxHoursPerDay != nil {
		emp.MaxHoursPerDay = *req.MaxHoursPerDay
	}
	if req.MinRestHours != nil {
		emp.MinRestHours = *req.MinRestHours
	}

	if err := s.repo.Update(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}

	s.invalidate(ctx)
	return emp, nil
}

// Deactivate soft-deletes an employee; history and past assignments stay.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employee")
	}
	s.invalidate(ctx)
	return nil
}

func (s *EmployeeService) invalidate(ctx context.Context) {
	if s.plans != nil {
		s.plans.InvalidatePlans(ctx)
	}
}
