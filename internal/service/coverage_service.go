package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

type coverageRuleRepository interface {
	List(ctx context.Context) ([]models.CoverageRule, error)
	FindByID(ctx context.Context, id string) (*models.CoverageRule, error)
	Create(ctx context.Context, rule *models.CoverageRule) error
	Update(ctx context.Context, rule *models.CoverageRule) error
	Delete(ctx context.Context, id string) error
	ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error)
	FindRecurringByID(ctx context.Context, id string) (*models.RecurringCoverageRule, error)
	CreateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error
	UpdateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error
	DeleteRecurring(ctx context.Context, id string) error
}

// CoverageService manages one-off and recurring staffing rules.
type CoverageService struct {
	repo      coverageRuleRepository
	plans     planInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCoverageService constructs a CoverageService.
func NewCoverageService(repo coverageRuleRepository, plans planInvalidator, validate *validator.Validate, logger *zap.Logger) *CoverageService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoverageService{repo: repo, plans: plans, validator: validate, logger: logger}
}

// ListRules returns all one-off coverage rules.
func (s *CoverageService) ListRules(ctx context.Context) ([]models.CoverageRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list coverage rules")
	}
	return rules, nil
}

// CreateRule declares a one-off rule.
func (s *CoverageService) CreateRule(ctx context.Context, req dto.CreateCoverageRuleRequest) (*models.CoverageRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage rule payload")
	}

	rule := &models.CoverageRule{
		Weekday:           req.Weekday,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		MinEmployees:      req.MinEmployees,
		RequiresKeyholder: req.RequiresKeyholder,
		RequiredGroup:     req.RequiredGroup,
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create coverage rule")
	}

	s.invalidate(ctx)
	return rule, nil
}

// UpdateRule modifies a one-off rule.
func (s *CoverageService) UpdateRule(ctx context.Context, id string, req dto.CreateCoverageRuleRequest) (*models.CoverageRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coverage rule payload")
	}

	rule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "coverage rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage rule")
	}

	rule.Weekday = req.Weekday
	rule.StartTime = req.StartTime
	rule.EndTime = req.EndTime
	rule.MinEmployees = req.MinEmployees
	rule.RequiresKeyholder = req.RequiresKeyholder
	rule.RequiredGroup = req.RequiredGroup

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update coverage rule")
	}

	s.invalidate(ctx)
	return rule, nil
}

// DeleteRule removes a one-off rule.
func (s *CoverageService) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "coverage rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete coverage rule")
	}
	s.invalidate(ctx)
	return nil
}

// ListRecurring returns all recurring rules.
func (s *CoverageService) ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error) {
	rules, err := s.repo.ListRecurring(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recurring rules")
	}
	return rules, nil
}

// CreateRecurring declares a recurring rule.
func (s *CoverageService) CreateRecurring(ctx context.Context, req dto.CreateRecurringRuleRequest) (*models.RecurringCoverageRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring rule payload")
	}

	rule := &models.RecurringCoverageRule{
		Name:              req.Name,
		Weekdays:          toInt64Array(req.Weekdays),
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		MinEmployees:      req.MinEmployees,
		RequiresKeyholder: req.RequiresKeyholder,
		RequiredGroup:     req.RequiredGroup,
		Active:            true,
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if err := applyRecurringValidity(rule, req.ValidFrom, req.ValidUntil); err != nil {
		return nil, err
	}

	if err := s.repo.CreateRecurring(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create recurring rule")
	}

	s.invalidate(ctx)
	return rule, nil
}

// UpdateRecurring modifies a recurring rule.
func (s *CoverageService) UpdateRecurring(ctx context.Context, id string, req dto.CreateRecurringRuleRequest) (*models.RecurringCoverageRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring rule payload")
	}

	rule, err := s.repo.FindRecurringByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recurring rule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recurring rule")
	}

	rule.Name = req.Name
	rule.Weekdays = toInt64Array(req.Weekdays)
	rule.StartTime = req.StartTime
	rule.EndTime = req.EndTime
	rule.MinEmployees = req.MinEmployees
	rule.RequiresKeyholder = req.RequiresKeyholder
	rule.RequiredGroup = req.RequiredGroup
	if req.Active != nil {
		rule.Active = *req.Active
	}
	rule.ValidFrom = nil
	rule.ValidUntil = nil
	if err := applyRecurringValidity(rule, req.ValidFrom, req.ValidUntil); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRecurring(ctx, rule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update recurring rule")
	}

	s.invalidate(ctx)
	return rule, nil
}

// DeleteRecurring removes a recurring rule.
func (s *CoverageService) DeleteRecurring(ctx context.Context, id string) error {
	if err := s.repo.DeleteRecurring(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "recurring rule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete recurring rule")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CoverageService) invalidate(ctx context.Context) {
	if s.plans != nil {
		s.plans.InvalidatePlans(ctx)
	}
}

func toInt64Array(values []int) pq.Int64Array {
	result := make(pq.Int64Array, 0, len(values))
	for _, v := range values {
		result = append(result, int64(v))
	}
	return result
}

func applyRecurringValidity(rule *models.RecurringCoverageRule, validFrom, validUntil string) error {
	if validFrom != "" {
		from, err := time.Parse(rosterDateLayout, validFrom)
		if err != nil {
			return appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable validFrom date")
		}
		rule.ValidFrom = &from
	}
	if validUntil != "" {
		until, err := time.Parse(rosterDateLayout, validUntil)
		if err != nil {
			return appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable validUntil date")
		}
		rule.ValidUntil = &until
	}
	if rule.ValidFrom != nil && rule.ValidUntil != nil && rule.ValidUntil.Before(*rule.ValidFrom) {
		return appErrors.Clone(appErrors.ErrInvalidDateRange, "validUntil before validFrom")
	}
	return nil
}
