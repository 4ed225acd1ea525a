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

func TestCoverageServiceCreateRule(t *testing.T) {
	repo := newCoverageRepoStub()
	plans := &planInvalidatorStub{}
	service := NewCoverageService(repo, plans, validator.New(), zap.NewNop())

	rule, err := service.CreateRule(context.Background(), dto.CreateCoverageRuleRequest{
		Weekday:      5,
		StartTime:    "10:00",
		EndTime:      "18:00",
		MinEmployees: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, rule.Weekday)
	assert.Equal(t, 3, rule.MinEmployees)
	assert.Equal(t, 1, plans.calls)
}

func TestCoverageServiceCreateRuleRejectsBadTime(t *testing.T) {
	service := NewCoverageService(newCoverageRepoStub(), nil, validator.New(), zap.NewNop())

	_, err := service.CreateRule(context.Background(), dto.CreateCoverageRuleRequest{
		Weekday:      5,
		StartTime:    "25:99",
		EndTime:      "18:00",
		MinEmployees: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCoverageServiceCreateRecurringDefaultsActive(t *testing.T) {
	repo := newCoverageRepoStub()
	plans := &planInvalidatorStub{}
	service := NewCoverageService(repo, plans, validator.New(), zap.NewNop())

	rule, err := service.CreateRecurring(context.Background(), dto.CreateRecurringRuleRequest{
		Name:         "Weekend floor",
		Weekdays:     []int{5, 6},
		StartTime:    "09:00",
		EndTime:      "17:00",
		MinEmployees: 2,
		ValidFrom:    "2024-01-01",
		ValidUntil:   "2024-06-30",
	})
	require.NoError(t, err)

	assert.True(t, rule.Active)
	assert.Equal(t, []int64{5, 6}, []int64(rule.Weekdays))
	require.NotNil(t, rule.ValidFrom)
	require.NotNil(t, rule.ValidUntil)
	assert.Equal(t, 1, plans.calls)
}

func TestCoverageServiceCreateRecurringRejectsInvertedValidity(t *testing.T) {
	service := NewCoverageService(newCoverageRepoStub(), nil, validator.New(), zap.NewNop())

	_, err := service.CreateRecurring(context.Background(), dto.CreateRecurringRuleRequest{
		Name:         "Backwards",
		Weekdays:     []int{0},
		StartTime:    "09:00",
		EndTime:      "17:00",
		MinEmployees: 1,
		ValidFrom:    "2024-06-30",
		ValidUntil:   "2024-01-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDateRange.Code, appErrors.FromError(err).Code)
}

func TestCoverageServiceUpdateRecurringClearsValidity(t *testing.T) {
	repo := newCoverageRepoStub()
	service := NewCoverageService(repo, nil, validator.New(), zap.NewNop())

	created, err := service.CreateRecurring(context.Background(), dto.CreateRecurringRuleRequest{
		Name:         "Weekend floor",
		Weekdays:     []int{5, 6},
		StartTime:    "09:00",
		EndTime:      "17:00",
		MinEmployees: 2,
		ValidFrom:    "2024-01-01",
	})
	require.NoError(t, err)

	updated, err := service.UpdateRecurring(context.Background(), created.ID, dto.CreateRecurringRuleRequest{
		Name:         "Weekend floor",
		Weekdays:     []int{5, 6},
		StartTime:    "09:00",
		EndTime:      "17:00",
		MinEmployees: 2,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ValidFrom, "omitted validity resets the stored window")
	assert.Nil(t, updated.ValidUntil)
}

func TestCoverageServiceDeleteRuleNotFound(t *testing.T) {
	service := NewCoverageService(newCoverageRepoStub(), nil, validator.New(), zap.NewNop())

	err := service.DeleteRule(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type coverageRepoStub struct {
	rules     map[string]*models.CoverageRule
	recurring map[string]*models.RecurringCoverageRule
}

func newCoverageRepoStub() *coverageRepoStub {
	return &coverageRepoStub{
		rules:     make(map[string]*models.CoverageRule),
		recurring: make(map[string]*models.RecurringCoverageRule),
	}
}

func (s *coverageRepoStub) List(ctx context.Context) ([]models.CoverageRule, error) {
	var out []models.CoverageRule
	for _, rule := range s.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (s *coverageRepoStub) FindByID(ctx context.Context, id string) (*models.CoverageRule, error) {
	if rule, ok := s.rules[id]; ok {
		copied := *rule
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *coverageRepoStub) Create(ctx context.Context, rule *models.CoverageRule) error {
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rule-%d", len(s.rules)+1)
	}
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

func (s *coverageRepoStub) Update(ctx context.Context, rule *models.CoverageRule) error {
	if _, ok := s.rules[rule.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *rule
	s.rules[rule.ID] = &copied
	return nil
}

func (s *coverageRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.rules[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.rules, id)
	return nil
}

func (s *coverageRepoStub) ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error) {
	var out []models.RecurringCoverageRule
	for _, rule := range s.recurring {
		out = append(out, *rule)
	}
	return out, nil
}

func (s *coverageRepoStub) FindRecurringByID(ctx context.Context, id string) (*models.RecurringCoverageRule, error) {
	if rule, ok := s.recurring[id]; ok {
		copied := *rule
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *coverageRepoStub) CreateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error {
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rec-%d", len(s.recurring)+1)
	}
	copied := *rule
	s.recurring[rule.ID] = &copied
	return nil
}

func (s *coverageRepoStub) UpdateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error {
	if _, ok := s.recurring[rule.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *rule
	s.recurring[rule.ID] = &copied
	return nil
}

func (s *coverageRepoStub) DeleteRecurring(ctx context.Context, id string) error {
	if _, ok := s.recurring[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.recurring, id)
	return nil
}
