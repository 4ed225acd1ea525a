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

func TestEmployeeServiceCreateDefaultsActive(t *testing.T) {
	repo := newEmployeeRepoStub()
	plans := &planInvalidatorStub{}
	service := NewEmployeeService(repo, plans, validator.New(), zap.NewNop())

	emp, err := service.Create(context.Background(), dto.CreateEmployeeRequest{
		FirstName:       "Amy",
		LastName:        "Archer",
		Group:           "VZ",
		ContractedHours: 30,
	})
	require.NoError(t, err)

	assert.True(t, emp.Active)
	assert.Equal(t, models.EmployeeGroup("VZ"), emp.Group)
	assert.Equal(t, 1, plans.calls, "mutation must invalidate cached plans")
}

func TestEmployeeServiceCreateRejectsUnknownGroup(t *testing.T) {
	service := NewEmployeeService(newEmployeeRepoStub(), nil, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), dto.CreateEmployeeRequest{
		FirstName: "Amy",
		LastName:  "Archer",
		Group:     "XX",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceUpdateMergesOptionalFields(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.items["emp-1"] = &models.Employee{
		ID: "emp-1", FirstName: "Amy", LastName: "Archer",
		Group: models.GroupPartTime, Keyholder: true, Active: true, ContractedHours: 30,
	}
	plans := &planInvalidatorStub{}
	service := NewEmployeeService(repo, plans, validator.New(), zap.NewNop())

	hours := 24.0
	emp, err := service.Update(context.Background(), "emp-1", dto.UpdateEmployeeRequest{
		FirstName:       "Amy",
		LastName:        "Becker",
		Group:           "TL",
		ContractedHours: &hours,
	})
	require.NoError(t, err)

	assert.Equal(t, "Becker", emp.LastName)
	assert.Equal(t, models.EmployeeGroup("TL"), emp.Group)
	assert.Equal(t, 24.0, emp.ContractedHours)
	assert.True(t, emp.Keyholder, "unset pointer fields keep their stored value")
	assert.Equal(t, 1, plans.calls)
}

func TestEmployeeServiceGetNotFound(t *testing.T) {
	service := NewEmployeeService(newEmployeeRepoStub(), nil, validator.New(), zap.NewNop())

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmployeeServiceDeactivate(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.items["emp-1"] = &models.Employee{ID: "emp-1", Active: true}
	plans := &planInvalidatorStub{}
	service := NewEmployeeService(repo, plans, validator.New(), zap.NewNop())

	require.NoError(t, service.Deactivate(context.Background(), "emp-1"))
	assert.False(t, repo.items["emp-1"].Active)
	assert.Equal(t, 1, plans.calls)

	err := service.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type planInvalidatorStub struct {
	calls int
}

func (p *planInvalidatorStub) InvalidatePlans(ctx context.Context) {
	p.calls++
}

type employeeRepoStub struct {
	items map[string]*models.Employee
}

func newEmployeeRepoStub() *employeeRepoStub {
	return &employeeRepoStub{items: make(map[string]*models.Employee)}
}

func (s *employeeRepoStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	var out []models.Employee
	for _, emp := range s.items {
		out = append(out, *emp)
	}
	return out, len(out), nil
}

func (s *employeeRepoStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if emp, ok := s.items[id]; ok {
		copied := *emp
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID == "" {
		emp.ID = fmt.Sprintf("emp-%d", len(s.items)+1)
	}
	copied := *emp
	s.items[emp.ID] = &copied
	return nil
}

func (s *employeeRepoStub) Update(ctx context.Context, emp *models.Employee) error {
	if _, ok := s.items[emp.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *emp
	s.items[emp.ID] = &copied
	return nil
}

func (s *employeeRepoStub) Deactivate(ctx context.Context, id string) error {
	emp, ok := s.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	emp.Active = false
	return nil
}
