package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/engine"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/jobs"
)

func TestRosterServiceGenerateSyncSuccess(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})

	resp, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-08",
		EndDate:   "2024-01-08",
	}, "manager-1")
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleRunCompleted, resp.Status)
	assert.Len(t, resp.Assignments, 1)
	assert.Equal(t, "Amy Archer", resp.Assignments[0].EmployeeName)
	assert.False(t, resp.Cached)

	require.Len(t, fixture.schedules.runs, 1)
	run := fixture.schedules.runs[0]
	assert.Equal(t, models.ScheduleRunCompleted, run.Status)
	assert.Equal(t, "manager-1", run.RequestedBy)
	assert.Len(t, fixture.schedules.assignments[run.ID], 1)
	assert.Contains(t, fixture.cache.store, "roster:2024-01-08:2024-01-08:v3")
}

func TestRosterServiceGenerateCacheHit(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	cached := dto.GenerateRosterResponse{RunID: "previous", Status: models.ScheduleRunCompleted}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	fixture.cache.store["roster:2024-01-08:2024-01-08:v3"] = payload

	resp, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-08",
		EndDate:   "2024-01-08",
	}, "manager-1")
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Equal(t, "previous", resp.RunID)
	assert.Empty(t, fixture.schedules.runs, "cache hit must not create a run")
}

func TestRosterServiceGenerateForceBypassesCache(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	fixture.cache.store["roster:2024-01-08:2024-01-08:v3"] = []byte(`{"runId":"previous"}`)

	resp, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-08",
		EndDate:   "2024-01-08",
		Force:     true,
	}, "manager-1")
	require.NoError(t, err)

	assert.False(t, resp.Cached)
	assert.NotEqual(t, "previous", resp.RunID)
	require.Len(t, fixture.schedules.runs, 1)
}

func TestRosterServiceGenerateQueuesLongRange(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})

	resp, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-02-15",
	}, "manager-1")
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleRunPending, resp.Status)
	assert.Empty(t, resp.Assignments)
	require.Len(t, fixture.queue.jobs, 1)
	assert.Equal(t, RosterJobType, fixture.queue.jobs[0].Type)
	assert.Equal(t, resp.RunID, fixture.queue.jobs[0].Payload)
}

func TestRosterServiceGenerateEngineFailureMarksRunFailed(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{
		engine: engineStub{err: fmt.Errorf("engine exploded")},
	})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-08",
		EndDate:   "2024-01-08",
	}, "manager-1")
	require.Error(t, err)

	require.Len(t, fixture.schedules.runs, 1)
	run := fixture.schedules.runs[0]
	assert.Equal(t, models.ScheduleRunFailed, run.Status)

	var warnings []string
	require.NoError(t, json.Unmarshal(run.Warnings, &warnings))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "engine exploded")
}

func TestRosterServiceGenerateRejectsBadRanges(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-10",
		EndDate:   "2024-01-08",
	}, "manager-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDateRange.Code, appErrors.FromError(err).Code)

	_, err = fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-01",
		EndDate:   "2024-06-01",
	}, "manager-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidDateRange.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceGenerateRequiresSettings(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{noSettings: true})

	_, err := fixture.service.Generate(context.Background(), dto.GenerateRosterRequest{
		StartDate: "2024-01-08",
		EndDate:   "2024-01-08",
	}, "manager-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceHandleJob(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	run := &models.ScheduleRun{
		StartDate:       mustDate(t, "2024-01-08"),
		EndDate:         mustDate(t, "2024-01-09"),
		Status:          models.ScheduleRunPending,
		SettingsVersion: 3,
	}
	require.NoError(t, fixture.schedules.CreateRun(context.Background(), run))

	err := fixture.service.HandleJob(context.Background(), jobs.Job{ID: run.ID, Type: RosterJobType, Payload: run.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleRunCompleted, fixture.schedules.runs[0].Status)

	// Re-delivery of a completed run is a no-op.
	fixture.schedules.updates = nil
	require.NoError(t, fixture.service.HandleJob(context.Background(), jobs.Job{ID: run.ID, Type: RosterJobType, Payload: run.ID}))
	assert.Empty(t, fixture.schedules.updates)
}

func TestRosterServiceHandleJobRejectsBadPayload(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	err := fixture.service.HandleJob(context.Background(), jobs.Job{ID: "j1", Type: RosterJobType, Payload: 42})
	require.Error(t, err)
}

func TestRosterServiceGetRun(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	completed := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	run := &models.ScheduleRun{
		StartDate:       mustDate(t, "2024-01-08"),
		EndDate:         mustDate(t, "2024-01-08"),
		Status:          models.ScheduleRunCompleted,
		SettingsVersion: 3,
		Warnings:        types.JSONText(`["slot unfilled"]`),
		CompletedAt:     &completed,
	}
	require.NoError(t, fixture.schedules.CreateRun(context.Background(), run))

	resp, err := fixture.service.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleRunCompleted, resp.Status)
	assert.Equal(t, []string{"slot unfilled"}, resp.Warnings)
	assert.NotEmpty(t, resp.CompletedAt)

	_, err = fixture.service.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRosterServiceListAssignmentsParsesWindow(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})

	_, err := fixture.service.ListAssignments(context.Background(), dto.RosterQuery{From: "2024-01-08", To: "2024-01-14"})
	require.NoError(t, err)
	require.NotNil(t, fixture.schedules.lastFilter.From)
	require.NotNil(t, fixture.schedules.lastFilter.To)
	assert.Equal(t, mustDate(t, "2024-01-08"), *fixture.schedules.lastFilter.From)
}

func TestRosterServiceInvalidatePlans(t *testing.T) {
	fixture := newRosterFixture(t, rosterFixtureConfig{})
	fixture.cache.store["roster:2024-01-08:2024-01-08:v3"] = []byte(`{}`)
	fixture.cache.store["other:key"] = []byte(`{}`)

	fixture.service.InvalidatePlans(context.Background())

	assert.NotContains(t, fixture.cache.store, "roster:2024-01-08:2024-01-08:v3")
	assert.Contains(t, fixture.cache.store, "other:key")
}

// --- Fixtures ---

type rosterFixtureConfig struct {
	engine     rosterEngine
	noSettings bool
}

type rosterFixture struct {
	service   *RosterService
	schedules *scheduleStoreStub
	cache     *cacheStub
	queue     *queueStub
}

func newRosterFixture(t *testing.T, cfg rosterFixtureConfig) *rosterFixture {
	t.Helper()

	employees := employeeReaderStub{items: []models.Employee{
		{ID: "emp-1", FirstName: "Amy", LastName: "Archer", Active: true},
	}}
	settings := settingsReaderStub{missing: cfg.noSettings, settings: &models.StoreSettings{Version: 3}}
	schedules := &scheduleStoreStub{assignments: make(map[string][]models.ScheduleAssignment)}
	cache := &cacheStub{store: make(map[string][]byte)}
	queue := &queueStub{}

	eng := cfg.engine
	if eng == nil {
		eng = engineStub{result: &engine.Result{
			Assignments: []engine.Assignment{{
				EmployeeID: "emp-1",
				Date:       mustDate(t, "2024-01-08"),
				StartTime:  "08:00",
				EndTime:    "16:00",
				Kind:       "COVERAGE",
				Source:     "rule-1",
			}},
			Warnings:   []string{},
			SlotsTotal: 1,
		}}
	}

	service := NewRosterService(
		employees,
		absenceReaderStub{},
		availabilityReaderStub{},
		coverageReaderStub{},
		settings,
		schedules,
		cache,
		eng,
		queue,
		nil,
		validator.New(),
		zap.NewNop(),
		RosterConfig{CacheTTL: time.Minute, AsyncThresholdDays: 31, MaxRangeDays: 92},
	)
	return &rosterFixture{service: service, schedules: schedules, cache: cache, queue: queue}
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(rosterDateLayout, value)
	require.NoError(t, err)
	return parsed
}

type employeeReaderStub struct {
	items []models.Employee
}

func (s employeeReaderStub) ListActive(ctx context.Context) ([]models.Employee, error) {
	return s.items, nil
}

type absenceReaderStub struct{}

func (absenceReaderStub) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Absence, error) {
	return nil, nil
}

type availabilityReaderStub struct{}

func (availabilityReaderStub) ListAll(ctx context.Context) ([]models.AvailabilityRecord, error) {
	return nil, nil
}

type coverageReaderStub struct{}

func (coverageReaderStub) List(ctx context.Context) ([]models.CoverageRule, error) {
	return nil, nil
}

func (coverageReaderStub) ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error) {
	return nil, nil
}

type settingsReaderStub struct {
	missing  bool
	settings *models.StoreSettings
}

func (s settingsReaderStub) Get(ctx context.Context) (*models.StoreSettings, error) {
	if s.missing {
		return nil, sql.ErrNoRows
	}
	return s.settings, nil
}

type scheduleStoreStub struct {
	runs        []models.ScheduleRun
	assignments map[string][]models.ScheduleAssignment
	updates     []models.ScheduleRunStatus
	lastFilter  models.AssignmentFilter
}

func (s *scheduleStoreStub) CreateRun(ctx context.Context, run *models.ScheduleRun) error {
	if run.ID == "" {
		run.ID = fmt.Sprintf("run-%d", len(s.runs)+1)
	}
	run.CreatedAt = time.Now().UTC()
	s.runs = append(s.runs, *run)
	return nil
}

func (s *scheduleStoreStub) FindRunByID(ctx context.Context, id string) (*models.ScheduleRun, error) {
	for _, run := range s.runs {
		if run.ID == id {
			copied := run
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *scheduleStoreStub) ListRuns(ctx context.Context, limit int) ([]models.ScheduleRun, error) {
	return s.runs, nil
}

func (s *scheduleStoreStub) UpdateRunStatus(ctx context.Context, id string, status models.ScheduleRunStatus, warnings types.JSONText) error {
	for idx := range s.runs {
		if s.runs[idx].ID == id {
			s.runs[idx].Status = status
			if warnings != nil {
				s.runs[idx].Warnings = warnings
			}
			s.updates = append(s.updates, status)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *scheduleStoreStub) ReplaceAssignments(ctx context.Context, runID string, from, to time.Time, assignments []models.ScheduleAssignment) error {
	s.assignments[runID] = assignments
	return nil
}

func (s *scheduleStoreStub) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ScheduleAssignment, error) {
	s.lastFilter = filter
	var all []models.ScheduleAssignment
	for _, rows := range s.assignments {
		all = append(all, rows...)
	}
	return all, nil
}

type cacheStub struct {
	store map[string][]byte
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = payload
	return nil
}

func (c *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := pattern
	if len(prefix) > 0 && prefix[len(prefix)-1] == '*' {
		prefix = prefix[:len(prefix)-1]
	}
	for key := range c.store {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.store, key)
		}
	}
	return nil
}

type queueStub struct {
	jobs []jobs.Job
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type engineStub struct {
	result *engine.Result
	err    error
}

func (e engineStub) Generate(input engine.Input) (*engine.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}
