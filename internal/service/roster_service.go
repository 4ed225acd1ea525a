package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/dto"
	"github.com/rotaworks/rota-api/internal/engine"
	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
	"github.com/rotaworks/rota-api/pkg/jobs"
)

// RosterJobType tags queued generation jobs.
const RosterJobType = "roster.generate"

const rosterDateLayout = "2006-01-02"

type rosterEmployeeReader interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
}

type rosterAbsenceReader interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Absence, error)
}

type rosterAvailabilityReader interface {
	ListAll(ctx context.Context) ([]models.AvailabilityRecord, error)
}

type rosterCoverageReader interface {
	List(ctx context.Context) ([]models.CoverageRule, error)
	ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error)
}

type rosterSettingsReader interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

type rosterScheduleStore interface {
	CreateRun(ctx context.Context, run *models.ScheduleRun) error
	FindRunByID(ctx context.Context, id string) (*models.ScheduleRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.ScheduleRun, error)
	UpdateRunStatus(ctx context.Context, id string, status models.ScheduleRunStatus, warnings types.JSONText) error
	ReplaceAssignments(ctx context.Context, runID string, from, to time.Time, assignments []models.ScheduleAssignment) error
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ScheduleAssignment, error)
}

type rosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type rosterEngine interface {
	Generate(input engine.Input) (*engine.Result, error)
}

type rosterJobQueue interface {
	Enqueue(job jobs.Job) error
}

type rosterMetrics interface {
	ObserveEngineRun(status string, duration time.Duration, slotsTotal, slotsUnfilled int)
	RecordCacheOperation(hit bool, duration time.Duration)
}

// RosterConfig governs generation behaviour.
type RosterConfig struct {
	CacheTTL time.Duration
	// Ranges longer than this many days run on the background queue.
	AsyncThresholdDays int
	MaxRangeDays       int
}

// RosterService orchestrates schedule generation: it snapshots the domain
// data, runs the assignment engine and persists the outcome.
type RosterService struct {
	employees    rosterEmployeeReader
	absences     rosterAbsenceReader
	availability rosterAvailabilityReader
	coverage     rosterCoverageReader
	settings     rosterSettingsReader
	schedules    rosterScheduleStore
	cache        rosterCache
	engine       rosterEngine
	queue        rosterJobQueue
	metrics      rosterMetrics
	validator    *validator.Validate
	logger       *zap.Logger
	config       RosterConfig
}

// NewRosterService wires the generation dependencies.
func NewRosterService(
	employees rosterEmployeeReader,
	absences rosterAbsenceReader,
	availability rosterAvailabilityReader,
	coverage rosterCoverageReader,
	settings rosterSettingsReader,
	schedules rosterScheduleStore,
	cache rosterCache,
	eng rosterEngine,
	queue rosterJobQueue,
	metrics rosterMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RosterConfig,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if eng == nil {
		eng = engine.New(engine.WithLogger(logger))
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.AsyncThresholdDays <= 0 {
		cfg.AsyncThresholdDays = 31
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 92
	}
	return &RosterService{
		employees:    employees,
		absences:     absences,
		availability: availability,
		coverage:     coverage,
		settings:     settings,
		schedules:    schedules,
		cache:        cache,
		engine:       eng,
		queue:        queue,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		config:       cfg,
	}
}

// AttachQueue wires the background queue after construction. The queue
// handler is this service's HandleJob, so the two reference each other.
func (s *RosterService) AttachQueue(queue rosterJobQueue) {
	s.queue = queue
}

// Generate produces the staffing plan for the requested range. Short
// ranges run synchronously; ranges past the async threshold are queued
// and the caller polls the returned run.
func (s *RosterService) Generate(ctx context.Context, req dto.GenerateRosterRequest, requestedBy string) (*dto.GenerateRosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster generation payload")
	}

	start, err := time.Parse(rosterDateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, fmt.Sprintf("unparseable start date %q", req.StartDate))
	}
	end, err := time.Parse(rosterDateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, fmt.Sprintf("unparseable end date %q", req.EndDate))
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, "end date before start date")
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > s.config.MaxRangeDays {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, fmt.Sprintf("range of %d days exceeds the %d day limit", days, s.config.MaxRangeDays))
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "store settings are not configured")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load store settings")
	}

	cacheKey := rosterCacheKey(req.StartDate, req.EndDate, settings.Version)
	if !req.Force && s.cache != nil {
		lookupStart := time.Now()
		var cached dto.GenerateRosterResponse
		cacheErr := s.cache.Get(ctx, cacheKey, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(cacheErr == nil, time.Since(lookupStart))
		}
		if cacheErr == nil {
			cached.Cached = true
			return &cached, nil
		}
		if !errors.Is(cacheErr, appErrors.ErrCacheMiss) {
			s.logger.Warn("roster cache lookup failed", zap.Error(cacheErr))
		}
	}

	run := &models.ScheduleRun{
		StartDate:       start,
		EndDate:         end,
		Status:          models.ScheduleRunPending,
		SettingsVersion: settings.Version,
		RequestedBy:     requestedBy,
	}
	if err := s.schedules.CreateRun(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule run")
	}

	if days > s.config.AsyncThresholdDays && s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{ID: run.ID, Type: RosterJobType, Payload: run.ID}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue schedule run")
		}
		s.logger.Info("schedule run queued",
			zap.String("run_id", run.ID), zap.Int("days", days))
		return &dto.GenerateRosterResponse{
			RunID:    run.ID,
			Status:   models.ScheduleRunPending,
			Warnings: []string{},
		}, nil
	}

	return s.executeRun(ctx, run, settings, cacheKey)
}

// HandleJob processes one queued generation run; wired as the worker
// queue handler.
func (s *RosterService) HandleJob(ctx context.Context, job jobs.Job) error {
	runID, ok := job.Payload.(string)
	if !ok || runID == "" {
		return fmt.Errorf("roster job %s has no run id payload", job.ID)
	}

	run, err := s.schedules.FindRunByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("load schedule run %s: %w", runID, err)
	}
	if run.Status == models.ScheduleRunCompleted {
		return nil
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings for run %s: %w", runID, err)
	}

	cacheKey := rosterCacheKey(run.StartDate.Format(rosterDateLayout), run.EndDate.Format(rosterDateLayout), run.SettingsVersion)
	_, err = s.executeRun(ctx, run, settings, cacheKey)
	return err
}

func (s *RosterService) executeRun(ctx context.Context, run *models.ScheduleRun, settings *models.StoreSettings, cacheKey string) (*dto.GenerateRosterResponse, error) {
	if err := s.schedules.UpdateRunStatus(ctx, run.ID, models.ScheduleRunRunning, nil); err != nil {
		s.logger.Warn("failed to mark run running", zap.String("run_id", run.ID), zap.Error(err))
	}

	started := time.Now()
	input, names, err := s.loadInput(ctx, run, settings)
	if err != nil {
		s.failRun(ctx, run.ID, err)
		return nil, err
	}

	result, err := s.engine.Generate(*input)
	if err != nil {
		s.failRun(ctx, run.ID, err)
		if s.metrics != nil {
			s.metrics.ObserveEngineRun("failed", time.Since(started), 0, 0)
		}
		return nil, err
	}

	stored := make([]models.ScheduleAssignment, 0, len(result.Assignments))
	rows := make([]dto.RosterAssignment, 0, len(result.Assignments))
	for _, assignment := range result.Assignments {
		stored = append(stored, models.ScheduleAssignment{
			RunID:      run.ID,
			EmployeeID: assignment.EmployeeID,
			Date:       assignment.Date,
			StartTime:  assignment.StartTime,
			EndTime:    assignment.EndTime,
			SlotKind:   assignment.Kind,
			Source:     assignment.Source,
		})
		rows = append(rows, dto.RosterAssignment{
			EmployeeID:   assignment.EmployeeID,
			EmployeeName: names[assignment.EmployeeID],
			Date:         assignment.Date.Format(rosterDateLayout),
			StartTime:    assignment.StartTime,
			EndTime:      assignment.EndTime,
			Kind:         assignment.Kind,
			Source:       assignment.Source,
		})
	}

	if err := s.schedules.ReplaceAssignments(ctx, run.ID, run.StartDate, run.EndDate, stored); err != nil {
		wrapped := appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		s.failRun(ctx, run.ID, wrapped)
		return nil, wrapped
	}

	warningsJSON, err := json.Marshal(result.Warnings)
	if err != nil {
		warningsJSON = []byte(`[]`)
	}
	if err := s.schedules.UpdateRunStatus(ctx, run.ID, models.ScheduleRunCompleted, types.JSONText(warningsJSON)); err != nil {
		s.logger.Warn("failed to mark run completed", zap.String("run_id", run.ID), zap.Error(err))
	}

	response := &dto.GenerateRosterResponse{
		RunID:         run.ID,
		Status:        models.ScheduleRunCompleted,
		Assignments:   rows,
		Warnings:      result.Warnings,
		SlotsTotal:    result.SlotsTotal,
		SlotsUnfilled: result.SlotsUnfilled,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, response, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache roster", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveEngineRun("completed", time.Since(started), result.SlotsTotal, result.SlotsUnfilled)
	}

	s.logger.Info("schedule run completed",
		zap.String("run_id", run.ID),
		zap.Int("assignments", len(rows)),
		zap.Int("slots_unfilled", result.SlotsUnfilled),
		zap.Int("warnings", len(result.Warnings)))

	return response, nil
}

func (s *RosterService) loadInput(ctx context.Context, run *models.ScheduleRun, settings *models.StoreSettings) (*engine.Input, map[string]string, error) {
	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	absences, err := s.absences.ListOverlapping(ctx, run.StartDate, run.EndDate)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absences")
	}
	availability, err := s.availability.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	oneOff, err := s.coverage.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load coverage rules")
	}
	recurring, err := s.coverage.ListRecurring(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recurring coverage rules")
	}

	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.ID] = emp.FullName()
	}

	return &engine.Input{
		Employees:      employees,
		Absences:       absences,
		Availability:   availability,
		CoverageRules:  oneOff,
		RecurringRules: recurring,
		Settings:       *settings,
		StartDate:      run.StartDate.Format(rosterDateLayout),
		EndDate:        run.EndDate.Format(rosterDateLayout),
	}, names, nil
}

func (s *RosterService) failRun(ctx context.Context, runID string, cause error) {
	payload, err := json.Marshal([]string{cause.Error()})
	if err != nil {
		payload = []byte(`[]`)
	}
	if err := s.schedules.UpdateRunStatus(ctx, runID, models.ScheduleRunFailed, types.JSONText(payload)); err != nil {
		s.logger.Warn("failed to mark run failed", zap.String("run_id", runID), zap.Error(err))
	}
}

// GetRun reports the lifecycle of a run, used to poll queued generations.
func (s *RosterService) GetRun(ctx context.Context, id string) (*dto.RunStatusResponse, error) {
	run, err := s.schedules.FindRunByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule run")
	}

	warnings := make([]string, 0)
	if len(run.Warnings) > 0 {
		if err := json.Unmarshal(run.Warnings, &warnings); err != nil {
			s.logger.Warn("malformed run warnings payload", zap.String("run_id", id), zap.Error(err))
		}
	}

	resp := &dto.RunStatusResponse{
		RunID:       run.ID,
		Status:      run.Status,
		StartDate:   run.StartDate.Format(rosterDateLayout),
		EndDate:     run.EndDate.Format(rosterDateLayout),
		Warnings:    warnings,
		RequestedBy: run.RequestedBy,
		CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339),
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// ListRuns returns recent runs, newest first.
func (s *RosterService) ListRuns(ctx context.Context, limit int) ([]models.ScheduleRun, error) {
	runs, err := s.schedules.ListRuns(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule runs")
	}
	return runs, nil
}

// ListAssignments returns stored assignments matching the query.
func (s *RosterService) ListAssignments(ctx context.Context, query dto.RosterQuery) ([]models.ScheduleAssignment, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster query")
	}

	filter := models.AssignmentFilter{RunID: query.RunID, EmployeeID: query.EmployeeID}
	if query.From != "" {
		from, err := time.Parse(rosterDateLayout, query.From)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable from date")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse(rosterDateLayout, query.To)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, "unparseable to date")
		}
		filter.To = &to
	}

	assignments, err := s.schedules.ListAssignments(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// InvalidatePlans drops cached roster payloads after domain data changes.
func (s *RosterService) InvalidatePlans(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "roster:*"); err != nil {
		s.logger.Warn("failed to invalidate roster cache", zap.Error(err))
	}
}

func rosterCacheKey(startDate, endDate string, settingsVersion int) string {
	return fmt.Sprintf("roster:%s:%s:v%d", startDate, endDate, settingsVersion)
}
