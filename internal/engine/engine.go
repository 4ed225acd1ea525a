// Package engine implements the shift-assignment engine: a pure,
// synchronous computation that turns a snapshot of employees, absences,
// availability and coverage rules into a day-by-day staffing plan. It
// performs no I/O; everything except an unusable date range is recovered
// locally and surfaced as warnings next to a best-effort result.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rotaworks/rota-api/internal/models"
	appErrors "github.com/rotaworks/rota-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// Input is the immutable snapshot one run operates on. All lists are
// value objects validated upstream; individual malformed records are
// skipped with a warning, never fatal.
type Input struct {
	Employees      []models.Employee
	Absences       []models.Absence
	Availability   []models.AvailabilityRecord
	CoverageRules  []models.CoverageRule
	RecurringRules []models.RecurringCoverageRule
	Settings       models.StoreSettings
	StartDate      string
	EndDate        string
}

// Assignment is one employee working one time window on one date.
type Assignment struct {
	EmployeeID string    `json:"employee_id"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
}

// Result carries the ordered assignment list plus every diagnostic the
// run produced. Warnings are informational; their presence does not mean
// the run failed.
type Result struct {
	Assignments   []Assignment `json:"assignments"`
	Warnings      []string     `json:"warnings"`
	SlotsTotal    int          `json:"slots_total"`
	SlotsUnfilled int          `json:"slots_unfilled"`
}

// ScorerFactory builds the candidate-ranking function for a run once the
// snapshot is indexed. Swapping it changes selection behaviour without
// touching the slot-generation pipeline.
type ScorerFactory func(*Snapshot) Scorer

// Engine generates staffing plans. The zero value is not usable; build
// instances with New.
type Engine struct {
	scorerFor ScorerFactory
	logger    *zap.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger attaches a logger for warning diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScorer overrides the default candidate scoring.
func WithScorer(factory ScorerFactory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.scorerFor = factory
		}
	}
}

// New constructs an engine with the default scorer and a nop logger.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorerFor: func(snap *Snapshot) Scorer { return NewDefaultScorer(snap) },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate runs the full pipeline over every date in the inclusive range.
// Days are processed in order and, within a day, slots in priority order,
// so earlier commitments are visible to later candidate filtering. The
// only hard error is an unparseable or inverted date range.
func (e *Engine) Generate(input Input) (*Result, error) {
	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidDateRange.Code, appErrors.ErrInvalidDateRange.Status,
			fmt.Sprintf("unparseable start date %q", input.StartDate))
	}
	end, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidDateRange.Code, appErrors.ErrInvalidDateRange.Status,
			fmt.Sprintf("unparseable end date %q", input.EndDate))
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrInvalidDateRange, "end date before start date")
	}

	rc := &runContext{logger: e.logger}
	snap := newSnapshot(input.Employees, input.Absences, input.Availability, rc)
	windows := parseShiftWindows(input.Settings.ShiftTypes, rc)
	scorer := e.scorerFor(snap)
	state := newRunState()

	result := &Result{Assignments: make([]Assignment, 0)}

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		hours := resolveDayHours(input.Settings, date, rc)
		if !hours.open {
			continue
		}
		state.beginDay()

		fixed := generateFixedSlots(snap, windows, date, rc)
		coverage := resolveCoverageSlots(date, hours, input.CoverageRules, input.RecurringRules, rc)
		slots := mergeSlots(fixed, coverage, rc)

		for _, slot := range slots {
			result.SlotsTotal++
			assignments := fillSlot(slot, snap, scorer, state, rc)
			result.Assignments = append(result.Assignments, assignments...)
			if slot.State == SlotUnfillable {
				result.SlotsUnfilled++
			}
		}
	}

	result.Warnings = rc.warnings
	if result.Warnings == nil {
		result.Warnings = []string{}
	}
	return result, nil
}

// runContext accumulates the run's mutable diagnostics, passed explicitly
// into each stage instead of living in ambient state.
type runContext struct {
	warnings []string
	logger   *zap.Logger
}

func (rc *runContext) warnf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	rc.warnings = append(rc.warnings, message)
	if rc.logger != nil {
		rc.logger.Warn("schedule generation warning", zap.String("detail", message))
	}
}
