package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleRunStatus tracks the lifecycle of a generation run.
type ScheduleRunStatus string

const (
	ScheduleRunPending   ScheduleRunStatus = "PENDING"
	ScheduleRunRunning   ScheduleRunStatus = "RUNNING"
	ScheduleRunCompleted ScheduleRunStatus = "COMPLETED"
	ScheduleRunFailed    ScheduleRunStatus = "FAILED"
)

// ScheduleRun records one invocation of the assignment engine.
type ScheduleRun struct {
	ID              string            `db:"id" json:"id"`
	StartDate       time.Time         `db:"start_date" json:"start_date"`
	EndDate         time.Time         `db:"end_date" json:"end_date"`
	Status          ScheduleRunStatus `db:"status" json:"status"`
	SettingsVersion int               `db:"settings_version" json:"settings_version"`
	Warnings        types.JSONText    `db:"warnings" json:"warnings,omitempty"`
	RequestedBy     string            `db:"requested_by" json:"requested_by"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	CompletedAt     *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
}

// ScheduleAssignment is one employee working one time window on one date.
// It is the sole artifact the engine hands back; never mutated afterwards.
type ScheduleAssignment struct {
	ID         string    `db:"id" json:"id"`
	RunID      string    `db:"run_id" json:"run_id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Date       time.Time `db:"shift_date" json:"date"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	SlotKind   string    `db:"slot_kind" json:"slot_kind"`
	Source     string    `db:"source" json:"source"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AssignmentFilter narrows down stored assignments.
type AssignmentFilter struct {
	RunID      string
	EmployeeID string
	From       *time.Time
	To         *time.Time
}
