package dto

import "github.com/rotaworks/rota-api/internal/models"

// GenerateRosterRequest asks the engine to staff an inclusive date range.
type GenerateRosterRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	// Force skips the cached result for the same range and settings version.
	Force bool `json:"force"`
}

// RosterAssignment is one generated shift in API form.
type RosterAssignment struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName,omitempty"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	Kind         string `json:"kind"`
	Source       string `json:"source"`
}

// GenerateRosterResponse returns the generated plan or, for large ranges,
// the queued run to poll.
type GenerateRosterResponse struct {
	RunID         string                   `json:"runId"`
	Status        models.ScheduleRunStatus `json:"status"`
	Assignments   []RosterAssignment       `json:"assignments,omitempty"`
	Warnings      []string                 `json:"warnings"`
	SlotsTotal    int                      `json:"slotsTotal"`
	SlotsUnfilled int                      `json:"slotsUnfilled"`
	Cached        bool                     `json:"cached"`
}

// RosterQuery filters stored assignments.
type RosterQuery struct {
	From       string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	EmployeeID string `form:"employeeId"`
	RunID      string `form:"runId"`
}

// RunStatusResponse reports the lifecycle of an asynchronous run.
type RunStatusResponse struct {
	RunID       string                   `json:"runId"`
	Status      models.ScheduleRunStatus `json:"status"`
	StartDate   string                   `json:"startDate"`
	EndDate     string                   `json:"endDate"`
	Warnings    []string                 `json:"warnings"`
	RequestedBy string                   `json:"requestedBy"`
	CreatedAt   string                   `json:"createdAt"`
	CompletedAt string                   `json:"completedAt,omitempty"`
}
