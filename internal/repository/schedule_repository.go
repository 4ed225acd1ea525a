package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/rotaworks/rota-api/internal/models"
)

// ScheduleRepository persists generation runs and their assignments.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const runColumns = `id, start_date, end_date, status, settings_version, warnings, requested_by, created_at, completed_at`

const assignmentColumns = `id, run_id, employee_id, shift_date, start_time, end_time, slot_kind, source, created_at`

// CreateRun inserts a new run in PENDING state.
func (r *ScheduleRepository) CreateRun(ctx context.Context, run *models.ScheduleRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.ScheduleRunPending
	}
	if len(run.Warnings) == 0 {
		run.Warnings = types.JSONText(`[]`)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_runs (id, start_date, end_date, status, settings_version, warnings, requested_by, created_at, completed_at)
		VALUES (:id, :start_date, :end_date, :status, :settings_version, :warnings, :requested_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create schedule run: %w", err)
	}
	return nil
}

// FindRunByID loads a run by its identifier.
func (r *ScheduleRepository) FindRunByID(ctx context.Context, id string) (*models.ScheduleRun, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_runs WHERE id = $1", runColumns)
	var run models.ScheduleRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *ScheduleRepository) ListRuns(ctx context.Context, limit int) ([]models.ScheduleRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT %s FROM schedule_runs ORDER BY created_at DESC LIMIT %d", runColumns, limit)
	var runs []models.ScheduleRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list schedule runs: %w", err)
	}
	return runs, nil
}

// UpdateRunStatus transitions a run, stamping completion time and warnings
// on terminal states.
func (r *ScheduleRepository) UpdateRunStatus(ctx context.Context, id string, status models.ScheduleRunStatus, warnings types.JSONText) error {
	var completedAt *time.Time
	if status == models.ScheduleRunCompleted || status == models.ScheduleRunFailed {
		now := time.Now().UTC()
		completedAt = &now
	}
	if len(warnings) == 0 {
		warnings = types.JSONText(`[]`)
	}

	const query = `UPDATE schedule_runs SET status = $1, warnings = $2, completed_at = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, warnings, completedAt, id)
	if err != nil {
		return fmt.Errorf("update schedule run status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule run rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReplaceAssignments atomically swaps the stored plan for a date range: the
// run's assignments are inserted and older runs' rows in the range removed.
func (r *ScheduleRepository) ReplaceAssignments(ctx context.Context, runID string, from, to time.Time, assignments []models.ScheduleAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignments tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM schedule_assignments WHERE shift_date >= $1 AND shift_date <= $2 AND run_id <> $3`,
		from, to, runID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear superseded assignments: %w", err)
	}

	const query = `INSERT INTO schedule_assignments (id, run_id, employee_id, shift_date, start_time, end_time, slot_kind, source, created_at)
		VALUES (:id, :run_id, :employee_id, :shift_date, :start_time, :end_time, :slot_kind, :source, :created_at)`
	now := time.Now().UTC()
	for i := range assignments {
		assignments[i].RunID = runID
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, assignments[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignments tx: %w", err)
	}
	return nil
}

// ListAssignments returns stored assignments matching the filter.
func (r *ScheduleRepository) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.ScheduleAssignment, error) {
	base := "FROM schedule_assignments WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RunID != "" {
		conditions = append(conditions, fmt.Sprintf("run_id = $%d", len(args)+1))
		args = append(args, filter.RunID)
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("shift_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("shift_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY shift_date, start_time, employee_id", assignmentColumns, base)
	var assignments []models.ScheduleAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
