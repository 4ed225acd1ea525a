package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaworks/rota-api/internal/models"
)

// AbsenceRepository manages persistence for absence intervals.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs an AbsenceRepository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

const absenceColumns = `id, employee_id, start_date, end_date, absence_type, note, created_at, updated_at`

// List returns absences matching filters along with total count.
func (r *AbsenceRepository) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error) {
	base := "FROM absences WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date DESC LIMIT %d OFFSET %d", absenceColumns, base, size, offset)
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list absences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count absences: %w", err)
	}

	return absences, total, nil
}

// ListOverlapping returns every absence touching the inclusive date range.
func (r *AbsenceRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]models.Absence, error) {
	query := fmt.Sprintf("SELECT %s FROM absences WHERE end_date >= $1 AND start_date <= $2 ORDER BY employee_id, start_date", absenceColumns)
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, from, to); err != nil {
		return nil, fmt.Errorf("list overlapping absences: %w", err)
	}
	return absences, nil
}

// FindByID fetches an absence by ID.
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*models.Absence, error) {
	query := fmt.Sprintf("SELECT %s FROM absences WHERE id = $1", absenceColumns)
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// Create inserts a new absence record.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = now
	}
	absence.UpdatedAt = now

	const query = `INSERT INTO absences (id, employee_id, start_date, end_date, absence_type, note, created_at, updated_at)
		VALUES (:id, :employee_id, :start_date, :end_date, :absence_type, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// Update modifies an existing absence record.
func (r *AbsenceRepository) Update(ctx context.Context, absence *models.Absence) error {
	absence.UpdatedAt = time.Now().UTC()
	const query = `UPDATE absences SET employee_id = :employee_id, start_date = :start_date,
		end_date = :end_date, absence_type = :absence_type, note = :note, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("update absence: %w", err)
	}
	return nil
}

// Delete removes an absence record.
func (r *AbsenceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM absences WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("absence rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
