package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaworks/rota-api/internal/models"
)

// AvailabilityRepository manages the weekly availability grid.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = `id, employee_id, weekday, hour, kind, created_at, updated_at`

// ListByEmployee returns one employee's full weekly grid.
func (r *AvailabilityRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.AvailabilityRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM availability WHERE employee_id = $1 ORDER BY weekday, hour", availabilityColumns)
	var records []models.AvailabilityRecord
	if err := r.db.SelectContext(ctx, &records, query, employeeID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return records, nil
}

// ListAll returns the availability grid of every employee.
func (r *AvailabilityRepository) ListAll(ctx context.Context) ([]models.AvailabilityRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM availability ORDER BY employee_id, weekday, hour", availabilityColumns)
	var records []models.AvailabilityRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list all availability: %w", err)
	}
	return records, nil
}

// ReplaceForEmployee swaps an employee's entire grid atomically. Passing an
// empty slice clears the grid.
func (r *AvailabilityRepository) ReplaceForEmployee(ctx context.Context, employeeID string, records []models.AvailabilityRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE employee_id = $1`, employeeID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear availability: %w", err)
	}

	const query = `INSERT INTO availability (id, employee_id, weekday, hour, kind, created_at, updated_at)
		VALUES (:id, :employee_id, :weekday, :hour, :kind, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range records {
		records[i].EmployeeID = employeeID
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = now
		}
		records[i].UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert availability record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability tx: %w", err)
	}
	return nil
}
