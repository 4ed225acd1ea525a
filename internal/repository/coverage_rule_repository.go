package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaworks/rota-api/internal/models"
)

// CoverageRuleRepository persists one-off and recurring coverage rules.
type CoverageRuleRepository struct {
	db *sqlx.DB
}

// NewCoverageRuleRepository constructs a CoverageRuleRepository.
func NewCoverageRuleRepository(db *sqlx.DB) *CoverageRuleRepository {
	return &CoverageRuleRepository{db: db}
}

const coverageRuleColumns = `id, weekday, start_time, end_time, min_employees, requires_keyholder, required_group, created_at, updated_at`

const recurringRuleColumns = `id, name, weekdays, start_time, end_time, min_employees, requires_keyholder, required_group, valid_from, valid_until, is_active, created_at, updated_at`

// List returns all one-off coverage rules.
func (r *CoverageRuleRepository) List(ctx context.Context) ([]models.CoverageRule, error) {
	query := fmt.Sprintf("SELECT %s FROM coverage_rules ORDER BY weekday, start_time", coverageRuleColumns)
	var rules []models.CoverageRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list coverage rules: %w", err)
	}
	return rules, nil
}

// FindByID fetches a one-off rule by ID.
func (r *CoverageRuleRepository) FindByID(ctx context.Context, id string) (*models.CoverageRule, error) {
	query := fmt.Sprintf("SELECT %s FROM coverage_rules WHERE id = $1", coverageRuleColumns)
	var rule models.CoverageRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// Create inserts a one-off rule.
func (r *CoverageRuleRepository) Create(ctx context.Context, rule *models.CoverageRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO coverage_rules (id, weekday, start_time, end_time, min_employees, requires_keyholder, required_group, created_at, updated_at)
		VALUES (:id, :weekday, :start_time, :end_time, :min_employees, :requires_keyholder, :required_group, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create coverage rule: %w", err)
	}
	return nil
}

// Update modifies a one-off rule.
func (r *CoverageRuleRepository) Update(ctx context.Context, rule *models.CoverageRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE coverage_rules SET weekday = :weekday, start_time = :start_time, end_time = :end_time,
		min_employees = :min_employees, requires_keyholder = :requires_keyholder, required_group = :required_group,
		updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update coverage rule: %w", err)
	}
	return nil
}

// Delete removes a one-off rule.
func (r *CoverageRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coverage_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coverage rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("coverage rule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRecurring returns all recurring rules, active and inactive.
func (r *CoverageRuleRepository) ListRecurring(ctx context.Context) ([]models.RecurringCoverageRule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_coverage_rules ORDER BY name", recurringRuleColumns)
	var rules []models.RecurringCoverageRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list recurring coverage rules: %w", err)
	}
	return rules, nil
}

// FindRecurringByID fetches a recurring rule by ID.
func (r *CoverageRuleRepository) FindRecurringByID(ctx context.Context, id string) (*models.RecurringCoverageRule, error) {
	query := fmt.Sprintf("SELECT %s FROM recurring_coverage_rules WHERE id = $1", recurringRuleColumns)
	var rule models.RecurringCoverageRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		return nil, err
	}
	return &rule, nil
}

// CreateRecurring inserts a recurring rule.
func (r *CoverageRuleRepository) CreateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO recurring_coverage_rules (id, name, weekdays, start_time, end_time, min_employees,
		requires_keyholder, required_group, valid_from, valid_until, is_active, created_at, updated_at)
		VALUES (:id, :name, :weekdays, :start_time, :end_time, :min_employees,
		:requires_keyholder, :required_group, :valid_from, :valid_until, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create recurring coverage rule: %w", err)
	}
	return nil
}

// UpdateRecurring modifies a recurring rule.
func (r *CoverageRuleRepository) UpdateRecurring(ctx context.Context, rule *models.RecurringCoverageRule) error {
	rule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE recurring_coverage_rules SET name = :name, weekdays = :weekdays, start_time = :start_time,
		end_time = :end_time, min_employees = :min_employees, requires_keyholder = :requires_keyholder,
		required_group = :required_group, valid_from = :valid_from, valid_until = :valid_until,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("update recurring coverage rule: %w", err)
	}
	return nil
}

// DeleteRecurring removes a recurring rule.
func (r *CoverageRuleRepository) DeleteRecurring(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recurring_coverage_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recurring coverage rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("recurring coverage rule rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
