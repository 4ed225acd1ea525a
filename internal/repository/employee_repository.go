package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rotaworks/rota-api/internal/models"
)

// EmployeeRepository manages persistence for store employees.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `id, first_name, last_name, employee_group, is_keyholder, is_active, contracted_hours, max_hours_per_week, max_hours_per_day, min_rest_hours, created_at, updated_at`

// List returns employees matching filters along with total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	base := "FROM employees WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Keyholder != nil {
		conditions = append(conditions, fmt.Sprintf("is_keyholder = $%d", len(args)+1))
		args = append(args, *filter.Keyholder)
	}
	if filter.Group != "" {
		conditions = append(conditions, fmt.Sprintf("employee_group = $%d", len(args)+1))
		args = append(args, filter.Group)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "last_name"
	}
	allowedSorts := map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "last_name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", employeeColumns, base, column, order, size, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// ListActive returns every active employee, the engine's working set.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE is_active = TRUE ORDER BY id ASC", employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return employees, nil
}

// FindByID fetches an employee by ID.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	const query = `INSERT INTO employees (id, first_name, last_name, employee_group, is_keyholder, is_active,
		contracted_hours, max_hours_per_week, max_hours_per_day, min_rest_hours, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :employee_group, :is_keyholder, :is_active,
		:contracted_hours, :max_hours_per_week, :max_hours_per_day, :min_rest_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies an existing employee record.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	emp.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET first_name = :first_name, last_name = :last_name,
		employee_group = :employee_group, is_keyholder = :is_keyholder, is_active = :is_active,
		contracted_hours = :contracted_hours, max_hours_per_week = :max_hours_per_week,
		max_hours_per_day = :max_hours_per_day, min_rest_hours = :min_rest_hours,
		updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Deactivate sets an employee's active flag to false.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE employees SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	return nil
}
