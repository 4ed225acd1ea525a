package models

import "time"

// EmployeeGroup tags an employee for slot-level group constraints.
type EmployeeGroup string

const (
	GroupTeamLead EmployeeGroup = "TL"
	GroupFullTime EmployeeGroup = "VZ"
	GroupPartTime EmployeeGroup = "TZ"
	GroupStudent  EmployeeGroup = "GFB"
)

// Employee is a store worker eligible for shift assignment.
type Employee struct {
	ID        string        `db:"id" json:"id"`
	FirstName string        `db:"first_name" json:"first_name"`
	LastName  string        `db:"last_name" json:"last_name"`
	Group     EmployeeGroup `db:"employee_group" json:"employee_group"`
	Keyholder bool          `db:"is_keyholder" json:"is_keyholder"`
	Active    bool          `db:"is_active" json:"is_active"`
	// Weekly contracted-hours bounds used by the fairness scoring and
	// the hard weekly cap. Zero means unconstrained.
	ContractedHours float64 `db:"contracted_hours" json:"contracted_hours"`
	MaxHoursPerWeek float64 `db:"max_hours_per_week" json:"max_hours_per_week"`
	MaxHoursPerDay  float64 `db:"max_hours_per_day" json:"max_hours_per_day"`
	MinRestHours    float64 `db:"min_rest_hours" json:"min_rest_hours"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the employee name parts.
func (e Employee) FullName() string {
	if e.FirstName == "" {
		return e.LastName
	}
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// EmployeeFilter narrows down employee listings.
type EmployeeFilter struct {
	Search    string
	Active    *bool
	Group     EmployeeGroup
	Keyholder *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
