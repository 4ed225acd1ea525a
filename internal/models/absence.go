package models

import "time"

// AbsenceType classifies an absence interval.
type AbsenceType string

const (
	AbsenceVacation AbsenceType = "VACATION"
	AbsenceSick     AbsenceType = "SICK"
	AbsenceUnpaid   AbsenceType = "UNPAID"
	AbsenceOther    AbsenceType = "OTHER"
)

// Absence blocks an employee from assignment for an inclusive date range.
type Absence struct {
	ID         string      `db:"id" json:"id"`
	EmployeeID string      `db:"employee_id" json:"employee_id"`
	StartDate  time.Time   `db:"start_date" json:"start_date"`
	EndDate    time.Time   `db:"end_date" json:"end_date"`
	Type       AbsenceType `db:"absence_type" json:"absence_type"`
	Note       *string     `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// AbsenceFilter narrows down absence listings.
type AbsenceFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
