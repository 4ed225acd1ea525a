package models

import "time"

// AvailabilityKind ranks how strongly an employee is tied to an hour.
type AvailabilityKind string

const (
	AvailabilityFixed       AvailabilityKind = "FIXED"
	AvailabilityPreferred   AvailabilityKind = "PREFERRED"
	AvailabilityAvailable   AvailabilityKind = "AVAILABLE"
	AvailabilityUnavailable AvailabilityKind = "UNAVAILABLE"
)

// Valid reports whether the kind is one of the known values.
func (k AvailabilityKind) Valid() bool {
	switch k {
	case AvailabilityFixed, AvailabilityPreferred, AvailabilityAvailable, AvailabilityUnavailable:
		return true
	}
	return false
}

// AvailabilityRecord declares an employee's disposition for one weekday hour.
// Weekday is 0=Monday through 6=Sunday, Hour is 0-23.
type AvailabilityRecord struct {
	ID         string           `db:"id" json:"id"`
	EmployeeID string           `db:"employee_id" json:"employee_id"`
	Weekday    int              `db:"weekday" json:"weekday"`
	Hour       int              `db:"hour" json:"hour"`
	Kind       AvailabilityKind `db:"kind" json:"kind"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}
