package models

import (
	"time"

	"github.com/lib/pq"
)

// CoverageRule is a one-off minimum-headcount requirement for a weekday
// time window. Times are "HH:MM"; a start after the end denotes a window
// crossing midnight.
type CoverageRule struct {
	ID                string    `db:"id" json:"id"`
	Weekday           int       `db:"weekday" json:"weekday"`
	StartTime         string    `db:"start_time" json:"start_time"`
	EndTime           string    `db:"end_time" json:"end_time"`
	MinEmployees      int       `db:"min_employees" json:"min_employees"`
	RequiresKeyholder bool      `db:"requires_keyholder" json:"requires_keyholder"`
	RequiredGroup     *string   `db:"required_group" json:"required_group,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// RecurringCoverageRule applies a headcount requirement to a weekday set,
// optionally bounded by a validity date range.
type RecurringCoverageRule struct {
	ID                string        `db:"id" json:"id"`
	Name              string        `db:"name" json:"name"`
	Weekdays          pq.Int64Array `db:"weekdays" json:"weekdays"`
	StartTime         string        `db:"start_time" json:"start_time"`
	EndTime           string        `db:"end_time" json:"end_time"`
	MinEmployees      int           `db:"min_employees" json:"min_employees"`
	RequiresKeyholder bool          `db:"requires_keyholder" json:"requires_keyholder"`
	RequiredGroup     *string       `db:"required_group" json:"required_group,omitempty"`
	ValidFrom         *time.Time    `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil        *time.Time    `db:"valid_until" json:"valid_until,omitempty"`
	Active            bool          `db:"is_active" json:"is_active"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// AppliesOn reports whether the recurring rule is in effect for the date.
func (r RecurringCoverageRule) AppliesOn(date time.Time, weekday int) bool {
	if !r.Active {
		return false
	}
	if r.ValidFrom != nil && date.Before(truncateToDay(*r.ValidFrom)) {
		return false
	}
	if r.ValidUntil != nil && date.After(truncateToDay(*r.ValidUntil)) {
		return false
	}
	for _, d := range r.Weekdays {
		if int(d) == weekday {
			return true
		}
	}
	return false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
