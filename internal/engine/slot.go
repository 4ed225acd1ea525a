package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// SlotKind orders slots for assignment; lower values are filled first.
type SlotKind int

const (
	SlotFixed SlotKind = iota + 1
	SlotPreferred
	SlotCoverage
)

func (k SlotKind) String() string {
	switch k {
	case SlotFixed:
		return "FIXED"
	case SlotPreferred:
		return "PREFERRED"
	case SlotCoverage:
		return "COVERAGE"
	}
	return "UNKNOWN"
}

// SlotState tracks a slot through the assignment loop.
type SlotState int

const (
	SlotOpen SlotState = iota
	SlotPartiallyFilled
	SlotFilled
	SlotUnfillable
)

func (s SlotState) String() string {
	switch s {
	case SlotOpen:
		return "OPEN"
	case SlotPartiallyFilled:
		return "PARTIALLY_FILLED"
	case SlotFilled:
		return "FILLED"
	case SlotUnfillable:
		return "UNFILLABLE"
	}
	return "UNKNOWN"
}

// RequiredSlot is one unit of staffing demand for a single date. Start and
// End are minutes since midnight of Date; End past 1440 denotes a window
// running into the next day. Slots live for one date only and are mutated
// in place while assignments are made.
type RequiredSlot struct {
	Date              time.Time
	Start             int
	End               int
	Kind              SlotKind
	Required          int
	Assigned          int
	RequiresKeyholder bool
	RequiredGroup     models.EmployeeGroup
	Source            string
	// EmployeeID reserves a FIXED slot for one specific employee.
	EmployeeID string
	State      SlotState
}

// SlotHour is one covered hour resolved to a concrete weekday. Hours past
// midnight of an overnight window belong to the following weekday.
type SlotHour struct {
	Weekday int
	Hour    int
}

// HoursOn returns the hour-of-day values the slot covers, given the
// weekday its date falls on, advancing the weekday for hours that wrap
// past midnight.
func (s *RequiredSlot) HoursOn(weekday int) []SlotHour {
	first := s.Start / 60
	last := (s.End - 1) / 60
	hours := make([]SlotHour, 0, last-first+1)
	for h := first; h <= last; h++ {
		day := weekday
		if h >= 24 {
			day = (day + 1) % 7
		}
		hours = append(hours, SlotHour{Weekday: day, Hour: h % 24})
	}
	return hours
}

// Overlaps reports whether two slots on the same date share any minutes.
func (s *RequiredSlot) Overlaps(other *RequiredSlot) bool {
	return s.Start < other.End && other.Start < s.End
}

// DurationHours is the slot length in hours.
func (s *RequiredSlot) DurationHours() float64 {
	return float64(s.End-s.Start) / 60.0
}

// StartClock and EndClock render the window bounds as "HH:MM".
func (s *RequiredSlot) StartClock() string { return formatClock(s.Start) }
func (s *RequiredSlot) EndClock() string   { return formatClock(s.End) }
