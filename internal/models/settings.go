package models

import "time"

// WeekdayHours holds the default open state and hours for one weekday.
type WeekdayHours struct {
	Open        bool   `json:"open"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}

// SpecialDay overrides the weekday defaults for a single calendar date.
// Closed wins over custom hours; empty times fall back to the weekday.
type SpecialDay struct {
	Closed      bool   `json:"closed"`
	OpeningTime string `json:"opening_time,omitempty"`
	ClosingTime string `json:"closing_time,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ShiftTypeDefinition names an hour window that FIXED availability hours
// resolve into. Windows may cross midnight (start hour > end hour).
type ShiftTypeDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// StoreSettings is the store calendar plus shift-type templates.
// Weekdays is indexed 0=Monday through 6=Sunday; SpecialDays is keyed
// by "2006-01-02" date strings.
type StoreSettings struct {
	ID          string                `json:"id"`
	Weekdays    [7]WeekdayHours       `json:"weekdays"`
	SpecialDays map[string]SpecialDay `json:"special_days"`
	ShiftTypes  []ShiftTypeDefinition `json:"shift_types"`
	Version     int                   `json:"version"`
	UpdatedAt   time.Time             `json:"updated_at"`
}
