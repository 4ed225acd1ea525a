package dto

// WeekdayHoursInput sets the default hours for one weekday.
type WeekdayHoursInput struct {
	Open        bool   `json:"open"`
	OpeningTime string `json:"openingTime" validate:"required_if=Open true,omitempty,datetime=15:04"`
	ClosingTime string `json:"closingTime" validate:"required_if=Open true,omitempty,datetime=15:04"`
}

// SpecialDayInput overrides a single calendar date.
type SpecialDayInput struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Closed      bool   `json:"closed"`
	OpeningTime string `json:"openingTime" validate:"omitempty,datetime=15:04"`
	ClosingTime string `json:"closingTime" validate:"omitempty,datetime=15:04"`
	Note        string `json:"note" validate:"omitempty,max=200"`
}

// ShiftTypeInput names an hour window FIXED availability resolves into.
type ShiftTypeInput struct {
	ID        string `json:"id" validate:"omitempty,max=64"`
	Name      string `json:"name" validate:"required,max=120"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
}

// UpdateSettingsRequest replaces the full store calendar. Weekdays is
// indexed 0=Monday through 6=Sunday and must cover the whole week.
type UpdateSettingsRequest struct {
	Weekdays    []WeekdayHoursInput `json:"weekdays" validate:"required,len=7,dive"`
	SpecialDays []SpecialDayInput   `json:"specialDays" validate:"dive"`
	ShiftTypes  []ShiftTypeInput    `json:"shiftTypes" validate:"dive"`
}
