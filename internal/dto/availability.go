package dto

// AvailabilityEntry is one weekday-hour cell of the weekly grid.
type AvailabilityEntry struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"`
	Hour    int    `json:"hour" validate:"min=0,max=23"`
	Kind    string `json:"kind" validate:"required,oneof=FIXED PREFERRED AVAILABLE UNAVAILABLE"`
}

// ReplaceAvailabilityRequest swaps an employee's entire weekly grid. An
// empty entry list clears it.
type ReplaceAvailabilityRequest struct {
	Entries []AvailabilityEntry `json:"entries" validate:"dive"`
}
