package dto

// CreateCoverageRuleRequest declares a one-off minimum-headcount window.
type CreateCoverageRuleRequest struct {
	Weekday           int     `json:"weekday" validate:"min=0,max=6"`
	StartTime         string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime           string  `json:"endTime" validate:"required,datetime=15:04"`
	MinEmployees      int     `json:"minEmployees" validate:"required,min=1,max=50"`
	RequiresKeyholder bool    `json:"requiresKeyholder"`
	RequiredGroup     *string `json:"requiredGroup" validate:"omitempty,oneof=TL VZ TZ GFB"`
}

// CreateRecurringRuleRequest declares a recurring headcount window over a
// weekday set, optionally bounded by a validity range.
type CreateRecurringRuleRequest struct {
	Name              string  `json:"name" validate:"required,max=120"`
	Weekdays          []int   `json:"weekdays" validate:"required,min=1,dive,min=0,max=6"`
	StartTime         string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime           string  `json:"endTime" validate:"required,datetime=15:04"`
	MinEmployees      int     `json:"minEmployees" validate:"required,min=1,max=50"`
	RequiresKeyholder bool    `json:"requiresKeyholder"`
	RequiredGroup     *string `json:"requiredGroup" validate:"omitempty,oneof=TL VZ TZ GFB"`
	ValidFrom         string  `json:"validFrom" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil        string  `json:"validUntil" validate:"omitempty,datetime=2006-01-02"`
	Active            *bool   `json:"active"`
}
