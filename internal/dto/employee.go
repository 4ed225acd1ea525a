package dto

// CreateEmployeeRequest adds a worker to the roster.
type CreateEmployeeRequest struct {
	FirstName       string  `json:"firstName" validate:"required,max=100"`
	LastName        string  `json:"lastName" validate:"required,max=100"`
	Group           string  `json:"group" validate:"required,oneof=TL VZ TZ GFB"`
	Keyholder       bool    `json:"keyholder"`
	ContractedHours float64 `json:"contractedHours" validate:"omitempty,gte=0,lte=60"`
	MaxHoursPerWeek float64 `json:"maxHoursPerWeek" validate:"omitempty,gte=0,lte=80"`
	MaxHoursPerDay  float64 `json:"maxHoursPerDay" validate:"omitempty,gte=0,lte=24"`
	MinRestHours    float64 `json:"minRestHours" validate:"omitempty,gte=0,lte=24"`
}

// UpdateEmployeeRequest modifies a roster entry.
type UpdateEmployeeRequest struct {
	FirstName       string   `json:"firstName" validate:"required,max=100"`
	LastName        string   `json:"lastName" validate:"required,max=100"`
	Group           string   `json:"group" validate:"required,oneof=TL VZ TZ GFB"`
	Keyholder       *bool    `json:"keyholder"`
	Active          *bool    `json:"active"`
	ContractedHours *float64 `json:"contractedHours" validate:"omitempty,gte=0,lte=60"`
	MaxHoursPerWeek *float64 `json:"maxHoursPerWeek" validate:"omitempty,gte=0,lte=80"`
	MaxHoursPerDay  *float64 `json:"maxHoursPerDay" validate:"omitempty,gte=0,lte=24"`
	MinRestHours    *float64 `json:"minRestHours" validate:"omitempty,gte=0,lte=24"`
}
