package dto

// CreateAbsenceRequest records an absence interval, dates inclusive.
type CreateAbsenceRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Type       string `json:"type" validate:"required,oneof=VACATION SICK UNPAID OTHER"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

// UpdateAbsenceRequest modifies an absence interval.
type UpdateAbsenceRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Type      string `json:"type" validate:"required,oneof=VACATION SICK UNPAID OTHER"`
	Note      string `json:"note" validate:"omitempty,max=500"`
}
