package engine

import (
	"sort"

	"github.com/rotaworks/rota-api/internal/models"
)

// Snapshot indexes the flat input lists for O(1) lookups during a run.
// It is read-only once built; malformed records are dropped with a
// warning rather than aborting.
type Snapshot struct {
	Employees map[string]models.Employee
	// Absences maps employee id to that employee's absence intervals.
	Absences map[string][]models.Absence
	// Availability maps employee id -> weekday (0=Monday) -> hour -> record.
	Availability map[string]map[int]map[int]models.AvailabilityRecord

	employeeIDs []string
}

func newSnapshot(
	employees []models.Employee,
	absences []models.Absence,
	availability []models.AvailabilityRecord,
	rc *runContext,
) *Snapshot {
	snap := &Snapshot{
		Employees:    make(map[string]models.Employee, len(employees)),
		Absences:     make(map[string][]models.Absence),
		Availability: make(map[string]map[int]map[int]models.AvailabilityRecord),
	}

	for _, emp := range employees {
		if emp.ID == "" {
			rc.warnf("skipping employee with empty id (%s)", emp.FullName())
			continue
		}
		snap.Employees[emp.ID] = emp
		snap.employeeIDs = append(snap.employeeIDs, emp.ID)
	}
	sort.Strings(snap.employeeIDs)

	for _, absence := range absences {
		if absence.EndDate.Before(absence.StartDate) {
			rc.warnf("skipping absence %s for employee %s: end date before start date", absence.ID, absence.EmployeeID)
			continue
		}
		snap.Absences[absence.EmployeeID] = append(snap.Absences[absence.EmployeeID], absence)
	}

	for _, record := range availability {
		if record.Weekday < 0 || record.Weekday > 6 || record.Hour < 0 || record.Hour > 23 {
			rc.warnf("skipping availability record %s for employee %s: weekday %d hour %d out of range",
				record.ID, record.EmployeeID, record.Weekday, record.Hour)
			continue
		}
		if !record.Kind.Valid() {
			rc.warnf("skipping availability record %s for employee %s: unknown kind %q", record.ID, record.EmployeeID, record.Kind)
			continue
		}
		byDay := snap.Availability[record.EmployeeID]
		if byDay == nil {
			byDay = make(map[int]map[int]models.AvailabilityRecord)
			snap.Availability[record.EmployeeID] = byDay
		}
		byHour := byDay[record.Weekday]
		if byHour == nil {
			byHour = make(map[int]models.AvailabilityRecord)
			byDay[record.Weekday] = byHour
		}
		byHour[record.Hour] = record
	}

	return snap
}

// EmployeeIDs returns all indexed employee ids in a stable order.
func (s *Snapshot) EmployeeIDs() []string {
	return s.employeeIDs
}

// AvailabilityAt returns the record for an employee's weekday hour, if any.
func (s *Snapshot) AvailabilityAt(employeeID string, weekday, hour int) (models.AvailabilityRecord, bool) {
	byDay, ok := s.Availability[employeeID]
	if !ok {
		return models.AvailabilityRecord{}, false
	}
	byHour, ok := byDay[weekday]
	if !ok {
		return models.AvailabilityRecord{}, false
	}
	record, ok := byHour[hour]
	return record, ok
}
