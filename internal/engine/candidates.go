package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// eligibleCandidates returns every employee who may legally fill the slot,
// in a stable id order. An employee qualifies only when active, not absent
// on the date, available (non-UNAVAILABLE) for every hour the slot spans,
// and compatible with the slot's keyholder and group constraints. Missing
// availability records fail closed. Employees already committed on this
// date are excluded via the exclusion set, except for a FIXED slot's own
// designated employee, who may hold several fixed shifts on one day.
func eligibleCandidates(snap *Snapshot, slot *RequiredSlot, date time.Time, excluded map[string]struct{}) []models.Employee {
	weekday := weekdayIndex(date)
	day := truncateToDay(date)

	candidates := make([]models.Employee, 0)
	for _, id := range snap.EmployeeIDs() {
		if _, taken := excluded[id]; taken {
			if slot.Kind != SlotFixed || id != slot.EmployeeID {
				continue
			}
		}
		emp := snap.Employees[id]
		if !emp.Active {
			continue
		}
		if slot.RequiresKeyholder && !emp.Keyholder {
			continue
		}
		if slot.RequiredGroup != "" && emp.Group != slot.RequiredGroup {
			continue
		}
		if isAbsentOn(snap.Absences[id], day) {
			continue
		}
		if !availableForSlot(snap, id, weekday, slot) {
			continue
		}
		candidates = append(candidates, emp)
	}
	return candidates
}

// isAbsentOn tests the date against each absence interval, inclusive on
// both ends.
func isAbsentOn(absences []models.Absence, day time.Time) bool {
	for _, absence := range absences {
		start := truncateToDay(absence.StartDate)
		end := truncateToDay(absence.EndDate)
		if !day.Before(start) && !day.After(end) {
			return true
		}
	}
	return false
}

func availableForSlot(snap *Snapshot, employeeID string, weekday int, slot *RequiredSlot) bool {
	for _, sh := range slot.HoursOn(weekday) {
		record, ok := snap.AvailabilityAt(employeeID, sh.Weekday, sh.Hour)
		if !ok {
			return false
		}
		if record.Kind == models.AvailabilityUnavailable {
			return false
		}
	}
	return true
}
