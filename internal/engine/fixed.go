package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// shiftWindow is a parsed ShiftTypeDefinition.
type shiftWindow struct {
	id    string
	name  string
	start int
	end   int // past 1440 when the window crosses midnight
}

func parseShiftWindows(defs []models.ShiftTypeDefinition, rc *runContext) []shiftWindow {
	windows := make([]shiftWindow, 0, len(defs))
	for _, def := range defs {
		start, err := parseClock(def.StartTime)
		if err != nil {
			rc.warnf("skipping shift type %q: %v", def.Name, err)
			continue
		}
		end, err := parseClock(def.EndTime)
		if err != nil {
			rc.warnf("skipping shift type %q: %v", def.Name, err)
			continue
		}
		if end <= start {
			end += minutesPerDay
		}
		windows = append(windows, shiftWindow{id: def.ID, name: def.Name, start: start, end: end})
	}
	return windows
}

// containsHour tests the definition's hour window with midnight wraparound.
func (w shiftWindow) containsHour(hour int) bool {
	return hourInWindow(hour, w.start/60, (w.end/60)%24)
}

// generateFixedSlots turns FIXED availability hours into reserved slots.
// Each hour resolves to the first shift definition covering it, and at
// most one slot is emitted per (employee, shift) pair per date.
func generateFixedSlots(snap *Snapshot, windows []shiftWindow, date time.Time, rc *runContext) []*RequiredSlot {
	weekday := weekdayIndex(date)
	slots := make([]*RequiredSlot, 0)

	for _, employeeID := range snap.EmployeeIDs() {
		byHour := snap.Availability[employeeID][weekday]
		if len(byHour) == 0 {
			continue
		}
		emitted := make(map[string]bool)
		for hour := 0; hour < 24; hour++ {
			record, ok := byHour[hour]
			if !ok || record.Kind != models.AvailabilityFixed {
				continue
			}
			window, found := coveringWindow(windows, hour)
			if !found {
				rc.warnf("no shift type covers fixed hour %d for employee %s on %s", hour, employeeID, dateKey(date))
				continue
			}
			if emitted[window.id] {
				continue
			}
			emitted[window.id] = true
			slots = append(slots, &RequiredSlot{
				Date:       date,
				Start:      window.start,
				End:        window.end,
				Kind:       SlotFixed,
				Required:   1,
				Source:     window.name,
				EmployeeID: employeeID,
			})
		}
	}
	return slots
}

func coveringWindow(windows []shiftWindow, hour int) (shiftWindow, bool) {
	for _, window := range windows {
		if window.containsHour(hour) {
			return window, true
		}
	}
	return shiftWindow{}, false
}
