package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// Scorer ranks eligible candidates for a non-FIXED slot. Higher is better;
// ties break on employee id so runs stay deterministic.
type Scorer interface {
	Score(emp models.Employee, slot *RequiredSlot, state *RunState) float64
}

// RunState carries the mutable counters of one engine run across days,
// so later slots see earlier commitments.
type RunState struct {
	// HoursByWeek accumulates assigned hours per ISO week per employee,
	// so weekly ceilings reset at week boundaries instead of compounding
	// over the whole range.
	HoursByWeek map[string]map[string]float64
	// HoursByDay accumulates assigned hours per employee per date key.
	HoursByDay map[string]map[string]float64
	// LastShiftEnd remembers when each employee's latest shift ends, for
	// the minimum-rest check.
	LastShiftEnd map[string]time.Time
	// assignedToday is the per-date exclusion set preventing same-day
	// double booking across slots; reset at each date boundary.
	assignedToday map[string]struct{}
}

func newRunState() *RunState {
	return &RunState{
		HoursByWeek:   make(map[string]map[string]float64),
		HoursByDay:    make(map[string]map[string]float64),
		LastShiftEnd:  make(map[string]time.Time),
		assignedToday: make(map[string]struct{}),
	}
}

func (s *RunState) beginDay() {
	s.assignedToday = make(map[string]struct{})
}

// weekHours returns the hours already booked for the employee in the
// date's ISO week.
func (s *RunState) weekHours(employeeID string, date time.Time) float64 {
	return s.HoursByWeek[weekKey(date)][employeeID]
}

func (s *RunState) commit(emp models.Employee, slot *RequiredSlot) {
	hours := slot.DurationHours()

	wk := weekKey(slot.Date)
	if s.HoursByWeek[wk] == nil {
		s.HoursByWeek[wk] = make(map[string]float64)
	}
	s.HoursByWeek[wk][emp.ID] += hours

	key := dateKey(slot.Date)
	if s.HoursByDay[key] == nil {
		s.HoursByDay[key] = make(map[string]float64)
	}
	s.HoursByDay[key][emp.ID] += hours

	end := truncateToDay(slot.Date).Add(time.Duration(slot.End) * time.Minute)
	if end.After(s.LastShiftEnd[emp.ID]) {
		s.LastShiftEnd[emp.ID] = end
	}
	s.assignedToday[emp.ID] = struct{}{}
}

// withinHardCaps enforces the declared daily/weekly hour ceilings and the
// minimum rest since the employee's previous shift.
func (s *RunState) withinHardCaps(emp models.Employee, slot *RequiredSlot) bool {
	hours := slot.DurationHours()
	if emp.MaxHoursPerDay > 0 && s.HoursByDay[dateKey(slot.Date)][emp.ID]+hours > emp.MaxHoursPerDay {
		return false
	}
	if emp.MaxHoursPerWeek > 0 && s.weekHours(emp.ID, slot.Date)+hours > emp.MaxHoursPerWeek {
		return false
	}
	if emp.MinRestHours > 0 {
		if last, ok := s.LastShiftEnd[emp.ID]; ok {
			start := truncateToDay(slot.Date).Add(time.Duration(slot.Start) * time.Minute)
			if start.Sub(last) < time.Duration(emp.MinRestHours*float64(time.Hour)) {
				return false
			}
		}
	}
	return true
}

// DefaultScorer prefers employees whose PREFERRED hours cover the slot,
// then favours whoever is furthest below their contracted hours.
type DefaultScorer struct {
	snap *Snapshot
}

// NewDefaultScorer builds the stock scoring function over a snapshot.
func NewDefaultScorer(snap *Snapshot) *DefaultScorer {
	return &DefaultScorer{snap: snap}
}

// Score weights preference coverage at 10x so a fully PREFERRED candidate
// always outranks a merely AVAILABLE one, with the contracted-hours
// deficit for the slot's week deciding between equals.
func (d *DefaultScorer) Score(emp models.Employee, slot *RequiredSlot, state *RunState) float64 {
	hours := slot.HoursOn(weekdayIndex(slot.Date))

	preferred := 0
	for _, sh := range hours {
		record, ok := d.snap.AvailabilityAt(emp.ID, sh.Weekday, sh.Hour)
		if ok && (record.Kind == models.AvailabilityPreferred || record.Kind == models.AvailabilityFixed) {
			preferred++
		}
	}
	score := 10 * float64(preferred) / float64(len(hours))

	if emp.ContractedHours > 0 {
		deficit := (emp.ContractedHours - state.weekHours(emp.ID, slot.Date)) / emp.ContractedHours
		score += deficit
	}
	return score
}

// fillSlot assigns employees to the slot until its headcount is met or no
// eligible candidate remains. FIXED slots accept only their designated
// employee; no substitution ever occurs. Each successful pick enters the
// day's exclusion set so later coverage slots never re-offer the same
// employee; further FIXED shifts of that employee remain fillable.
func fillSlot(
	slot *RequiredSlot,
	snap *Snapshot,
	scorer Scorer,
	state *RunState,
	rc *runContext,
) []Assignment {
	candidates := eligibleCandidates(snap, slot, slot.Date, state.assignedToday)

	if slot.Kind == SlotFixed {
		for _, emp := range candidates {
			if emp.ID != slot.EmployeeID {
				continue
			}
			state.commit(emp, slot)
			slot.Assigned++
			slot.State = SlotFilled
			return []Assignment{newAssignment(emp, slot)}
		}
		slot.State = SlotUnfillable
		rc.warnf("fixed slot %s %s-%s unfilled: employee %s not eligible",
			dateKey(slot.Date), slot.StartClock(), slot.EndClock(), slot.EmployeeID)
		return nil
	}

	pool := make([]models.Employee, len(candidates))
	copy(pool, candidates)

	assignments := make([]Assignment, 0, slot.Required)
	for slot.Assigned < slot.Required {
		best := -1
		bestScore := 0.0
		for i, emp := range pool {
			if !state.withinHardCaps(emp, slot) {
				continue
			}
			score := scorer.Score(emp, slot, state)
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			slot.State = SlotUnfillable
			rc.warnf("coverage slot %s %s-%s short-staffed: %d of %d filled",
				dateKey(slot.Date), slot.StartClock(), slot.EndClock(), slot.Assigned, slot.Required)
			return assignments
		}

		picked := pool[best]
		pool = append(pool[:best], pool[best+1:]...)
		state.commit(picked, slot)
		slot.Assigned++
		if slot.Assigned < slot.Required {
			slot.State = SlotPartiallyFilled
		} else {
			slot.State = SlotFilled
		}
		assignments = append(assignments, newAssignment(picked, slot))
	}
	return assignments
}

func newAssignment(emp models.Employee, slot *RequiredSlot) Assignment {
	return Assignment{
		EmployeeID: emp.ID,
		Date:       truncateToDay(slot.Date),
		StartTime:  slot.StartClock(),
		EndTime:    slot.EndClock(),
		Kind:       slot.Kind.String(),
		Source:     slot.Source,
	}
}
