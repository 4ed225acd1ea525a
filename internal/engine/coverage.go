package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// coverageWindow is a parsed one-off or recurring rule applicable to a date.
type coverageWindow struct {
	startHour         int
	endHour           int
	minEmployees      int
	requiresKeyholder bool
	requiredGroup     models.EmployeeGroup
}

// hourDemand is the aggregated requirement for one store hour.
type hourDemand struct {
	required          int
	requiresKeyholder bool
	requiredGroup     models.EmployeeGroup
}

// resolveCoverageSlots gathers every rule applicable to the date and
// compresses the hourly minimums into contiguous COVERAGE slots. Hours
// with zero requirement are omitted; consecutive hours with identical
// demand are merged.
func resolveCoverageSlots(
	date time.Time,
	hours dayHours,
	oneOff []models.CoverageRule,
	recurring []models.RecurringCoverageRule,
	rc *runContext,
) []*RequiredSlot {
	weekday := weekdayIndex(date)

	windows := make([]coverageWindow, 0, len(oneOff)+len(recurring))
	for _, rule := range oneOff {
		if rule.Weekday != weekday {
			continue
		}
		window, err := newCoverageWindow(rule.StartTime, rule.EndTime, rule.MinEmployees, rule.RequiresKeyholder, rule.RequiredGroup)
		if err != nil {
			rc.warnf("skipping coverage rule %s: %v", rule.ID, err)
			continue
		}
		windows = append(windows, window)
	}
	for _, rule := range recurring {
		if !rule.AppliesOn(truncateToDay(date), weekday) {
			continue
		}
		window, err := newCoverageWindow(rule.StartTime, rule.EndTime, rule.MinEmployees, rule.RequiresKeyholder, rule.RequiredGroup)
		if err != nil {
			rc.warnf("skipping recurring coverage rule %s: %v", rule.ID, err)
			continue
		}
		windows = append(windows, window)
	}
	if len(windows) == 0 {
		return nil
	}

	firstHour := hours.opening / 60
	lastHour := (hours.closing - 1) / 60

	demands := make([]hourDemand, 0, lastHour-firstHour+1)
	for h := firstHour; h <= lastHour; h++ {
		hourOfDay := h % 24
		var demand hourDemand
		for _, window := range windows {
			if !hourInWindow(hourOfDay, window.startHour, window.endHour) {
				continue
			}
			if window.minEmployees > demand.required {
				demand.required = window.minEmployees
			}
			if window.requiresKeyholder {
				demand.requiresKeyholder = true
			}
			if window.requiredGroup != "" {
				demand.requiredGroup = window.requiredGroup
			}
		}
		demands = append(demands, demand)
	}

	slots := make([]*RequiredSlot, 0)
	for i := 0; i < len(demands); {
		if demands[i].required == 0 {
			i++
			continue
		}
		j := i
		for j+1 < len(demands) && demands[j+1] == demands[i] {
			j++
		}
		start := (firstHour + i) * 60
		end := (firstHour + j + 1) * 60
		// Clamp the run to the actual store minutes at the edges.
		if start < hours.opening {
			start = hours.opening
		}
		if end > hours.closing {
			end = hours.closing
		}
		slots = append(slots, &RequiredSlot{
			Date:              date,
			Start:             start,
			End:               end,
			Kind:              SlotCoverage,
			Required:          demands[i].required,
			RequiresKeyholder: demands[i].requiresKeyholder,
			RequiredGroup:     demands[i].requiredGroup,
			Source:            "coverage",
		})
		i = j + 1
	}
	return slots
}

func newCoverageWindow(startTime, endTime string, min int, keyholder bool, group *string) (coverageWindow, error) {
	start, err := parseClock(startTime)
	if err != nil {
		return coverageWindow{}, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return coverageWindow{}, err
	}
	window := coverageWindow{
		startHour:         start / 60,
		endHour:           end / 60,
		minEmployees:      min,
		requiresKeyholder: keyholder,
	}
	if group != nil {
		window.requiredGroup = models.EmployeeGroup(*group)
	}
	return window, nil
}
