package engine

import (
	"time"

	"github.com/rotaworks/rota-api/internal/models"
)

// dayHours is the effective store window for one date, in minutes since
// midnight. closing past 1440 denotes a store day running past midnight.
type dayHours struct {
	open    bool
	opening int
	closing int
}

// resolveDayHours decides whether the store is open on a date and with
// which hours: a per-date override wins over weekday defaults, and a
// closed override is terminal for the date.
func resolveDayHours(settings models.StoreSettings, date time.Time, rc *runContext) dayHours {
	weekday := weekdayIndex(date)
	defaults := settings.Weekdays[weekday]

	opening := defaults.OpeningTime
	closing := defaults.ClosingTime
	open := defaults.Open

	if special, ok := settings.SpecialDays[dateKey(date)]; ok {
		if special.Closed {
			return dayHours{}
		}
		open = true
		if special.OpeningTime != "" {
			opening = special.OpeningTime
		}
		if special.ClosingTime != "" {
			closing = special.ClosingTime
		}
	}

	if !open {
		return dayHours{}
	}

	start, err := parseClock(opening)
	if err != nil {
		rc.warnf("store hours for %s unusable: %v", dateKey(date), err)
		return dayHours{}
	}
	end, err := parseClock(closing)
	if err != nil {
		rc.warnf("store hours for %s unusable: %v", dateKey(date), err)
		return dayHours{}
	}
	if end <= start {
		// Closing at or before opening means the store day crosses midnight.
		end += minutesPerDay
	}

	return dayHours{open: true, opening: start, closing: end}
}
