package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaworks/rota-api/internal/models"
)

func TestEligibleCandidatesFilters(t *testing.T) {
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	slot := &RequiredSlot{Date: date, Start: 480, End: 960, Kind: SlotCoverage, Required: 1}

	inactive := employee("dora", func(e *models.Employee) { e.Active = false })
	absent := employee("erin")
	partial := employee("finn")
	blocked := employee("gail")
	fit := employee("amy")

	availability := availabilityAllWeek("amy", 8, 16, models.AvailabilityAvailable)
	availability = append(availability, availabilityAllWeek("dora", 8, 16, models.AvailabilityAvailable)...)
	availability = append(availability, availabilityAllWeek("erin", 8, 16, models.AvailabilityAvailable)...)
	availability = append(availability, availabilityAllWeek("finn", 8, 12, models.AvailabilityAvailable)...)
	availability = append(availability, availabilityAllWeek("gail", 8, 16, models.AvailabilityUnavailable)...)

	rc := &runContext{}
	snap := newSnapshot(
		[]models.Employee{inactive, absent, partial, blocked, fit},
		[]models.Absence{{
			ID: "a1", EmployeeID: "erin", Type: models.AbsenceSick,
			StartDate: date, EndDate: date,
		}},
		availability,
		rc,
	)
	require.Empty(t, rc.warnings)

	candidates := eligibleCandidates(snap, slot, date, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "amy", candidates[0].ID)
}

func TestEligibleCandidatesKeyholderAndGroup(t *testing.T) {
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	lead := employee("amy", func(e *models.Employee) {
		e.Group = models.GroupTeamLead
		e.Keyholder = true
	})
	junior := employee("ben")

	snap := snapshotFor(t,
		[]models.Employee{lead, junior},
		append(
			availabilityAllWeek("amy", 8, 16, models.AvailabilityAvailable),
			availabilityAllWeek("ben", 8, 16, models.AvailabilityAvailable)...,
		),
	)

	keyed := &RequiredSlot{Date: date, Start: 480, End: 960, Kind: SlotCoverage, Required: 1, RequiresKeyholder: true}
	candidates := eligibleCandidates(snap, keyed, date, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "amy", candidates[0].ID)

	grouped := &RequiredSlot{Date: date, Start: 480, End: 960, Kind: SlotCoverage, Required: 1, RequiredGroup: models.GroupTeamLead}
	candidates = eligibleCandidates(snap, grouped, date, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "amy", candidates[0].ID)
}

func TestEligibleCandidatesExclusionSet(t *testing.T) {
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	snap := snapshotFor(t,
		[]models.Employee{employee("amy")},
		availabilityAllWeek("amy", 8, 16, models.AvailabilityAvailable),
	)
	slot := &RequiredSlot{Date: date, Start: 480, End: 960, Kind: SlotCoverage, Required: 1}

	candidates := eligibleCandidates(snap, slot, date, map[string]struct{}{"amy": {}})
	assert.Empty(t, candidates)
}

func TestEligibleCandidatesOvernightChecksNextWeekday(t *testing.T) {
	// Nina covers Monday 20:00-24:00 plus the small hours of Tuesday, and
	// Tuesday evening, but nothing early Wednesday.
	records := make([]models.AvailabilityRecord, 0)
	for _, hour := range []int{20, 21, 22, 23} {
		records = append(records,
			models.AvailabilityRecord{ID: "n", EmployeeID: "nina", Weekday: 0, Hour: hour, Kind: models.AvailabilityAvailable},
			models.AvailabilityRecord{ID: "n", EmployeeID: "nina", Weekday: 1, Hour: hour, Kind: models.AvailabilityAvailable},
		)
	}
	for _, hour := range []int{0, 1} {
		records = append(records, models.AvailabilityRecord{ID: "n", EmployeeID: "nina", Weekday: 1, Hour: hour, Kind: models.AvailabilityAvailable})
	}
	snap := snapshotFor(t, []models.Employee{employee("nina")}, records)

	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	slot := &RequiredSlot{Date: monday, Start: 20 * 60, End: 26 * 60, Kind: SlotCoverage, Required: 1}
	candidates := eligibleCandidates(snap, slot, monday, nil)
	require.Len(t, candidates, 1)
	assert.Equal(t, "nina", candidates[0].ID)

	// The same window starting Tuesday runs into Wednesday morning, where
	// nina declared nothing.
	tuesday := monday.AddDate(0, 0, 1)
	slot = &RequiredSlot{Date: tuesday, Start: 20 * 60, End: 26 * 60, Kind: SlotCoverage, Required: 1}
	assert.Empty(t, eligibleCandidates(snap, slot, tuesday, nil))
}

func TestEligibleCandidatesFixedSlotBypassesExclusion(t *testing.T) {
	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	snap := snapshotFor(t,
		[]models.Employee{employee("amy")},
		availabilityAllWeek("amy", 8, 16, models.AvailabilityFixed),
	)
	excluded := map[string]struct{}{"amy": {}}

	coverage := &RequiredSlot{Date: date, Start: 720, End: 960, Kind: SlotCoverage, Required: 1}
	assert.Empty(t, eligibleCandidates(snap, coverage, date, excluded))

	fixed := &RequiredSlot{Date: date, Start: 720, End: 960, Kind: SlotFixed, Required: 1, EmployeeID: "amy"}
	candidates := eligibleCandidates(snap, fixed, date, excluded)
	require.Len(t, candidates, 1)
	assert.Equal(t, "amy", candidates[0].ID)
}

func TestIsAbsentOnInclusiveBounds(t *testing.T) {
	absences := []models.Absence{{
		EmployeeID: "amy",
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
	}}

	assert.False(t, isAbsentOn(absences, time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, isAbsentOn(absences, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, isAbsentOn(absences, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC)))
	assert.False(t, isAbsentOn(absences, time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)))
}
