package engine

import "sort"

// mergeSlots reconciles FIXED commitments against COVERAGE demand. Every
// coverage slot gives up one unit of headcount per overlapping fixed slot;
// fixed commitments themselves are never reduced. Surviving slots come
// back ordered by priority, then start time.
func mergeSlots(fixed, coverage []*RequiredSlot, rc *runContext) []*RequiredSlot {
	merged := make([]*RequiredSlot, 0, len(fixed)+len(coverage))
	merged = append(merged, fixed...)

	for _, slot := range coverage {
		overlap := 0
		for _, fixedSlot := range fixed {
			if slot.Overlaps(fixedSlot) {
				overlap++
			}
		}
		if overlap > slot.Required {
			rc.warnf("fixed shifts exceed coverage need on %s %s-%s (%d fixed, %d required)",
				dateKey(slot.Date), slot.StartClock(), slot.EndClock(), overlap, slot.Required)
		}
		slot.Required -= overlap
		if slot.Required <= 0 {
			continue
		}
		merged = append(merged, slot)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Kind != merged[j].Kind {
			return merged[i].Kind < merged[j].Kind
		}
		return merged[i].Start < merged[j].Start
	})
	return merged
}
