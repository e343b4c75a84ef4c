package schedule

import "time"

// GenerateSlots computes the bookable slot start instants for one day.
//
// day is the local midnight of the requested date. claimed is a snapshot
// of instants already held by active appointments; it may be stale by the
// time a booking commits, so the result is advisory only. The store's
// uniqueness constraint is the authoritative conflict check.
//
// Ranges are walked in declaration order, each internally chronological;
// no global re-sort. A range whose end is not after its start is skipped
// rather than failing the whole request.
func GenerateSlots(avail WeeklyAvailability, slotMinutes int, day time.Time, now time.Time, claimed map[time.Time]bool) []time.Time {
	slots := []time.Time{}
	if slotMinutes <= 0 {
		return slots
	}

	step := time.Duration(slotMinutes) * time.Minute
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	// Map equality on time.Time is location-sensitive, and claimed
	// instants come back from the store in whatever location the driver
	// attaches. Compare in UTC so identical instants always match.
	claimedUTC := make(map[time.Time]bool, len(claimed))
	for t := range claimed {
		claimedUTC[t.UTC()] = true
	}

	for _, r := range avail.RangesFor(midnight.Weekday()) {
		if r.End <= r.Start {
			continue
		}

		cursor := midnight.Add(time.Duration(r.Start) * time.Minute)
		end := midnight.Add(time.Duration(r.End) * time.Minute)

		// A slot must fit whole: one starting before the range end but
		// running past it is not offered.
		for !cursor.Add(step).After(end) {
			if cursor.After(now) && !claimedUTC[cursor.UTC()] {
				slots = append(slots, cursor)
			}
			cursor = cursor.Add(step)
		}
	}

	return slots
}
