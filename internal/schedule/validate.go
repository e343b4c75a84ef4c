package schedule

import (
	"errors"
	"time"
)

var (
	ErrPastSlot            = errors.New("slot is in the past")
	ErrOutsideAvailability = errors.New("slot is outside doctor availability")
)

// AlignInstant floors t to the nearest slot boundary within its hour and
// zeroes seconds and sub-seconds. Deterministic floor, never round-to-nearest.
func AlignInstant(t time.Time, slotMinutes int) time.Time {
	if slotMinutes <= 0 {
		slotMinutes = 1
	}
	rounded := (t.Minute() / slotMinutes) * slotMinutes
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), rounded, 0, 0, t.Location())
}

// Validate checks a requested booking instant against a doctor's weekly
// availability and returns the aligned instant that would be committed.
//
// The fit check is two-sided: both the slot's start and its end
// (start + slotMinutes) must land inside a single declared range. A slot
// starting just before closing time but running past it is rejected, not
// truncated.
func Validate(avail WeeklyAvailability, slotMinutes int, requested time.Time, now time.Time) (time.Time, error) {
	aligned := AlignInstant(requested, slotMinutes)

	if !aligned.After(now) {
		return time.Time{}, ErrPastSlot
	}

	start := MinuteOfDay(aligned)
	end := start + TimeOfDay(slotMinutes)

	for _, r := range avail.RangesFor(aligned.Weekday()) {
		if start >= r.Start && end <= r.End {
			return aligned, nil
		}
	}

	return time.Time{}, ErrOutsideAvailability
}
