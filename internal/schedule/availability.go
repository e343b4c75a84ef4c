package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
// All scheduling here is naive local time; no timezone handling.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(hh*60 + mm), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeRange is a half-open [Start, End) interval within a single day.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// DayAvailability is the set of open ranges a doctor declares for one weekday.
type DayAvailability struct {
	Day    time.Weekday `json:"day"`
	Ranges []TimeRange  `json:"ranges"`
}

// WeeklyAvailability is a doctor's recurring weekly pattern. The profile
// collaborator owns it; this package only reads it. Ranges are assumed
// sane (ordered, non-overlapping) but never required to be: each range
// is treated independently and malformed ones are skipped downstream.
type WeeklyAvailability []DayAvailability

// RangesFor returns the declared ranges for the given weekday, or nil
// when the doctor has no entry for that day.
func (w WeeklyAvailability) RangesFor(day time.Weekday) []TimeRange {
	for _, d := range w {
		if d.Day == day {
			return d.Ranges
		}
	}
	return nil
}

// MinuteOfDay returns t's wall-clock position as minutes since midnight.
func MinuteOfDay(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}
