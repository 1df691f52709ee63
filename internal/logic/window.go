package logic

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Minutes returns the time of day as minutes after midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Window is a daily time-of-day interval during which activation is
// suppressed. If Start > End the window wraps midnight (an overnight
// window such as 21:00–10:00). Both ends are inclusive.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Contains reports whether the local wall-clock time of t falls inside
// the window. Evaluated fresh each cycle — never cached.
func (w Window) Contains(t time.Time) bool {
	now := t.Hour()*60 + t.Minute()
	start := w.Start.Minutes()
	end := w.End.Minutes()

	if start > end {
		// Overnight window, e.g. 21:00–10:00.
		return now >= start || now <= end
	}
	return now >= start && now <= end
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
