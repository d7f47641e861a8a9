// Package schedule implements the production scheduling core: machine
// compatibility, production-time calculation, work-day block splitting,
// greedy schedule generation, OEE metrics and order status derivation.
package schedule

import (
	"fmt"
	"time"

	"github.com/mnordin/planverk/internal/models"
)

// Default daily work window.
const (
	DefaultWorkStartHour = 6
	DefaultWorkEndHour   = 22
)

// WorkHours is the daily working window. Times are naive local
// wall-clock hours; no timezone conversion is performed.
type WorkHours struct {
	StartHour int
	EndHour   int
}

// DefaultWorkHours returns the 06:00-22:00 window.
func DefaultWorkHours() WorkHours {
	return WorkHours{StartHour: DefaultWorkStartHour, EndHour: DefaultWorkEndHour}
}

// WorkHoursFromSettings builds the window from the settings row,
// falling back to the defaults for unset fields.
func WorkHoursFromSettings(s models.Settings) WorkHours {
	w := WorkHours{StartHour: s.WorkStartHour, EndHour: s.WorkEndHour}
	if w.StartHour == 0 && w.EndHour == 0 {
		return DefaultWorkHours()
	}
	return w
}

// Validate rejects windows that would make block splitting loop forever.
func (w WorkHours) Validate() error {
	if w.StartHour < 0 || w.EndHour > 24 || w.StartHour >= w.EndHour {
		return fmt.Errorf("schedule: invalid work window %02d:00-%02d:00", w.StartHour, w.EndHour)
	}
	return nil
}

// Adjust clamps t into the work window: before the start it moves to
// the start of the same day, at or past the end it moves to the next
// day's start. Idempotent.
func (w WorkHours) Adjust(t time.Time) time.Time {
	if t.Hour() < w.StartHour {
		return time.Date(t.Year(), t.Month(), t.Day(), w.StartHour, 0, 0, 0, t.Location())
	}
	if t.Hour() >= w.EndHour {
		next := t.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), w.StartHour, 0, 0, 0, t.Location())
	}
	return t
}

// DayEnd returns the end-of-window timestamp on t's calendar day.
func (w WorkHours) DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), w.EndHour, 0, 0, 0, t.Location())
}

// MinutesUntilDayEnd measures from t to the day's end boundary.
func (w WorkHours) MinutesUntilDayEnd(t time.Time) float64 {
	return w.DayEnd(t).Sub(t).Minutes()
}
