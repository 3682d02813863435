package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for completion rows.
const DateLayout = "2006-01-02"

// MinutesOfDay parses a 24-hour "HH:MM" string into minutes since midnight.
func MinutesOfDay(hhmm string) (int, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour*60 + minute, nil
}

// IsOverdue reports whether a task scheduled at scheduledTime with the given
// reminder offset has passed its deadline at now. A task completed today is
// never overdue. The comparison is linear within the day: offsets that push the
// deadline past 23:59 do not wrap to the next morning.
func IsOverdue(scheduledTime string, reminderOffset int, completedToday bool, now time.Time) bool {
	if completedToday {
		return false
	}
	scheduled, err := MinutesOfDay(scheduledTime)
	if err != nil {
		return false
	}
	current := now.Hour()*60 + now.Minute()
	return current > scheduled+reminderOffset
}

// ReminderAt resolves the absolute instant a reminder should fire for a task
// scheduled on the given day: scheduled_time plus the offset in minutes. The
// result may land on the next calendar day when the offset crosses midnight.
func ReminderAt(day time.Time, scheduledTime string, reminderOffset int) (time.Time, error) {
	minutes, err := MinutesOfDay(scheduledTime)
	if err != nil {
		return time.Time{}, err
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return midnight.Add(time.Duration(minutes+reminderOffset) * time.Minute), nil
}

// DateOf formats the calendar day of t in t's location.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}
