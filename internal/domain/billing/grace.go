package billing

import "time"

// DateOf truncates a timestamp to midnight UTC so due-date arithmetic
// works in whole calendar days regardless of the wall-clock time.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EffectiveDueDate returns the first day an obligation counts as overdue:
// the due date plus the lease's grace period. The grace window covers the
// due date itself and the following graceDays-1 days.
func EffectiveDueDate(dueDate time.Time, graceDays int) time.Time {
	if graceDays < 0 {
		graceDays = 0
	}
	return DateOf(dueDate).AddDate(0, 0, graceDays)
}

// IsPastGrace reports whether now falls on or after the effective due date.
func IsPastGrace(dueDate time.Time, graceDays int, now time.Time) bool {
	return !DateOf(now).Before(EffectiveDueDate(dueDate, graceDays))
}

// DaysOverdue returns the number of days past the grace window, counting
// the current day. A due date of March 1 with five grace days is one day
// overdue on March 6 and five days overdue on March 10.
func DaysOverdue(dueDate time.Time, graceDays int, now time.Time) int {
	eff := EffectiveDueDate(dueDate, graceDays)
	today := DateOf(now)
	if today.Before(eff) {
		return 0
	}
	return int(today.Sub(eff).Hours()/24) + 1
}

// WithinGracePeriod reports whether now is past the due date but still
// inside the grace window.
func WithinGracePeriod(dueDate time.Time, graceDays int, now time.Time) bool {
	today := DateOf(now)
	return today.After(DateOf(dueDate)) && today.Before(EffectiveDueDate(dueDate, graceDays))
}

// DueDateForPeriod computes the due date for a billing period, clamping the
// lease's rent due day to the month's last day.
func DueDateForPeriod(year int, month time.Month, rentDueDay int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := rentDueDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the final calendar day of the given month.
func LastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
