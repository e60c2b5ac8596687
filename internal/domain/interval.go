package domain

import "time"

// Overlaps reports whether the closed-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Edge-equal boundaries do not count: a slot
// ending exactly when a booking starts is free.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aStart.Before(bStart) && aStart.Before(bEnd) {
		return true
	}
	if aEnd.After(bStart) && !aEnd.After(bEnd) {
		return true
	}
	if !aStart.After(bStart) && !aEnd.Before(bEnd) {
		return true
	}
	return false
}

// StepMinutes advances t by a whole number of minutes. No rounding and no
// zone normalization.
func StepMinutes(t time.Time, minutes int) time.Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}
