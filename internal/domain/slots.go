package domain

import "time"

// TimeSlot is a candidate bookable range of exactly one service duration.
// Slots are produced fresh on every query and have no identity beyond their
// time range.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// HasConflict reports whether [start, end) overlaps any non-cancelled
// booking in booked.
func HasConflict(start, end time.Time, booked []Booking) bool {
	for _, b := range booked {
		if !b.Status.Active() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	return false
}

// GenerateSlots expands the availability windows matching date's weekday
// into bookable slots of durationMinutes, filtering out slots that overlap a
// non-cancelled booking. The cursor advances by stepMinutes, not by the
// duration, so consecutive slots in the output may overlap each other; only
// conflicts against existing bookings are filtered. Windows are processed in
// input order and their slots concatenated.
func GenerateSlots(date time.Time, windows []AvailabilityWindow, booked []Booking, durationMinutes, stepMinutes int) []TimeSlot {
	if durationMinutes <= 0 || stepMinutes <= 0 {
		return nil
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	weekday := int(day.Weekday())
	duration := time.Duration(durationMinutes) * time.Minute

	slots := make([]TimeSlot, 0)
	for _, w := range windows {
		if w.DayOfWeek != weekday {
			continue
		}
		windowEnd := StepMinutes(day, w.EndMinute)
		for cursor := StepMinutes(day, w.StartMinute); !cursor.Add(duration).After(windowEnd); cursor = StepMinutes(cursor, stepMinutes) {
			end := cursor.Add(duration)
			if HasConflict(cursor, end, booked) {
				continue
			}
			slots = append(slots, TimeSlot{StartTime: cursor, EndTime: end})
		}
	}
	return slots
}
