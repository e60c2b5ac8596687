package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

// ErrNoAvailability means the trainer has no availability windows at all.
// Callers render it as an informational empty state, not a failure.
var ErrNoAvailability = errors.New("trainer has no availability")

const DefaultHorizonDays = 60

type Service struct {
	availability store.AvailabilityRepository
	bookings     store.BookingRepository
	now          func() time.Time
}

func NewService(availability store.AvailabilityRepository, bookings store.BookingRepository) *Service {
	return &Service{
		availability: availability,
		bookings:     bookings,
		now:          time.Now,
	}
}

// AvailableDates walks horizonDays calendar days forward from 'from' and
// keeps the days whose weekday appears in the trainer's availability windows
// and which are not strictly before today. Dates come back ascending, at
// midnight in from's location.
func (s *Service) AvailableDates(ctx context.Context, trainerID string, from time.Time, horizonDays int) ([]time.Time, error) {
	if trainerID == "" {
		return nil, domain.NewValidationError("trainer_id is required")
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	windows, err := s.availability.WindowsFor(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, ErrNoAvailability
	}

	weekdays := make(map[int]struct{}, len(windows))
	for _, w := range windows {
		weekdays[w.DayOfWeek] = struct{}{}
	}

	start := midnight(from)
	// The cutoff is computed in UTC regardless of the host zone; callers
	// feed UTC instants and dates.
	today := midnight(s.now().UTC())

	dates := make([]time.Time, 0, horizonDays)
	for i := 0; i < horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		if day.Before(today) {
			continue
		}
		if _, ok := weekdays[int(day.Weekday())]; ok {
			dates = append(dates, day)
		}
	}
	return dates, nil
}

// AvailableSlots produces the bookable slots for one trainer, service and
// date. An empty result (no windows on that weekday, or everything booked)
// is not an error. Calling twice with no intervening booking changes yields
// the same list.
func (s *Service) AvailableSlots(ctx context.Context, trainerID string, serviceID uuid.UUID, date time.Time) ([]domain.TimeSlot, error) {
	if trainerID == "" {
		return nil, domain.NewValidationError("trainer_id is required")
	}
	if serviceID == uuid.Nil {
		return nil, domain.NewValidationError("service_id is required")
	}

	svc, err := s.availability.ServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.TrainerID != trainerID {
		return nil, store.ErrNotFound
	}

	settings, err := s.availability.SettingsFor(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	windows, err := s.availability.WindowsFor(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	dayStart := midnight(date)
	dayEnd := dayStart.AddDate(0, 0, 1)
	booked, err := s.bookings.ListForTrainer(ctx, trainerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	return domain.GenerateSlots(date, windows, booked, svc.DurationMinutes, settings.TimeStep), nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
