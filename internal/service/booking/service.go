package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

// Service drives the booking lifecycle:
//
//	pending --confirm--> confirmed
//	pending|confirmed --cancel--> cancelled (terminal)
//
// with confirmed reachable directly at creation when the trainer runs in
// auto confirmation mode.
type Service struct {
	bookings      store.BookingRepository
	availability  store.AvailabilityRepository
	notifications store.NotificationRepository
	log           *slog.Logger
	now           func() time.Time
}

func NewService(bookings store.BookingRepository, availability store.AvailabilityRepository, notifications store.NotificationRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		bookings:      bookings,
		availability:  availability,
		notifications: notifications,
		log:           log.With(slog.String("component", "service.booking")),
		now:           time.Now,
	}
}

type CreateInput struct {
	CallerID       string
	TrainerID      string
	ServiceID      uuid.UUID
	StartTime      time.Time
	ClientName     string
	ClientEmail    string
	Note           string
	IdempotencyKey string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Booking, error) {
	if in.CallerID == "" {
		return domain.Booking{}, domain.NewValidationError("caller is required")
	}
	if in.TrainerID == "" {
		return domain.Booking{}, domain.NewValidationError("trainer_id is required")
	}
	if in.ServiceID == uuid.Nil {
		return domain.Booking{}, domain.NewValidationError("service_id is required")
	}
	if in.StartTime.IsZero() {
		return domain.Booking{}, domain.NewValidationError("start_time is required")
	}
	if strings.TrimSpace(in.ClientName) == "" {
		return domain.Booking{}, domain.NewValidationError("client name is required")
	}

	svc, err := s.availability.ServiceByID(ctx, in.ServiceID)
	if err != nil {
		return domain.Booking{}, err
	}
	if svc.TrainerID != in.TrainerID {
		return domain.Booking{}, store.ErrNotFound
	}

	settings, err := s.availability.SettingsFor(ctx, in.TrainerID)
	if err != nil {
		return domain.Booking{}, err
	}

	start := in.StartTime.UTC()
	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	// Read-time conflict check. The storage exclusion constraint remains the
	// authoritative guard against concurrent writers.
	existing, err := s.bookings.ListForTrainer(ctx, in.TrainerID, start, end)
	if err != nil {
		return domain.Booking{}, err
	}
	if domain.HasConflict(start, end, existing) {
		return domain.Booking{}, store.ErrConflict
	}

	status := domain.BookingStatusPending
	if settings.ConfirmationMode == domain.ConfirmationModeAuto {
		status = domain.BookingStatusConfirmed
	}

	b := domain.Booking{
		TrainerID:   in.TrainerID,
		ClientID:    in.CallerID,
		ServiceID:   svc.ID,
		Title:       svc.Name,
		Description: strings.TrimSpace(in.Note),
		StartTime:   start,
		EndTime:     end,
		Status:      status,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Booking{}, domain.NewValidationError("idempotency_key too long")
		}
		b.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("mestermunka:create_booking:"+in.CallerID+":"+key))
	}

	created, err := s.bookings.Create(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}

	if created.Status == domain.BookingStatusConfirmed {
		s.notifyBooked(ctx, created, in.ClientName)
	}
	return created, nil
}

// Confirm transitions a pending booking to confirmed. Only the trainer may
// confirm.
func (s *Service) Confirm(ctx context.Context, callerID string, bookingID uuid.UUID) (domain.Booking, error) {
	if callerID == "" {
		return domain.Booking{}, domain.NewValidationError("caller is required")
	}
	if bookingID == uuid.Nil {
		return domain.Booking{}, domain.NewValidationError("booking_id is required")
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.TrainerID != callerID {
		return domain.Booking{}, domain.ErrForbidden
	}
	if b.Status != domain.BookingStatusPending {
		return domain.Booking{}, domain.ErrInvalidState
	}

	b.Status = domain.BookingStatusConfirmed
	updated, err := s.bookings.Update(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}

	s.notifyBooked(ctx, updated, "")
	return updated, nil
}

// Cancel transitions a booking to cancelled. Either party may cancel; a
// second cancel fails with ErrInvalidState rather than silently succeeding.
func (s *Service) Cancel(ctx context.Context, callerID string, bookingID uuid.UUID, reason string) (domain.Booking, error) {
	if callerID == "" {
		return domain.Booking{}, domain.NewValidationError("caller is required")
	}
	if bookingID == uuid.Nil {
		return domain.Booking{}, domain.NewValidationError("booking_id is required")
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if b.Status == domain.BookingStatusCancelled {
		return domain.Booking{}, domain.ErrInvalidState
	}
	if callerID != b.TrainerID && callerID != b.ClientID {
		return domain.Booking{}, domain.ErrForbidden
	}

	now := s.now().UTC()
	b.Status = domain.BookingStatusCancelled
	b.CancellationReason = strings.TrimSpace(reason)
	b.CancellationDate = &now

	updated, err := s.bookings.Update(ctx, b)
	if err != nil {
		return domain.Booking{}, err
	}

	// Cleanup is best-effort: a failure here never rolls back the cancel.
	if err := s.notifications.DeleteByReference(ctx, updated.ID.String()); err != nil {
		s.log.Warn("notification cleanup failed",
			slog.Any("err", err),
			slog.String("booking_id", updated.ID.String()),
		)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if bookingID == uuid.Nil {
		return domain.Booking{}, domain.NewValidationError("booking_id is required")
	}
	return s.bookings.GetByID(ctx, bookingID)
}

// ListForTrainer is the re-fetch path: after any mutation, and on external
// push updates, callers re-read from the store rather than patching a local
// copy.
func (s *Service) ListForTrainer(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	if trainerID == "" {
		return nil, domain.NewValidationError("trainer_id is required")
	}
	if !windowEnd.After(windowStart) {
		return nil, domain.NewValidationError("window_end must be after window_start")
	}
	return s.bookings.ListForTrainer(ctx, trainerID, windowStart.UTC(), windowEnd.UTC())
}

// notifyBooked emits the confirmation pair, one notification to each party.
// Failures are logged and swallowed.
func (s *Service) notifyBooked(ctx context.Context, b domain.Booking, clientName string) {
	when := b.StartTime.Format("2006-01-02 15:04")
	trainerContent := fmt.Sprintf("%s booked for %s", b.Title, when)
	if clientName != "" {
		trainerContent = fmt.Sprintf("%s booked %s for %s", clientName, b.Title, when)
	}

	pair := []domain.Notification{
		{
			UserID:        b.TrainerID,
			Type:          domain.NotificationTypeAppointment,
			Content:       trainerContent,
			ReferenceID:   b.ID.String(),
			ReferenceType: "booking",
			SenderID:      b.ClientID,
		},
		{
			UserID:        b.ClientID,
			Type:          domain.NotificationTypeAppointment,
			Content:       fmt.Sprintf("Your booking %s for %s is confirmed", b.Title, when),
			ReferenceID:   b.ID.String(),
			ReferenceType: "booking",
			SenderID:      b.TrainerID,
		},
	}

	for _, n := range pair {
		if err := s.notifications.Insert(ctx, n); err != nil {
			s.log.Warn("notification create failed",
				slog.Any("err", err),
				slog.String("booking_id", b.ID.String()),
				slog.String("user_id", n.UserID),
			)
		}
	}
}
