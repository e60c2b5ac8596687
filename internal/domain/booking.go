package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	// ErrForbidden means the caller is neither the client nor the trainer
	// on the record being mutated.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState means the requested status transition is not allowed
	// (confirming a non-pending booking, cancelling a cancelled one).
	ErrInvalidState = errors.New("invalid state")
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Active reports whether the booking still occupies its time range for
// conflict purposes.
func (s BookingStatus) Active() bool {
	return s != BookingStatusCancelled
}

// Booking is a committed reservation of a trainer's time. Bookings are never
// physically deleted, only transitioned to cancelled.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID                 uuid.UUID     `bun:"id,pk,type:uuid"`
	TrainerID          string        `bun:"trainer_id,notnull"`
	ClientID           string        `bun:"client_id,notnull"`
	ServiceID          uuid.UUID     `bun:"service_id,notnull,type:uuid"`
	Title              string        `bun:"title,notnull"`
	Description        string        `bun:"description"`
	StartTime          time.Time     `bun:"start_time,notnull"`
	EndTime            time.Time     `bun:"end_time,notnull"`
	Status             BookingStatus `bun:"status,notnull"`
	CancellationReason string        `bun:"cancellation_reason"`
	CancellationDate   *time.Time    `bun:"cancellation_date"`
	CreatedAt          time.Time     `bun:"created_at,notnull"`
	UpdatedAt          time.Time     `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
