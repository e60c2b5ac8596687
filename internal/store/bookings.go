package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	GetByID(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	Update(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	ListForTrainer(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}
