package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
)

type CalendarRepository interface {
	CreateItem(ctx context.Context, item domain.CalendarItem) (domain.CalendarItem, error)
	GetItem(ctx context.Context, ownerID string, itemID uuid.UUID) (domain.CalendarItem, error)
	ListItems(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.CalendarItem, error)
	UpdateItem(ctx context.Context, item domain.CalendarItem) (domain.CalendarItem, error)
	DeleteItem(ctx context.Context, ownerID string, itemID uuid.UUID) error

	ListOverrides(ctx context.Context, itemID uuid.UUID) ([]domain.OccurrenceOverride, error)
	UpsertOverride(ctx context.Context, override domain.OccurrenceOverride) (domain.OccurrenceOverride, error)
}
