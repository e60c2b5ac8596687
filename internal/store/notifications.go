package store

import (
	"context"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
)

// NotificationRepository is consumed best-effort: booking operations log and
// continue when a notification write or cleanup fails.
type NotificationRepository interface {
	Insert(ctx context.Context, notification domain.Notification) error
	DeleteByReference(ctx context.Context, referenceID string) error
}
