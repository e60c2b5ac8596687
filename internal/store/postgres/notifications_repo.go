package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
)

type NotificationRepo struct {
	db *bun.DB
}

func NewNotificationRepo(db *bun.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Insert(ctx context.Context, notification domain.Notification) error {
	m := notification
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	return err
}

// DeleteByReference removes every notification created for the referenced
// record. Deleting zero rows is not an error.
func (r *NotificationRepo) DeleteByReference(ctx context.Context, referenceID string) error {
	_, err := r.db.NewDelete().
		Model((*domain.Notification)(nil)).
		Where("reference_id = ?", referenceID).
		Exec(ctx)
	return err
}
