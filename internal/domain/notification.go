package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationType string

const (
	NotificationTypeAppointment NotificationType = "appointment"
	NotificationTypeMessage     NotificationType = "message"
	NotificationTypeSystem      NotificationType = "system"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID            uuid.UUID        `bun:"id,pk,type:uuid"`
	UserID        string           `bun:"user_id,notnull"`
	Type          NotificationType `bun:"type,notnull"`
	Content       string           `bun:"content,notnull"`
	ReferenceID   string           `bun:"reference_id"`
	ReferenceType string           `bun:"reference_type"`
	SenderID      string           `bun:"sender_id"`
	IsRead        bool             `bun:"is_read,notnull"`
	CreatedAt     time.Time        `bun:"created_at,notnull"`
}

func (n *Notification) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if n.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			n.ID = id
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}
