package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

type CalendarRepo struct {
	db *bun.DB
}

func NewCalendarRepo(db *bun.DB) *CalendarRepo {
	return &CalendarRepo{db: db}
}

func (r *CalendarRepo) CreateItem(ctx context.Context, item domain.CalendarItem) (domain.CalendarItem, error) {
	m := item
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.CalendarItem{}, err
	}
	return m, nil
}

func (r *CalendarRepo) GetItem(ctx context.Context, ownerID string, itemID uuid.UUID) (domain.CalendarItem, error) {
	var item domain.CalendarItem
	err := r.db.NewSelect().
		Model(&item).
		Where("id = ?", itemID).
		Where("owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CalendarItem{}, store.ErrNotFound
		}
		return domain.CalendarItem{}, err
	}
	return item, nil
}

// ListItems returns non-recurring items overlapping the window plus every
// recurring item whose base starts before the window end; weekly repeats of
// the latter may land inside the window even when the base does not.
func (r *CalendarRepo) ListItems(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.CalendarItem, error) {
	var rows []domain.CalendarItem
	err := r.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
					return q.
						Where("is_recurring").
						Where("start_time < ?", windowEnd)
				}).
				WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
					return q.
						Where("NOT is_recurring").
						Where("start_time < ?", windowEnd).
						Where("end_time > ?", windowStart)
				})
		}).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CalendarRepo) UpdateItem(ctx context.Context, item domain.CalendarItem) (domain.CalendarItem, error) {
	m := item
	res, err := r.db.NewUpdate().
		Model(&m).
		WherePK().
		Where("owner_id = ?", item.OwnerID).
		Exec(ctx)
	if err != nil {
		return domain.CalendarItem{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.CalendarItem{}, err
	}
	if affected == 0 {
		return domain.CalendarItem{}, store.ErrNotFound
	}
	return m, nil
}

// DeleteItem removes the base record and all of its occurrence overrides in
// one transaction.
func (r *CalendarRepo) DeleteItem(ctx context.Context, ownerID string, itemID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*domain.OccurrenceOverride)(nil)).
			Where("item_id = ?", itemID).
			Exec(ctx)
		if err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*domain.CalendarItem)(nil)).
			Where("id = ?", itemID).
			Where("owner_id = ?", ownerID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (r *CalendarRepo) ListOverrides(ctx context.Context, itemID uuid.UUID) ([]domain.OccurrenceOverride, error) {
	var rows []domain.OccurrenceOverride
	err := r.db.NewSelect().
		Model(&rows).
		Where("item_id = ?", itemID).
		OrderExpr("occurrence_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CalendarRepo) UpsertOverride(ctx context.Context, override domain.OccurrenceOverride) (domain.OccurrenceOverride, error) {
	m := override
	_, err := r.db.NewInsert().
		Model(&m).
		On("CONFLICT (item_id, occurrence_index) DO UPDATE").
		Set("kind = EXCLUDED.kind").
		Set("override_start = EXCLUDED.override_start").
		Set("override_end = EXCLUDED.override_end").
		Set("override_title = EXCLUDED.override_title").
		Set("override_description = EXCLUDED.override_description").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return domain.OccurrenceOverride{}, err
	}
	return m, nil
}
