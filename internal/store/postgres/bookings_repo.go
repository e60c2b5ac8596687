package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts a booking under the trainer's advisory lock. The partial
// exclusion constraint bookings_no_overlap over non-cancelled rows is the
// authoritative double-booking guard; violations surface as store.ErrConflict.
func (r *BookingRepo) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockTrainerCalendar(ctx, tx, booking.TrainerID); err != nil {
			return err
		}

		m := booking
		_, err := tx.NewInsert().Model(&m).Exec(ctx)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				if pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
					return store.ErrConflict
				}
				if pgErr.Code == "23505" {
					var existing domain.Booking
					selectErr := tx.NewSelect().
						Model(&existing).
						Where("id = ?", m.ID).
						Limit(1).
						Scan(ctx)
					if selectErr != nil {
						return err
					}

					if existing.TrainerID != booking.TrainerID ||
						existing.ClientID != booking.ClientID ||
						existing.ServiceID != booking.ServiceID ||
						!existing.StartTime.Equal(booking.StartTime) ||
						!existing.EndTime.Equal(booking.EndTime) {
						return store.ErrIdempotencyConflict
					}

					out = existing
					return nil
				}
			}
			return err
		}

		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) GetByID(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("id = ?", bookingID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, err
	}
	return b, nil
}

func (r *BookingRepo) Update(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockTrainerCalendar(ctx, tx, booking.TrainerID); err != nil {
			return err
		}

		m := booking
		res, err := tx.NewUpdate().
			Model(&m).
			WherePK().
			Exec(ctx)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "bookings_no_overlap" {
				return store.ErrConflict
			}
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}

		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) ListForTrainer(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("trainer_id = ?", trainerID).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func lockTrainerCalendar(ctx context.Context, tx bun.Tx, trainerID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", trainerID).Exec(ctx)
	return err
}
