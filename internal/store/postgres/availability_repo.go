package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) WindowsFor(ctx context.Context, trainerID string) ([]domain.AvailabilityWindow, error) {
	var rows []domain.AvailabilityWindow
	err := r.db.NewSelect().
		Model(&rows).
		Where("trainer_id = ?", trainerID).
		OrderExpr("day_of_week ASC, start_minute ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SettingsFor synthesizes in-memory defaults when the trainer has never
// saved settings; a missing row is not an error.
func (r *AvailabilityRepo) SettingsFor(ctx context.Context, trainerID string) (domain.TrainerSettings, error) {
	var s domain.TrainerSettings
	err := r.db.NewSelect().
		Model(&s).
		Where("trainer_id = ?", trainerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultTrainerSettings(trainerID), nil
		}
		return domain.TrainerSettings{}, err
	}
	return s, nil
}

func (r *AvailabilityRepo) ServiceByID(ctx context.Context, serviceID uuid.UUID) (domain.Service, error) {
	var svc domain.Service
	err := r.db.NewSelect().
		Model(&svc).
		Where("id = ?", serviceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, store.ErrNotFound
		}
		return domain.Service{}, err
	}
	return svc, nil
}
