package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
)

// AvailabilityRepository reads trainer scheduling inputs. All three are
// owned by the trainer profile; this engine never writes them.
type AvailabilityRepository interface {
	WindowsFor(ctx context.Context, trainerID string) ([]domain.AvailabilityWindow, error)
	SettingsFor(ctx context.Context, trainerID string) (domain.TrainerSettings, error)
	ServiceByID(ctx context.Context, serviceID uuid.UUID) (domain.Service, error)
}
