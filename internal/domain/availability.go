package domain

import "github.com/uptrace/bun"

type ConfirmationMode string

const (
	ConfirmationModeManual ConfirmationMode = "manual"
	ConfirmationModeAuto   ConfirmationMode = "auto"
)

// AvailabilityWindow is a recurring weekly time range during which a trainer
// accepts bookings. Times are minutes from local midnight; DayOfWeek follows
// time.Weekday (0 = Sunday). Owned by the trainer profile, read-only here.
type AvailabilityWindow struct {
	bun.BaseModel `bun:"table:trainer_availability"`

	ID          int64  `bun:"id,pk,autoincrement"`
	TrainerID   string `bun:"trainer_id,notnull"`
	DayOfWeek   int    `bun:"day_of_week,notnull"`
	StartMinute int    `bun:"start_minute,notnull"`
	EndMinute   int    `bun:"end_minute,notnull"`
}

type TrainerSettings struct {
	bun.BaseModel `bun:"table:trainer_settings"`

	TrainerID        string           `bun:"trainer_id,pk"`
	MinDuration      int              `bun:"min_duration,notnull"`
	MaxDuration      int              `bun:"max_duration,notnull"`
	TimeStep         int              `bun:"time_step,notnull"`
	ConfirmationMode ConfirmationMode `bun:"confirmation_mode,notnull"`
}

// DefaultTrainerSettings is used when a trainer has never saved settings.
// Absence of a row is not an error condition.
func DefaultTrainerSettings(trainerID string) TrainerSettings {
	return TrainerSettings{
		TrainerID:        trainerID,
		MinDuration:      30,
		MaxDuration:      120,
		TimeStep:         15,
		ConfirmationMode: ConfirmationModeManual,
	}
}
