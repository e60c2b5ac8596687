package domain

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type EventKind string

const (
	EventKindPersonal EventKind = "personal"
	EventKindTraining EventKind = "training"
	EventKindGroup    EventKind = "group"
)

// CalendarItem is the single persisted calendar collection. The kind
// discriminant replaces the older scheme of probing an events table and
// falling back to appointments on not-found.
type CalendarItem struct {
	bun.BaseModel `bun:"table:calendar_items"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	OwnerID     string    `bun:"owner_id,notnull"`
	ClientID    string    `bun:"client_id"`
	Title       string    `bun:"title,notnull"`
	Description string    `bun:"description"`
	StartTime   time.Time `bun:"start_time,notnull"`
	EndTime     time.Time `bun:"end_time,notnull"`
	Kind        EventKind `bun:"kind,notnull"`
	IsRecurring bool      `bun:"is_recurring,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (i *CalendarItem) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if i.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			i.ID = id
		}
		if i.CreatedAt.IsZero() {
			i.CreatedAt = now
		}
		if i.UpdatedAt.IsZero() {
			i.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		i.UpdatedAt = now
	}
	return nil
}

type OverrideKind string

const (
	OverrideKindSkip     OverrideKind = "skip"
	OverrideKindOverride OverrideKind = "override"
)

// OccurrenceOverride is a persisted single-instance exception to a weekly
// recurring item, keyed by (item_id, occurrence_index). Earlier revisions
// kept these edits only in the client's memory, so they vanished on reload.
type OccurrenceOverride struct {
	bun.BaseModel `bun:"table:occurrence_overrides"`

	ID                  uuid.UUID    `bun:"id,pk,type:uuid"`
	ItemID              uuid.UUID    `bun:"item_id,notnull,type:uuid"`
	OccurrenceIndex     int          `bun:"occurrence_index,notnull"`
	Kind                OverrideKind `bun:"kind,notnull"`
	OverrideStart       *time.Time   `bun:"override_start"`
	OverrideEnd         *time.Time   `bun:"override_end"`
	OverrideTitle       *string      `bun:"override_title"`
	OverrideDescription *string      `bun:"override_description"`
	CreatedAt           time.Time    `bun:"created_at,notnull"`
	UpdatedAt           time.Time    `bun:"updated_at,notnull"`
}

func (o *OccurrenceOverride) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if o.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			o.ID = id
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if o.UpdatedAt.IsZero() {
			o.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		o.UpdatedAt = now
	}
	return nil
}

// WeeklyHorizon is the number of forward weekly repeats synthesized for a
// recurring item, in addition to the base occurrence.
const WeeklyHorizon = 12

const recurringIDMarker = "-recurring-"

const recurringTitleSuffix = " (recurring)"

// Occurrence is a displayable instance of a calendar item. Index 0 is the
// base record itself; higher indexes are derived weekly repeats. Occurrences
// are never persisted individually.
type Occurrence struct {
	ID          string    `json:"id"`
	BaseID      uuid.UUID `json:"base_id"`
	Index       int       `json:"occurrence_index"`
	OwnerID     string    `json:"owner_id"`
	ClientID    string    `json:"client_id,omitempty"`
	Kind        EventKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Recurring   bool      `json:"is_recurring"`
}

// OccurrenceID returns the external identity of an occurrence: the base id
// for index 0, "{base}-recurring-{index}" for derived repeats.
func OccurrenceID(baseID uuid.UUID, index int) string {
	if index <= 0 {
		return baseID.String()
	}
	return baseID.String() + recurringIDMarker + strconv.Itoa(index)
}

// ParseOccurrenceID recovers the base item id and occurrence index from an
// occurrence identity. Ids without the recurring marker refer to the base
// record (index 0).
func ParseOccurrenceID(id string) (uuid.UUID, int, error) {
	base, idxStr, found := strings.Cut(id, recurringIDMarker)
	baseID, err := uuid.Parse(base)
	if err != nil {
		return uuid.Nil, 0, NewValidationError("invalid occurrence id")
	}
	if !found {
		return baseID, 0, nil
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 1 {
		return uuid.Nil, 0, NewValidationError("invalid occurrence id")
	}
	return baseID, idx, nil
}

// ExpandWeekly materializes a calendar item into display occurrences. A
// non-recurring item yields only its base occurrence. A recurring item
// yields indexes 0..horizon, each shifted by index*7 days, with overrides
// applied: skip removes the instance, override replaces times and text.
// Expansion is deterministic: identical input yields identical ids and
// derived timestamps.
func ExpandWeekly(item CalendarItem, horizon int, overrides []OccurrenceOverride) []Occurrence {
	if !item.IsRecurring {
		return []Occurrence{occurrenceAt(item, 0)}
	}
	if horizon < 0 {
		horizon = 0
	}

	byIndex := make(map[int]OccurrenceOverride, len(overrides))
	for _, ov := range overrides {
		byIndex[ov.OccurrenceIndex] = ov
	}

	out := make([]Occurrence, 0, horizon+1)
	for i := 0; i <= horizon; i++ {
		occ := occurrenceAt(item, i)
		ov, ok := byIndex[i]
		if ok {
			if ov.Kind == OverrideKindSkip {
				continue
			}
			if ov.OverrideStart != nil {
				occ.StartTime = *ov.OverrideStart
			}
			if ov.OverrideEnd != nil {
				occ.EndTime = *ov.OverrideEnd
			}
			if ov.OverrideTitle != nil {
				occ.Title = *ov.OverrideTitle
			}
			if ov.OverrideDescription != nil {
				occ.Description = *ov.OverrideDescription
			}
		}
		out = append(out, occ)
	}
	return out
}

func occurrenceAt(item CalendarItem, index int) Occurrence {
	title := item.Title
	if index > 0 {
		title += recurringTitleSuffix
	}
	return Occurrence{
		ID:          OccurrenceID(item.ID, index),
		BaseID:      item.ID,
		Index:       index,
		OwnerID:     item.OwnerID,
		ClientID:    item.ClientID,
		Kind:        item.Kind,
		Title:       title,
		Description: item.Description,
		StartTime:   item.StartTime.AddDate(0, 0, 7*index),
		EndTime:     item.EndTime.AddDate(0, 0, 7*index),
		Recurring:   item.IsRecurring,
	}
}
