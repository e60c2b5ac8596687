package calendar

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

// Service expands stored calendar items into display occurrences and routes
// occurrence edits/deletes either to the base record (whole series, or
// occurrence 0, which is the series source of truth) or to a persisted
// override keyed by (item, index).
type Service struct {
	calendar store.CalendarRepository
	log      *slog.Logger
}

func NewService(calendar store.CalendarRepository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		calendar: calendar,
		log:      log.With(slog.String("component", "service.calendar")),
	}
}

type CreateItemInput struct {
	OwnerID     string
	ClientID    string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Kind        domain.EventKind
	IsRecurring bool
}

func (s *Service) CreateItem(ctx context.Context, in CreateItemInput) (domain.CalendarItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.CalendarItem{}, domain.NewValidationError("title is required")
	}
	if in.OwnerID == "" {
		return domain.CalendarItem{}, domain.NewValidationError("owner_id is required")
	}
	if !in.EndTime.After(in.StartTime) {
		return domain.CalendarItem{}, domain.NewValidationError("end_time must be after start_time")
	}
	switch in.Kind {
	case domain.EventKindPersonal, domain.EventKindTraining, domain.EventKindGroup:
	default:
		return domain.CalendarItem{}, domain.NewValidationError("invalid event kind")
	}

	return s.calendar.CreateItem(ctx, domain.CalendarItem{
		OwnerID:     in.OwnerID,
		ClientID:    in.ClientID,
		Title:       title,
		Description: in.Description,
		StartTime:   in.StartTime.UTC(),
		EndTime:     in.EndTime.UTC(),
		Kind:        in.Kind,
		IsRecurring: in.IsRecurring,
	})
}

// Occurrences expands every stored item into instances overlapping the
// window, with persisted overrides applied, sorted by start time.
func (s *Service) Occurrences(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.Occurrence, error) {
	if ownerID == "" {
		return nil, domain.NewValidationError("owner_id is required")
	}
	if !windowEnd.After(windowStart) {
		return nil, domain.NewValidationError("window_end must be after window_start")
	}

	items, err := s.calendar.ListItems(ctx, ownerID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Occurrence, 0, len(items))
	for _, item := range items {
		var overrides []domain.OccurrenceOverride
		if item.IsRecurring {
			overrides, err = s.calendar.ListOverrides(ctx, item.ID)
			if err != nil {
				return nil, err
			}
		}

		for _, occ := range domain.ExpandWeekly(item, domain.WeeklyHorizon, overrides) {
			if occ.StartTime.Before(windowEnd) && occ.EndTime.After(windowStart) {
				out = append(out, occ)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

type OccurrenceChanges struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

// UpdateOccurrence edits one occurrence or the whole series. Targeting the
// base occurrence (index 0) always writes the base record, since it is the
// source of truth for the series. Single-instance edits of derived repeats
// are stored as override records and therefore survive a reload.
func (s *Service) UpdateOccurrence(ctx context.Context, ownerID, occurrenceID string, changes OccurrenceChanges, wholeSeries bool) error {
	if ownerID == "" {
		return domain.NewValidationError("owner_id is required")
	}
	baseID, index, err := domain.ParseOccurrenceID(occurrenceID)
	if err != nil {
		return err
	}

	item, err := s.calendar.GetItem(ctx, ownerID, baseID)
	if err != nil {
		return err
	}

	if wholeSeries || index == 0 {
		if changes.Title != nil {
			item.Title = strings.TrimSpace(*changes.Title)
		}
		if changes.Description != nil {
			item.Description = *changes.Description
		}
		if changes.StartTime != nil {
			item.StartTime = changes.StartTime.UTC()
		}
		if changes.EndTime != nil {
			item.EndTime = changes.EndTime.UTC()
		}
		if !item.EndTime.After(item.StartTime) {
			return domain.NewValidationError("end_time must be after start_time")
		}
		_, err = s.calendar.UpdateItem(ctx, item)
		return err
	}

	if !item.IsRecurring {
		return domain.NewValidationError("not a recurring event")
	}
	if changes.StartTime != nil && changes.EndTime != nil && !changes.EndTime.After(*changes.StartTime) {
		return domain.NewValidationError("end_time must be after start_time")
	}

	_, err = s.calendar.UpsertOverride(ctx, domain.OccurrenceOverride{
		ItemID:              baseID,
		OccurrenceIndex:     index,
		Kind:                domain.OverrideKindOverride,
		OverrideStart:       utcOrNil(changes.StartTime),
		OverrideEnd:         utcOrNil(changes.EndTime),
		OverrideTitle:       changes.Title,
		OverrideDescription: changes.Description,
	})
	return err
}

// DeleteOccurrence removes one occurrence or the whole series. Whole-series
// deletes (and deletes of occurrence 0) remove the base record and every
// override; single-instance deletes of derived repeats persist a skip
// override.
func (s *Service) DeleteOccurrence(ctx context.Context, ownerID, occurrenceID string, wholeSeries bool) error {
	if ownerID == "" {
		return domain.NewValidationError("owner_id is required")
	}
	baseID, index, err := domain.ParseOccurrenceID(occurrenceID)
	if err != nil {
		return err
	}

	if wholeSeries || index == 0 {
		return s.calendar.DeleteItem(ctx, ownerID, baseID)
	}

	item, err := s.calendar.GetItem(ctx, ownerID, baseID)
	if err != nil {
		return err
	}
	if !item.IsRecurring {
		return domain.NewValidationError("not a recurring event")
	}

	_, err = s.calendar.UpsertOverride(ctx, domain.OccurrenceOverride{
		ItemID:          baseID,
		OccurrenceIndex: index,
		Kind:            domain.OverrideKindSkip,
	})
	return err
}

func utcOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
