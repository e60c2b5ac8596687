package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/service/booking"
	"github.com/david112511/Mestermunka-sub000/internal/service/calendar"
	"github.com/david112511/Mestermunka-sub000/internal/service/scheduling"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

const testSecret = "test-secret"

type fakeSchedulingService struct {
	availableDatesFn func(ctx context.Context, trainerID string, from time.Time, horizonDays int) ([]time.Time, error)
	availableSlotsFn func(ctx context.Context, trainerID string, serviceID uuid.UUID, date time.Time) ([]domain.TimeSlot, error)
}

func (f *fakeSchedulingService) AvailableDates(ctx context.Context, trainerID string, from time.Time, horizonDays int) ([]time.Time, error) {
	if f.availableDatesFn == nil {
		panic("AvailableDates not configured")
	}
	return f.availableDatesFn(ctx, trainerID, from, horizonDays)
}

func (f *fakeSchedulingService) AvailableSlots(ctx context.Context, trainerID string, serviceID uuid.UUID, date time.Time) ([]domain.TimeSlot, error) {
	if f.availableSlotsFn == nil {
		panic("AvailableSlots not configured")
	}
	return f.availableSlotsFn(ctx, trainerID, serviceID, date)
}

type fakeBookingService struct {
	createFn  func(ctx context.Context, in booking.CreateInput) (domain.Booking, error)
	confirmFn func(ctx context.Context, callerID string, bookingID uuid.UUID) (domain.Booking, error)
	cancelFn  func(ctx context.Context, callerID string, bookingID uuid.UUID, reason string) (domain.Booking, error)
	listFn    func(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}

func (f *fakeBookingService) Create(ctx context.Context, in booking.CreateInput) (domain.Booking, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeBookingService) Confirm(ctx context.Context, callerID string, bookingID uuid.UUID) (domain.Booking, error) {
	if f.confirmFn == nil {
		panic("Confirm not configured")
	}
	return f.confirmFn(ctx, callerID, bookingID)
}

func (f *fakeBookingService) Cancel(ctx context.Context, callerID string, bookingID uuid.UUID, reason string) (domain.Booking, error) {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, callerID, bookingID, reason)
}

func (f *fakeBookingService) ListForTrainer(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	if f.listFn == nil {
		panic("ListForTrainer not configured")
	}
	return f.listFn(ctx, trainerID, windowStart, windowEnd)
}

type fakeCalendarService struct {
	createItemFn func(ctx context.Context, in calendar.CreateItemInput) (domain.CalendarItem, error)
	occurrences  func(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.Occurrence, error)
	updateFn     func(ctx context.Context, ownerID, occurrenceID string, changes calendar.OccurrenceChanges, wholeSeries bool) error
	deleteFn     func(ctx context.Context, ownerID, occurrenceID string, wholeSeries bool) error
}

func (f *fakeCalendarService) CreateItem(ctx context.Context, in calendar.CreateItemInput) (domain.CalendarItem, error) {
	if f.createItemFn == nil {
		panic("CreateItem not configured")
	}
	return f.createItemFn(ctx, in)
}

func (f *fakeCalendarService) Occurrences(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.Occurrence, error) {
	if f.occurrences == nil {
		panic("Occurrences not configured")
	}
	return f.occurrences(ctx, ownerID, windowStart, windowEnd)
}

func (f *fakeCalendarService) UpdateOccurrence(ctx context.Context, ownerID, occurrenceID string, changes calendar.OccurrenceChanges, wholeSeries bool) error {
	if f.updateFn == nil {
		panic("UpdateOccurrence not configured")
	}
	return f.updateFn(ctx, ownerID, occurrenceID, changes, wholeSeries)
}

func (f *fakeCalendarService) DeleteOccurrence(ctx context.Context, ownerID, occurrenceID string, wholeSeries bool) error {
	if f.deleteFn == nil {
		panic("DeleteOccurrence not configured")
	}
	return f.deleteFn(ctx, ownerID, occurrenceID, wholeSeries)
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, h *Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(h, testSecret, time.Second)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newHandler(s schedulingService, b bookingService, c calendarService) *Handler {
	if s == nil {
		s = &fakeSchedulingService{}
	}
	if b == nil {
		b = &fakeBookingService{}
	}
	if c == nil {
		c = &fakeCalendarService{}
	}
	return NewHandler(s, b, c, slog.Default())
}

func TestAuth_RejectsMissingAndMalformedTokens(t *testing.T) {
	h := newHandler(nil, nil, nil)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, "/calendar?window_start=2026-01-01T00:00:00Z&window_end=2026-02-01T00:00:00Z", tt.token, "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestAuth_SubjectBecomesCaller(t *testing.T) {
	var gotOwner string
	h := newHandler(nil, nil, &fakeCalendarService{
		occurrences: func(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.Occurrence, error) {
			gotOwner = ownerID
			return nil, nil
		},
	})

	rec := doRequest(t, h, http.MethodGet, "/calendar?window_start=2026-01-01T00:00:00Z&window_end=2026-02-01T00:00:00Z", signToken(t, "user-42"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if gotOwner != "user-42" {
		t.Fatalf("owner = %q, want %q", gotOwner, "user-42")
	}
}

func TestConfirmBooking_ErrorMapping(t *testing.T) {
	bookingID := uuid.MustParse("00000000-0000-0000-0000-000000000010")

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: domain.NewValidationError("bad"), wantStatus: http.StatusBadRequest},
		{name: "forbidden", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "not found", err: store.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "invalid state", err: domain.ErrInvalidState, wantStatus: http.StatusConflict},
		{name: "conflict", err: store.ErrConflict, wantStatus: http.StatusConflict},
		{name: "internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(nil, &fakeBookingService{
				confirmFn: func(ctx context.Context, callerID string, id uuid.UUID) (domain.Booking, error) {
					return domain.Booking{}, tt.err
				},
			}, nil)

			rec := doRequest(t, h, http.MethodPost, "/bookings/"+bookingID.String()+"/confirm", signToken(t, "trainer-1"), "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCreateBooking_PassesIdempotencyKeyAndCaller(t *testing.T) {
	var got booking.CreateInput
	h := newHandler(nil, &fakeBookingService{
		createFn: func(ctx context.Context, in booking.CreateInput) (domain.Booking, error) {
			got = in
			return domain.Booking{
				ID:        uuid.MustParse("00000000-0000-0000-0000-000000000011"),
				TrainerID: in.TrainerID,
				ClientID:  in.CallerID,
				Status:    domain.BookingStatusPending,
			}, nil
		},
	}, nil)

	body := `{
		"trainer_id": "trainer-1",
		"service_id": "00000000-0000-0000-0000-000000000050",
		"start_time": "2026-01-05T09:00:00Z",
		"client_name": "Alice"
	}`
	router := NewRouter(h, testSecret, time.Second)
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signToken(t, "client-1"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if got.IdempotencyKey != "k1" {
		t.Fatalf("idempotency_key = %q, want %q", got.IdempotencyKey, "k1")
	}
	if got.CallerID != "client-1" {
		t.Fatalf("caller_id = %q, want %q", got.CallerID, "client-1")
	}
}

func TestAvailableDates_NoAvailabilityIsEmptyOK(t *testing.T) {
	h := newHandler(&fakeSchedulingService{
		availableDatesFn: func(ctx context.Context, trainerID string, from time.Time, horizonDays int) ([]time.Time, error) {
			return nil, scheduling.ErrNoAvailability
		},
	}, nil, nil)

	rec := doRequest(t, h, http.MethodGet, "/trainers/trainer-1/available-dates", signToken(t, "client-1"), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp struct {
		Dates   []string `json:"dates"`
		Message string   `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Dates) != 0 {
		t.Fatalf("dates = %v, want empty", resp.Dates)
	}
	if resp.Message == "" {
		t.Fatalf("expected informational message")
	}
}

func TestCreateCalendarItem_ResponseUsesSnakeCase(t *testing.T) {
	start := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	h := newHandler(nil, nil, &fakeCalendarService{
		createItemFn: func(ctx context.Context, in calendar.CreateItemInput) (domain.CalendarItem, error) {
			return domain.CalendarItem{
				ID:          uuid.MustParse("00000000-0000-0000-0000-000000000030"),
				OwnerID:     in.OwnerID,
				Title:       in.Title,
				StartTime:   in.StartTime,
				EndTime:     in.EndTime,
				Kind:        in.Kind,
				IsRecurring: in.IsRecurring,
			}, nil
		},
	})

	body := `{
		"title": "Gym session",
		"start_time": "2026-01-05T09:00:00Z",
		"end_time": "2026-01-05T10:00:00Z",
		"kind": "personal",
		"is_recurring": true
	}`
	rec := doRequest(t, h, http.MethodPost, "/calendar", signToken(t, "trainer-1"), body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "owner_id", "start_time", "end_time", "kind", "is_recurring"} {
		if _, ok := resp[key]; !ok {
			t.Fatalf("response missing %q key: %s", key, rec.Body.String())
		}
	}
	if resp["owner_id"] != "trainer-1" {
		t.Fatalf("owner_id = %v, want trainer-1", resp["owner_id"])
	}
	if got, ok := resp["start_time"].(string); !ok || got != start.Format(time.RFC3339) {
		t.Fatalf("start_time = %v, want %s", resp["start_time"], start.Format(time.RFC3339))
	}
}

func TestDeleteOccurrence_WholeSeriesFlag(t *testing.T) {
	var gotWhole bool
	var gotID string
	h := newHandler(nil, nil, &fakeCalendarService{
		deleteFn: func(ctx context.Context, ownerID, occurrenceID string, wholeSeries bool) error {
			gotWhole = wholeSeries
			gotID = occurrenceID
			return nil
		},
	})

	occID := "00000000-0000-0000-0000-000000000020-recurring-3"
	rec := doRequest(t, h, http.MethodDelete, "/calendar/occurrences/"+occID+"?whole_series=true", signToken(t, "trainer-1"), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusNoContent, rec.Body.String())
	}
	if !gotWhole {
		t.Fatalf("whole_series not propagated")
	}
	if gotID != occID {
		t.Fatalf("occurrence id = %q, want %q", gotID, occID)
	}
}
