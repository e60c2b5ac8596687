package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/david112511/Mestermunka-sub000/internal/domain"
	"github.com/david112511/Mestermunka-sub000/internal/service/booking"
	"github.com/david112511/Mestermunka-sub000/internal/service/calendar"
	"github.com/david112511/Mestermunka-sub000/internal/service/scheduling"
	"github.com/david112511/Mestermunka-sub000/internal/store"
)

type schedulingService interface {
	AvailableDates(ctx context.Context, trainerID string, from time.Time, horizonDays int) ([]time.Time, error)
	AvailableSlots(ctx context.Context, trainerID string, serviceID uuid.UUID, date time.Time) ([]domain.TimeSlot, error)
}

type bookingService interface {
	Create(ctx context.Context, in booking.CreateInput) (domain.Booking, error)
	Confirm(ctx context.Context, callerID string, bookingID uuid.UUID) (domain.Booking, error)
	Cancel(ctx context.Context, callerID string, bookingID uuid.UUID, reason string) (domain.Booking, error)
	ListForTrainer(ctx context.Context, trainerID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}

type calendarService interface {
	CreateItem(ctx context.Context, in calendar.CreateItemInput) (domain.CalendarItem, error)
	Occurrences(ctx context.Context, ownerID string, windowStart, windowEnd time.Time) ([]domain.Occurrence, error)
	UpdateOccurrence(ctx context.Context, ownerID, occurrenceID string, changes calendar.OccurrenceChanges, wholeSeries bool) error
	DeleteOccurrence(ctx context.Context, ownerID, occurrenceID string, wholeSeries bool) error
}

type Handler struct {
	scheduling schedulingService
	bookings   bookingService
	calendar   calendarService
	log        *slog.Logger
}

func NewHandler(scheduling schedulingService, bookings bookingService, calendar calendarService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		scheduling: scheduling,
		bookings:   bookings,
		calendar:   calendar,
		log:        log.With(slog.String("component", "http")),
	}
}

func (h *Handler) AvailableDates(c *gin.Context) {
	log := h.log.With(slog.String("route", "AvailableDates"))
	trainerID := c.Param("id")

	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return
		}
		from = parsed
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = parsed
	}

	dates, err := h.scheduling.AvailableDates(c.Request.Context(), trainerID, from, days)
	if err != nil {
		if errors.Is(err, scheduling.ErrNoAvailability) {
			log.Info("no availability", slog.String("trainer_id", trainerID))
			c.JSON(http.StatusOK, gin.H{"dates": []string{}, "message": "trainer has not published availability"})
			return
		}
		h.writeError(c, log, err, slog.String("trainer_id", trainerID))
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}

	log.Debug("dates listed", slog.String("trainer_id", trainerID), slog.Int("count", len(out)))
	c.JSON(http.StatusOK, gin.H{"dates": out})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	log := h.log.With(slog.String("route", "AvailableSlots"))
	trainerID := c.Param("id")

	serviceID, err := uuid.Parse(c.Param("service_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "service_id must be a UUID"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slots, err := h.scheduling.AvailableSlots(c.Request.Context(), trainerID, serviceID, date)
	if err != nil {
		h.writeError(c, log, err, slog.String("trainer_id", trainerID), slog.String("service_id", serviceID.String()))
		return
	}

	log.Debug("slots listed",
		slog.String("trainer_id", trainerID),
		slog.String("service_id", serviceID.String()),
		slog.Int("count", len(slots)),
	)
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

type createBookingRequest struct {
	TrainerID   string    `json:"trainer_id" binding:"required"`
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	ClientName  string    `json:"client_name" binding:"required"`
	ClientEmail string    `json:"client_email"`
	Note        string    `json:"note"`
}

func (h *Handler) CreateBooking(c *gin.Context) {
	log := h.log.With(slog.String("route", "CreateBooking"))

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), booking.CreateInput{
		CallerID:       callerID(c),
		TrainerID:      req.TrainerID,
		ServiceID:      req.ServiceID,
		StartTime:      req.StartTime,
		ClientName:     req.ClientName,
		ClientEmail:    req.ClientEmail,
		Note:           req.Note,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.writeError(c, log, err, slog.String("trainer_id", req.TrainerID))
		return
	}

	log.Info("booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("trainer_id", b.TrainerID),
		slog.String("status", string(b.Status)),
		slog.Time("start_time", b.StartTime),
	)
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	log := h.log.With(slog.String("route", "ConfirmBooking"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return
	}

	b, err := h.bookings.Confirm(c.Request.Context(), callerID(c), id)
	if err != nil {
		h.writeError(c, log, err, slog.String("booking_id", id.String()))
		return
	}

	log.Info("booking confirmed", slog.String("booking_id", b.ID.String()))
	c.JSON(http.StatusOK, toBookingResponse(b))
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) CancelBooking(c *gin.Context) {
	log := h.log.With(slog.String("route", "CancelBooking"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return
	}

	var req cancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	b, err := h.bookings.Cancel(c.Request.Context(), callerID(c), id, req.Reason)
	if err != nil {
		h.writeError(c, log, err, slog.String("booking_id", id.String()))
		return
	}

	log.Info("booking cancelled", slog.String("booking_id", b.ID.String()))
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *Handler) ListBookings(c *gin.Context) {
	log := h.log.With(slog.String("route", "ListBookings"))
	trainerID := c.Param("id")

	windowStart, windowEnd, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.bookings.ListForTrainer(c.Request.Context(), trainerID, windowStart, windowEnd)
	if err != nil {
		h.writeError(c, log, err, slog.String("trainer_id", trainerID))
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}

	log.Debug("bookings listed", slog.String("trainer_id", trainerID), slog.Int("count", len(out)))
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

type createCalendarItemRequest struct {
	ClientID    string    `json:"client_id"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Kind        string    `json:"kind" binding:"required"`
	IsRecurring bool      `json:"is_recurring"`
}

func (h *Handler) CreateCalendarItem(c *gin.Context) {
	log := h.log.With(slog.String("route", "CreateCalendarItem"))

	var req createCalendarItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.calendar.CreateItem(c.Request.Context(), calendar.CreateItemInput{
		OwnerID:     callerID(c),
		ClientID:    req.ClientID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Kind:        domain.EventKind(req.Kind),
		IsRecurring: req.IsRecurring,
	})
	if err != nil {
		h.writeError(c, log, err)
		return
	}

	log.Info("calendar item created",
		slog.String("item_id", item.ID.String()),
		slog.String("kind", string(item.Kind)),
		slog.Bool("is_recurring", item.IsRecurring),
	)
	c.JSON(http.StatusCreated, toCalendarItemResponse(item))
}

func (h *Handler) ListOccurrences(c *gin.Context) {
	log := h.log.With(slog.String("route", "ListOccurrences"))

	windowStart, windowEnd, err := parseWindow(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occs, err := h.calendar.Occurrences(c.Request.Context(), callerID(c), windowStart, windowEnd)
	if err != nil {
		h.writeError(c, log, err)
		return
	}

	log.Debug("occurrences listed", slog.Int("count", len(occs)))
	c.JSON(http.StatusOK, gin.H{"occurrences": occs})
}

type updateOccurrenceRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (h *Handler) UpdateOccurrence(c *gin.Context) {
	log := h.log.With(slog.String("route", "UpdateOccurrence"))
	occurrenceID := c.Param("id")

	var req updateOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.calendar.UpdateOccurrence(c.Request.Context(), callerID(c), occurrenceID, calendar.OccurrenceChanges{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}, wholeSeries(c))
	if err != nil {
		h.writeError(c, log, err, slog.String("occurrence_id", occurrenceID))
		return
	}

	log.Info("occurrence updated", slog.String("occurrence_id", occurrenceID))
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteOccurrence(c *gin.Context) {
	log := h.log.With(slog.String("route", "DeleteOccurrence"))
	occurrenceID := c.Param("id")

	err := h.calendar.DeleteOccurrence(c.Request.Context(), callerID(c), occurrenceID, wholeSeries(c))
	if err != nil {
		h.writeError(c, log, err, slog.String("occurrence_id", occurrenceID))
		return
	}

	log.Info("occurrence deleted", slog.String("occurrence_id", occurrenceID), slog.Bool("whole_series", wholeSeries(c)))
	c.Status(http.StatusNoContent)
}

// writeError maps service errors to HTTP statuses and logs each outcome at a
// severity matching who caused it.
func (h *Handler) writeError(c *gin.Context, log *slog.Logger, err error, args ...any) {
	logArgs := append([]any{slog.Any("err", err)}, args...)

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", logArgs...)
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, domain.ErrForbidden):
		log.Warn("forbidden", logArgs...)
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not allowed to modify this booking"})
	case errors.Is(err, store.ErrNotFound):
		log.Info("not found", logArgs...)
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidState):
		log.Info("invalid state", logArgs...)
		c.JSON(http.StatusConflict, gin.H{"error": "the booking is not in a state that allows this action"})
	case errors.Is(err, store.ErrConflict):
		log.Info("time conflict", logArgs...)
		c.JSON(http.StatusConflict, gin.H{"error": "the trainer already has a booking during that time, pick a different slot"})
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info("idempotency conflict", logArgs...)
		c.JSON(http.StatusConflict, gin.H{"error": "this request key was already used for a different booking"})
	default:
		log.Error("request failed", logArgs...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseWindow(c *gin.Context) (time.Time, time.Time, error) {
	windowStart, err := time.Parse(time.RFC3339, c.Query("window_start"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("window_start must be RFC 3339")
	}
	windowEnd, err := time.Parse(time.RFC3339, c.Query("window_end"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("window_end must be RFC 3339")
	}
	return windowStart, windowEnd, nil
}

func wholeSeries(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("whole_series"))
	return v
}

type calendarItemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	ClientID    string    `json:"client_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Kind        string    `json:"kind"`
	IsRecurring bool      `json:"is_recurring"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCalendarItemResponse(item domain.CalendarItem) calendarItemResponse {
	return calendarItemResponse{
		ID:          item.ID.String(),
		OwnerID:     item.OwnerID,
		ClientID:    item.ClientID,
		Title:       item.Title,
		Description: item.Description,
		StartTime:   item.StartTime,
		EndTime:     item.EndTime,
		Kind:        string(item.Kind),
		IsRecurring: item.IsRecurring,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

type bookingResponse struct {
	ID                 string     `json:"id"`
	TrainerID          string     `json:"trainer_id"`
	ClientID           string     `json:"client_id"`
	ServiceID          string     `json:"service_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	Status             string     `json:"status"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancellationDate   *time.Time `json:"cancellation_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:                 b.ID.String(),
		TrainerID:          b.TrainerID,
		ClientID:           b.ClientID,
		ServiceID:          b.ServiceID.String(),
		Title:              b.Title,
		Description:        b.Description,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             string(b.Status),
		CancellationReason: b.CancellationReason,
		CancellationDate:   b.CancellationDate,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}
