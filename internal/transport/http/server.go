package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the authenticated API surface. Every route runs behind the
// JWT middleware and a per-request timeout.
func NewRouter(h *Handler, jwtSecret string, requestTimeout time.Duration) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestTimeoutMiddleware(requestTimeout))

	api := r.Group("/", AuthMiddleware(jwtSecret))
	{
		api.GET("/trainers/:id/available-dates", h.AvailableDates)
		api.GET("/trainers/:id/services/:service_id/slots", h.AvailableSlots)
		api.GET("/trainers/:id/bookings", h.ListBookings)

		api.POST("/bookings", h.CreateBooking)
		api.POST("/bookings/:id/confirm", h.ConfirmBooking)
		api.POST("/bookings/:id/cancel", h.CancelBooking)

		api.POST("/calendar", h.CreateCalendarItem)
		api.GET("/calendar", h.ListOccurrences)
		api.PUT("/calendar/occurrences/:id", h.UpdateOccurrence)
		api.DELETE("/calendar/occurrences/:id", h.DeleteOccurrence)
	}

	return r
}

func requestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
