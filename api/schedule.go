package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/service/booking"
)

// SlotSuggester finds the next admissible window on a resource.
type SlotSuggester interface {
	Suggest(ctx context.Context, resourceID string, duration time.Duration, from time.Time) (*domain.TimeRange, error)
}

// ScheduleHandler serves the pre-submit conveniences: conflict preview and
// alternative-slot suggestion. Both run on the same overlap semantics as
// admission itself.
type ScheduleHandler struct {
	bookings  booking.BookingUseCase
	suggester SlotSuggester
}

func NewScheduleHandler(bookings booking.BookingUseCase, suggester SlotSuggester) *ScheduleHandler {
	return &ScheduleHandler{bookings: bookings, suggester: suggester}
}

func (h *ScheduleHandler) Register(router *gin.RouterGroup) {
	router.GET("/conflict", h.conflict)
	router.GET("/suggest", h.suggest)
}

func (h *ScheduleHandler) conflict(c *gin.Context) {
	resourceID := c.Query("resource_id")
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be RFC3339"})
		return
	}

	candidate := domain.TimeRange{Start: start, End: end}
	if !candidate.Valid() {
		writeError(c, domain.ErrInvalidTimeRange)
		return
	}

	conflict, err := h.bookings.FindConflict(c.Request.Context(), resourceID, candidate)
	if err != nil {
		writeError(c, err)
		return
	}
	if conflict == nil {
		c.JSON(http.StatusOK, gin.H{"conflict": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conflict":               true,
		"conflicting_booking_id": conflict.ID,
		"occupied_by":            conflict.UserID,
		"start_time":             conflict.StartTime.Format(time.RFC3339),
		"end_time":               conflict.EndTime.Format(time.RFC3339),
	})
}

func (h *ScheduleHandler) suggest(c *gin.Context) {
	resourceID := c.Query("resource_id")

	minutes, err := strconv.Atoi(c.DefaultQuery("duration_minutes", "60"))
	if err != nil || minutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration_minutes must be a positive integer"})
		return
	}

	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
	}

	slot, err := h.suggester.Suggest(c.Request.Context(), resourceID, time.Duration(minutes)*time.Minute, from)
	if err != nil {
		writeError(c, err)
		return
	}
	if slot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no free slot within the search window"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"start_time": slot.Start.Format(time.RFC3339),
		"end_time":   slot.End.Format(time.RFC3339),
	})
}
