package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/service/booking"
)

// writeError maps the service error taxonomy onto HTTP statuses. Everything
// in the taxonomy is a caller-recoverable condition, not a server fault.
func writeError(c *gin.Context, err error) {
	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":                  conflict.Error(),
			"conflicting_booking_id": conflict.BookingID,
			"occupied_by":            conflict.UserID,
		})
	case errors.Is(err, domain.ErrResourceNotFound), errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTimeRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrAdmissionInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
