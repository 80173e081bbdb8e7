package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type submitBookingRequest struct {
	ResourceID   string               `json:"resource_id" binding:"required"`
	StartTime    time.Time            `json:"start_time" binding:"required"`
	EndTime      time.Time            `json:"end_time" binding:"required"`
	Purpose      string               `json:"purpose"`
	Participants int                  `json:"participants"`
	Extras       domain.MeetingExtras `json:"extras"`
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

type approvalRecordResponse struct {
	NodeName     string `json:"node_name"`
	ApproverName string `json:"approver_name"`
	Decision     string `json:"decision"`
	Comment      string `json:"comment,omitempty"`
	DecidedAt    string `json:"decided_at"`
}

type bookingResponse struct {
	ID               string                   `json:"id"`
	UserID           string                   `json:"user_id"`
	ResourceID       string                   `json:"resource_id"`
	ResourceType     string                   `json:"resource_type"`
	StartTime        string                   `json:"start_time"`
	EndTime          string                   `json:"end_time"`
	Purpose          string                   `json:"purpose"`
	Participants     int                      `json:"participants"`
	Status           string                   `json:"status"`
	CurrentNodeIndex int                      `json:"current_node_index"`
	Steps            []domain.WorkflowNode    `json:"steps"`
	History          []approvalRecordResponse `json:"history"`
	Extras           domain.MeetingExtras     `json:"extras"`
	CreatedAt        string                   `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.submit)
	router.GET("/:id", h.get)
	router.GET("/", h.list)
	router.POST("/:id/approve", h.approve)
	router.POST("/:id/reject", h.reject)
	router.POST("/:id/cancel", h.cancel)
	router.GET("/:id/can-act", h.canAct)
}

func (h *BookingHandler) submit(c *gin.Context) {
	var req submitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := actorFrom(c)
	created, err := h.service.SubmitBooking(c.Request.Context(), booking.SubmitBookingInput{
		ResourceID:   req.ResourceID,
		UserID:       actor.ID,
		Purpose:      req.Purpose,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Participants: req.Participants,
		Extras:       req.Extras,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		bookings []domain.Booking
		err      error
	)
	if resourceID := c.Query("resource_id"); resourceID != "" {
		bookings, err = h.service.ListByResource(ctx, resourceID)
	} else {
		bookings, err = h.service.ListByUser(ctx, actorFrom(c).ID)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) approve(c *gin.Context) {
	b, err := h.service.Approve(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) reject(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Reject(c.Request.Context(), c.Param("id"), actorFrom(c), req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) canAct(c *gin.Context) {
	ok, err := h.service.CanAct(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"can_act": ok})
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	history := make([]approvalRecordResponse, 0, len(b.History))
	for _, rec := range b.History {
		history = append(history, approvalRecordResponse{
			NodeName:     rec.NodeName,
			ApproverName: rec.ApproverName,
			Decision:     string(rec.Decision),
			Comment:      rec.Comment,
			DecidedAt:    rec.DecidedAt.Format(time.RFC3339),
		})
	}
	return bookingResponse{
		ID:               b.ID,
		UserID:           b.UserID,
		ResourceID:       b.ResourceID,
		ResourceType:     string(b.ResourceType),
		StartTime:        b.StartTime.Format(time.RFC3339),
		EndTime:          b.EndTime.Format(time.RFC3339),
		Purpose:          b.Purpose,
		Participants:     b.Participants,
		Status:           string(b.Status),
		CurrentNodeIndex: b.CurrentNodeIndex,
		Steps:            b.Steps,
		History:          history,
		Extras:           b.Extras,
		CreatedAt:        b.CreatedAt.Format(time.RFC3339),
	}
}
