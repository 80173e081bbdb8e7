package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/kafka"
	"github.com/nkiryanov/officebook/internal/repository"
)

// ErrAdmissionInProgress means another admission for the same resource holds
// the per-resource lock. Callers may resubmit.
var ErrAdmissionInProgress = errors.New("another booking request for this resource is in progress")

type BookingUseCase interface {
	SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error)
	Approve(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error)
	Reject(ctx context.Context, bookingID string, actor domain.Actor, comment string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID string) (*domain.Booking, error)
	CanAct(ctx context.Context, actor domain.Actor, bookingID string) (bool, error)
	FindConflict(ctx context.Context, resourceID string, candidate domain.TimeRange) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListByResource(ctx context.Context, resourceID string) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	CompleteEndedBookings(ctx context.Context) ([]domain.Booking, error)
}

// AdmissionLocker serializes the conflict-scan-plus-insert critical section
// per resource.
type AdmissionLocker interface {
	AcquireAdmissionLock(ctx context.Context, resourceID string, ttl time.Duration) (bool, error)
	ReleaseAdmissionLock(ctx context.Context, resourceID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	resources          repository.ResourceRepository
	workflows          repository.WorkflowRepository
	locker             AdmissionLocker
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	lockTTL            time.Duration
	now                func() time.Time
}

type SubmitBookingInput struct {
	ResourceID   string               `json:"resource_id"`
	UserID       string               `json:"user_id"`
	Purpose      string               `json:"purpose"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      time.Time            `json:"end_time"`
	Participants int                  `json:"participants"`
	Extras       domain.MeetingExtras `json:"extras"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	resources repository.ResourceRepository,
	workflows repository.WorkflowRepository,
	locker AdmissionLocker,
	producer Producer,
	eventsTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		resources:   resources,
		workflows:   workflows,
		locker:      locker,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     lockTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// SubmitBooking validates a booking request, runs conflict detection and
// creates the booking in its initial state: APPROVED when the workflow is
// empty, PENDING at step 0 otherwise. Exactly one record is created; a
// failed admission creates nothing.
func (s *BookingService) SubmitBooking(ctx context.Context, input SubmitBookingInput) (*domain.Booking, error) {
	resource, err := s.resources.GetByID(ctx, input.ResourceID)
	if err != nil {
		return nil, err
	}

	candidate := domain.TimeRange{Start: input.StartTime, End: input.EndTime}
	if !candidate.Valid() {
		return nil, domain.ErrInvalidTimeRange
	}

	if s.locker != nil {
		ok, err := s.locker.AcquireAdmissionLock(ctx, resource.ID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrAdmissionInProgress
		}
		defer func() {
			_ = s.locker.ReleaseAdmissionLock(ctx, resource.ID)
		}()
	}

	existing, err := s.bookings.ListByResource(ctx, resource.ID)
	if err != nil {
		return nil, err
	}
	if conflict := domain.FindConflict(resource.ID, candidate, existing); conflict != nil {
		return nil, &domain.ConflictError{
			BookingID: conflict.ID,
			UserID:    conflict.UserID,
			Range:     conflict.Range(),
		}
	}

	workflow, err := s.workflows.Get(ctx)
	if err != nil {
		return nil, err
	}

	status := domain.BookingStatusPending
	if workflow.Len() == 0 {
		status = domain.BookingStatusApproved
	}

	booking := &domain.Booking{
		ID:               uuid.NewString(),
		UserID:           input.UserID,
		ResourceID:       resource.ID,
		ResourceType:     resource.Type,
		StartTime:        input.StartTime,
		EndTime:          input.EndTime,
		Purpose:          input.Purpose,
		Participants:     input.Participants,
		Status:           status,
		Steps:            workflow.Nodes(),
		CurrentNodeIndex: 0,
		History:          []domain.ApprovalRecord{},
		Extras:           input.Extras,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_submitted", booking, "", "")
	return booking, nil
}

// Approve records the current step's decision. On the last step the booking
// becomes APPROVED; otherwise it stays PENDING awaiting the next step. Every
// step must be passed in order.
func (s *BookingService) Approve(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, error) {
	booking, step, err := s.loadForDecision(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}

	booking.History = append(booking.History, domain.ApprovalRecord{
		NodeName:     step.Name,
		ApproverName: actor.Name,
		Decision:     domain.DecisionApproved,
		DecidedAt:    s.now().UTC(),
	})

	eventType := "booking_step_approved"
	if booking.CurrentNodeIndex == len(booking.Steps)-1 {
		booking.Status = domain.BookingStatusApproved
		eventType = "booking_approved"
	} else {
		booking.CurrentNodeIndex++
	}

	if err := s.bookings.ApplyTransition(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, eventType, booking, actor.Name, "")
	return booking, nil
}

// Reject terminates the booking at the current step, regardless of how many
// steps remain.
func (s *BookingService) Reject(ctx context.Context, bookingID string, actor domain.Actor, comment string) (*domain.Booking, error) {
	booking, step, err := s.loadForDecision(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}

	booking.History = append(booking.History, domain.ApprovalRecord{
		NodeName:     step.Name,
		ApproverName: actor.Name,
		Decision:     domain.DecisionRejected,
		Comment:      comment,
		DecidedAt:    s.now().UTC(),
	})
	booking.Status = domain.BookingStatusRejected

	if err := s.bookings.ApplyTransition(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_rejected", booking, actor.Name, comment)
	return booking, nil
}

// Cancel vacates a PENDING or APPROVED booking. Only the requester may
// cancel their own booking.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actorID {
		return nil, domain.ErrUnauthorized
	}
	if !booking.Status.IsActive() {
		return nil, domain.ErrInvalidState
	}

	booking.Status = domain.BookingStatusCancelled

	if err := s.bookings.ApplyTransition(ctx, booking); err != nil {
		return nil, err
	}

	log.Printf("booking %s cancelled by requester %s", booking.ID, actorID)
	s.publish(ctx, "booking_cancelled", booking, "", "")
	return booking, nil
}

func (s *BookingService) CanAct(ctx context.Context, actor domain.Actor, bookingID string) (bool, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return domain.CanAct(actor, booking), nil
}

// FindConflict exposes the conflict scan for pre-submit previews. It uses
// the same overlap semantics as admission.
func (s *BookingService) FindConflict(ctx context.Context, resourceID string, candidate domain.TimeRange) (*domain.Booking, error) {
	existing, err := s.bookings.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return domain.FindConflict(resourceID, candidate, existing), nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

func (s *BookingService) ListByResource(ctx context.Context, resourceID string) ([]domain.Booking, error) {
	return s.bookings.ListByResource(ctx, resourceID)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// CompleteEndedBookings moves APPROVED bookings whose end time has passed to
// COMPLETED. Run periodically by the worker.
func (s *BookingService) CompleteEndedBookings(ctx context.Context) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteEndedBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publish(ctx, "booking_completed", &completed[i], "", "")
	}
	return completed, nil
}

// loadForDecision fetches the booking and checks the actor against its
// current workflow step. A non-pending booking or a dangling step index
// yields InvalidState; a role mismatch on a pending one yields Unauthorized.
func (s *BookingService) loadForDecision(ctx context.Context, bookingID string, actor domain.Actor) (*domain.Booking, domain.WorkflowNode, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, domain.WorkflowNode{}, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, domain.WorkflowNode{}, domain.ErrInvalidState
	}
	step, err := booking.CurrentStep()
	if err != nil {
		return nil, domain.WorkflowNode{}, err
	}
	if !actor.HasRole(step.ApproverRole) {
		return nil, domain.WorkflowNode{}, domain.ErrUnauthorized
	}
	return booking, step, nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, actorName, comment string) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		ResourceID:   booking.ResourceID,
		ResourceType: string(booking.ResourceType),
		UserID:       booking.UserID,
		Status:       string(booking.Status),
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		ActorName:    actorName,
		Comment:      comment,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.ID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.Printf("WARNING: failed to publish notification for booking %s: %v", booking.ID, err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
