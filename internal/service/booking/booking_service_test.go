package booking

import (
	"context"
	"testing"
	"time"

	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByResource(ctx context.Context, resourceID string) ([]domain.Booking, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ApplyTransition(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockResourceRepository struct {
	mock.Mock
}

func (m *MockResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Resource), args.Error(1)
}

type MockWorkflowRepository struct {
	mock.Mock
}

func (m *MockWorkflowRepository) Get(ctx context.Context) (domain.Workflow, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Workflow), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireAdmissionLock(ctx context.Context, resourceID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, resourceID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) ReleaseAdmissionLock(ctx context.Context, resourceID string) error {
	args := m.Called(ctx, resourceID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func testResource() *domain.Resource {
	return &domain.Resource{ID: "r1", Name: "Boardroom", Type: domain.ResourceTypeRoom, Location: "3F"}
}

func twoStepWorkflow() domain.Workflow {
	return domain.NewWorkflow([]domain.WorkflowNode{
		{ID: "n1", Name: "Team lead", ApproverRole: "team_lead", Position: 0},
		{ID: "n2", Name: "Facilities", ApproverRole: "facilities", Position: 1},
	})
}

func submitInput() SubmitBookingInput {
	return SubmitBookingInput{
		ResourceID:   "r1",
		UserID:       "u1",
		Purpose:      "team sync",
		StartTime:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Participants: 6,
	}
}

func newTestService(bookings *MockBookingRepository, resources *MockResourceRepository, workflows *MockWorkflowRepository, producer Producer) *BookingService {
	return NewBookingService(bookings, resources, workflows, nil, producer, "booking-events", time.Minute)
}

func TestSubmitBooking_PendingWithWorkflow(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	producer := &MockProducer{}
	svc := newTestService(bookings, resources, workflows, producer)

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)
	bookings.On("ListByResource", mock.Anything, "r1").Return([]domain.Booking{}, nil)
	workflows.On("Get", mock.Anything).Return(twoStepWorkflow(), nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.NoError(t, err)
	assert.NotNil(t, booking)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, 0, booking.CurrentNodeIndex)
	assert.Len(t, booking.Steps, 2)
	assert.Empty(t, booking.History)
	assert.Equal(t, domain.ResourceTypeRoom, booking.ResourceType)
	bookings.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*domain.Booking"))
}

func TestSubmitBooking_EmptyWorkflowAutoApproved(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	producer := &MockProducer{}
	svc := newTestService(bookings, resources, workflows, producer)

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)
	bookings.On("ListByResource", mock.Anything, "r1").Return([]domain.Booking{}, nil)
	workflows.On("Get", mock.Anything).Return(domain.NewWorkflow(nil), nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)
	producer.On("Publish", mock.Anything, "booking-events", mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusApproved, booking.Status)
	assert.Empty(t, booking.History)
	assert.Empty(t, booking.Steps)
}

func TestSubmitBooking_ResourceNotFound(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	svc := newTestService(bookings, resources, workflows, nil)

	resources.On("GetByID", mock.Anything, "r1").Return(nil, domain.ErrResourceNotFound)

	booking, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
	assert.Nil(t, booking)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitBooking_InvalidTimeRange(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	svc := newTestService(bookings, resources, workflows, nil)

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)

	input := submitInput()
	input.EndTime = input.StartTime

	booking, err := svc.SubmitBooking(context.Background(), input)

	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
	assert.Nil(t, booking)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmitBooking_Conflict(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	svc := newTestService(bookings, resources, workflows, nil)

	existing := domain.Booking{
		ID:         "existing-1",
		UserID:     "u2",
		ResourceID: "r1",
		StartTime:  time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
		Status:     domain.BookingStatusApproved,
	}

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)
	bookings.On("ListByResource", mock.Anything, "r1").Return([]domain.Booking{existing}, nil)

	booking, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.Nil(t, booking)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "existing-1", conflict.BookingID)
	assert.Equal(t, "u2", conflict.UserID)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	workflows.AssertNotCalled(t, "Get", mock.Anything)
}

func TestSubmitBooking_AdmissionLockHeld(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	locker := &MockLocker{}
	svc := NewBookingService(bookings, resources, workflows, locker, nil, "booking-events", time.Minute)

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)
	locker.On("AcquireAdmissionLock", mock.Anything, "r1", time.Minute).Return(false, nil)

	booking, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.ErrorIs(t, err, ErrAdmissionInProgress)
	assert.Nil(t, booking)
	bookings.AssertNotCalled(t, "ListByResource", mock.Anything, mock.Anything)
}

func TestSubmitBooking_LockReleasedAfterAdmission(t *testing.T) {
	bookings := &MockBookingRepository{}
	resources := &MockResourceRepository{}
	workflows := &MockWorkflowRepository{}
	locker := &MockLocker{}
	svc := NewBookingService(bookings, resources, workflows, locker, nil, "booking-events", time.Minute)

	resources.On("GetByID", mock.Anything, "r1").Return(testResource(), nil)
	locker.On("AcquireAdmissionLock", mock.Anything, "r1", time.Minute).Return(true, nil)
	locker.On("ReleaseAdmissionLock", mock.Anything, "r1").Return(nil)
	bookings.On("ListByResource", mock.Anything, "r1").Return([]domain.Booking{}, nil)
	workflows.On("Get", mock.Anything).Return(domain.NewWorkflow(nil), nil)
	bookings.On("Create", mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil)

	_, err := svc.SubmitBooking(context.Background(), submitInput())

	assert.NoError(t, err)
	locker.AssertCalled(t, "ReleaseAdmissionLock", mock.Anything, "r1")
}

func pendingBooking(steps []domain.WorkflowNode, index int) *domain.Booking {
	return &domain.Booking{
		ID:               "b1",
		UserID:           "u1",
		ResourceID:       "r1",
		ResourceType:     domain.ResourceTypeRoom,
		StartTime:        time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:          time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:           domain.BookingStatusPending,
		Steps:            steps,
		CurrentNodeIndex: index,
		History:          []domain.ApprovalRecord{},
		Version:          1,
	}
}

func TestApprove_TraversesWholeWorkflow(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, producer)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)
	bookings.On("ApplyTransition", mock.Anything, booking).Return(nil)
	producer.On("Publish", mock.Anything, "booking-events", "b1", mock.Anything).Return(nil)

	lead := domain.Actor{ID: "a1", Name: "Lena", Roles: []string{"team_lead"}}
	facilities := domain.Actor{ID: "a2", Name: "Marco", Roles: []string{"facilities"}}

	got, err := svc.Approve(context.Background(), "b1", lead)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, got.Status)
	assert.Equal(t, 1, got.CurrentNodeIndex)
	assert.Len(t, got.History, 1)

	got, err = svc.Approve(context.Background(), "b1", facilities)
	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusApproved, got.Status)
	assert.Len(t, got.History, 2)
	assert.Equal(t, domain.DecisionApproved, got.History[0].Decision)
	assert.Equal(t, "Team lead", got.History[0].NodeName)
	assert.Equal(t, domain.DecisionApproved, got.History[1].Decision)
	assert.Equal(t, "Facilities", got.History[1].NodeName)
}

func TestApprove_WrongRole(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

	intruder := domain.Actor{ID: "a3", Name: "Sam", Roles: []string{"facilities"}}

	got, err := svc.Approve(context.Background(), "b1", intruder)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Nil(t, got)
	assert.Empty(t, booking.History, "failed transition must leave the booking unchanged")
	bookings.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestApprove_TerminalBooking(t *testing.T) {
	terminal := []domain.BookingStatus{
		domain.BookingStatusApproved,
		domain.BookingStatusRejected,
		domain.BookingStatusCancelled,
		domain.BookingStatusCompleted,
	}
	lead := domain.Actor{ID: "a1", Name: "Lena", Roles: []string{"team_lead"}}

	for _, status := range terminal {
		bookings := &MockBookingRepository{}
		svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

		booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
		booking.Status = status
		bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

		_, err := svc.Approve(context.Background(), "b1", lead)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "status %s", status)
		bookings.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
	}
}

func TestReject_ShortcutsWorkflow(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, producer)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)
	bookings.On("ApplyTransition", mock.Anything, booking).Return(nil)
	producer.On("Publish", mock.Anything, "booking-events", "b1", mock.Anything).Return(nil)

	lead := domain.Actor{ID: "a1", Name: "Lena", Roles: []string{"team_lead"}}

	got, err := svc.Reject(context.Background(), "b1", lead, "room is being refurbished")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusRejected, got.Status)
	assert.Len(t, got.History, 1, "rejection at step 0 of 2 yields exactly one entry")
	assert.Equal(t, domain.DecisionRejected, got.History[0].Decision)
	assert.Equal(t, "room is being refurbished", got.History[0].Comment)
	assert.Equal(t, 0, got.CurrentNodeIndex)
}

func TestReject_DanglingStepIndex(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	booking := pendingBooking(nil, 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

	_, err := svc.Reject(context.Background(), "b1", domain.Actor{Roles: []string{"team_lead"}}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancel_ByRequester(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, producer)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)
	bookings.On("ApplyTransition", mock.Anything, booking).Return(nil)
	producer.On("Publish", mock.Anything, "booking-events", "b1", mock.Anything).Return(nil)

	got, err := svc.Cancel(context.Background(), "b1", "u1")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
}

func TestCancel_NotRequester(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

	_, err := svc.Cancel(context.Background(), "b1", "someone-else")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	bookings.AssertNotCalled(t, "ApplyTransition", mock.Anything, mock.Anything)
}

func TestCancel_TerminalBooking(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 0)
	booking.Status = domain.BookingStatusRejected
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

	_, err := svc.Cancel(context.Background(), "b1", "u1")

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Equal(t, domain.BookingStatusRejected, booking.Status)
}

func TestCanAct(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	booking := pendingBooking(twoStepWorkflow().Nodes(), 1)
	bookings.On("GetByID", mock.Anything, "b1").Return(booking, nil)

	ok, err := svc.CanAct(context.Background(), domain.Actor{Roles: []string{"facilities"}}, "b1")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanAct(context.Background(), domain.Actor{Roles: []string{"team_lead"}}, "b1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFindConflict_Preview(t *testing.T) {
	bookings := &MockBookingRepository{}
	svc := newTestService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil)

	existing := domain.Booking{
		ID:         "b1",
		ResourceID: "r1",
		StartTime:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:     domain.BookingStatusPending,
	}
	bookings.On("ListByResource", mock.Anything, "r1").Return([]domain.Booking{existing}, nil)

	conflict, err := svc.FindConflict(context.Background(), "r1", domain.TimeRange{
		Start: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC),
	})

	assert.NoError(t, err)
	assert.NotNil(t, conflict)
	assert.Equal(t, "b1", conflict.ID)
}

func TestCompleteEndedBookings(t *testing.T) {
	bookings := &MockBookingRepository{}
	producer := &MockProducer{}

	fixed := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	svc := NewBookingService(bookings, &MockResourceRepository{}, &MockWorkflowRepository{}, nil, producer, "booking-events", time.Minute,
		WithClock(func() time.Time { return fixed }))

	ended := domain.Booking{ID: "b1", ResourceID: "r1", Status: domain.BookingStatusCompleted}
	bookings.On("CompleteEndedBefore", mock.Anything, fixed).Return([]domain.Booking{ended}, nil)
	producer.On("Publish", mock.Anything, "booking-events", "b1", mock.Anything).Return(nil)

	completed, err := svc.CompleteEndedBookings(context.Background())

	assert.NoError(t, err)
	assert.Len(t, completed, 1)
	producer.AssertCalled(t, "Publish", mock.Anything, "booking-events", "b1", mock.Anything)
}
