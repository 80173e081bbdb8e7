package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// IsTerminal reports whether no further transition is possible.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusApproved, BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether the booking still occupies its time range.
// Only active bookings participate in conflict detection.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusApproved
}

type ApprovalDecision string

const (
	DecisionApproved ApprovalDecision = "APPROVED"
	DecisionRejected ApprovalDecision = "REJECTED"
)

// ApprovalRecord is one entry of a booking's append-only approval history.
type ApprovalRecord struct {
	NodeName     string           `json:"node_name"`
	ApproverName string           `json:"approver_name"`
	Decision     ApprovalDecision `json:"decision"`
	Comment      string           `json:"comment,omitempty"`
	DecidedAt    time.Time        `json:"decided_at"`
}

// MeetingExtras are the room-specific options attached to a booking.
type MeetingExtras struct {
	LeaderAttends  bool   `json:"leader_attends"`
	VideoConf      bool   `json:"video_conf"`
	Catering       bool   `json:"catering"`
	CateringDetail string `json:"catering_detail,omitempty"`
	NameCards      bool   `json:"name_cards"`
	NameCardDetail string `json:"name_card_detail,omitempty"`
}

type Booking struct {
	ID           string
	UserID       string
	ResourceID   string
	ResourceType ResourceType
	StartTime    time.Time
	EndTime      time.Time
	Purpose      string
	Participants int
	Status       BookingStatus

	// Steps is the workflow snapshot taken at creation time. Later edits
	// of the shared workflow definition never affect this booking.
	Steps            []WorkflowNode
	CurrentNodeIndex int
	History          []ApprovalRecord

	Extras    MeetingExtras
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Range returns the booked interval.
func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime, End: b.EndTime}
}

// CurrentStep returns the workflow step the booking is awaiting.
// Meaningful only while the booking is PENDING.
func (b *Booking) CurrentStep() (WorkflowNode, error) {
	if b.CurrentNodeIndex < 0 || b.CurrentNodeIndex >= len(b.Steps) {
		return WorkflowNode{}, ErrInvalidState
	}
	return b.Steps[b.CurrentNodeIndex], nil
}
