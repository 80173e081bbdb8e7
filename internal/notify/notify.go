package notify

import (
	"context"
	"log"

	"github.com/nkiryanov/officebook/internal/kafka"
)

// Sender delivers booking lifecycle notifications to the requester.
// Delivery is a log line for now; a mail or chat transport slots in here.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	log.Printf("notify user %s: booking %s on resource %s is now %s (%s)",
		event.UserID, event.BookingID, event.ResourceID, event.Status, event.Type)
	return nil
}
