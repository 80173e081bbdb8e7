package domain

import "sort"

// FindConflict returns the earliest-created active booking on resourceID
// whose range overlaps candidate, or nil if the candidate is admissible.
// REJECTED, CANCELLED and COMPLETED bookings are logically vacated and
// never conflict.
func FindConflict(resourceID string, candidate TimeRange, existing []Booking) *Booking {
	matches := make([]*Booking, 0, 4)
	for i := range existing {
		b := &existing[i]
		if b.ResourceID != resourceID || !b.Status.IsActive() {
			continue
		}
		if candidate.Overlaps(b.Range()) {
			matches = append(matches, b)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})
	return matches[0]
}

// CanAct reports whether actor may decide the booking's current workflow
// step: the booking must be PENDING and the actor must hold the step's
// approver role.
func CanAct(actor Actor, booking *Booking) bool {
	if booking.Status != BookingStatusPending {
		return false
	}
	step, err := booking.CurrentStep()
	if err != nil {
		return false
	}
	return actor.HasRole(step.ApproverRole)
}
