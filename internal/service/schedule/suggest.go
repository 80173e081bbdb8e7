package schedule

import (
	"context"
	"time"

	"github.com/nkiryanov/officebook/internal/domain"
	"github.com/nkiryanov/officebook/internal/repository"
)

// maxLookahead bounds the forward scan so an overbooked resource cannot
// spin the suggestion loop forever.
const maxLookahead = 14 * 24 * time.Hour

// Suggester finds the next free window on a resource. It runs on the same
// conflict detector as admission, so a suggested slot is admissible at the
// moment of the scan. All arithmetic is on UTC instants.
type Suggester struct {
	bookings    repository.BookingRepository
	openingHour int
	cutoffHour  int
	step        time.Duration
}

func NewSuggester(bookings repository.BookingRepository, openingHour, cutoffHour int, step time.Duration) *Suggester {
	return &Suggester{
		bookings:    bookings,
		openingHour: openingHour,
		cutoffHour:  cutoffHour,
		step:        step,
	}
}

// Suggest returns the earliest window of the given duration at or after
// `from` that fits within office hours and overlaps no active booking.
// Returns nil when nothing fits within the lookahead.
func (s *Suggester) Suggest(ctx context.Context, resourceID string, duration time.Duration, from time.Time) (*domain.TimeRange, error) {
	existing, err := s.bookings.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	start := from.UTC().Truncate(s.step)
	if start.Before(from.UTC()) {
		start = start.Add(s.step)
	}
	limit := from.UTC().Add(maxLookahead)

	for start.Before(limit) {
		dayOpen := time.Date(start.Year(), start.Month(), start.Day(), s.openingHour, 0, 0, 0, time.UTC)
		dayCutoff := time.Date(start.Year(), start.Month(), start.Day(), s.cutoffHour, 0, 0, 0, time.UTC)

		if start.Before(dayOpen) {
			start = dayOpen
		}
		if start.Add(duration).After(dayCutoff) {
			start = dayOpen.AddDate(0, 0, 1)
			continue
		}

		candidate := domain.TimeRange{Start: start, End: start.Add(duration)}
		if domain.FindConflict(resourceID, candidate, existing) == nil {
			return &candidate, nil
		}
		start = start.Add(s.step)
	}
	return nil, nil
}
