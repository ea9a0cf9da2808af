package schedule

import (
	"errors"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

// ErrMalformedSubmission is returned when an availability submission is
// structurally invalid (missing participant id, slot without a date or start
// time). Empty submissions are fine.
var ErrMalformedSubmission = errors.New("malformed availability submission")

// AvailabilityCount is the aggregate for one slot: how many participants
// marked it available and who they are, in submission order.
type AvailabilityCount struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// CountAvailable filters submissions to those with a slot matching
// (date, slotStart) that is marked available. A participant with no matching
// slot is treated the same as one whose match is unavailable. Names preserve
// submission order and may repeat; display names are not unique.
func CountAvailable(submissions []model.ParticipantAvailability, date, slotStart string) (AvailabilityCount, error) {
	out := AvailabilityCount{Names: []string{}}
	for i, sub := range submissions {
		if sub.ParticipantID == "" {
			return AvailabilityCount{}, fmt.Errorf("%w: submission %d has no participant id", ErrMalformedSubmission, i)
		}
		available := false
		for _, s := range sub.TimeSlots {
			if s.Date == "" || s.StartTime == "" {
				return AvailabilityCount{}, fmt.Errorf("%w: submission %d has a slot without date or start time", ErrMalformedSubmission, i)
			}
			if s.Date == date && s.StartTime == slotStart && s.Available {
				available = true
			}
		}
		if available {
			out.Count++
			out.Names = append(out.Names, sub.ParticipantName)
		}
	}
	return out, nil
}

// HeatTier buckets a slot's popularity into 0 (nobody) through 5 (darkest).
// Tiers are inclusive lower bounds on count/totalParticipants: 0.8, 0.6,
// 0.4, 0.2, then tier 1 for any nonzero count. totalParticipants counts
// distinct submissions, not distinct names.
func HeatTier(count, totalParticipants int) int {
	if totalParticipants <= 0 || count <= 0 {
		return 0
	}
	intensity := float64(count) / float64(totalParticipants)
	switch {
	case intensity >= 0.8:
		return 5
	case intensity >= 0.6:
		return 4
	case intensity >= 0.4:
		return 3
	case intensity >= 0.2:
		return 2
	default:
		return 1
	}
}
