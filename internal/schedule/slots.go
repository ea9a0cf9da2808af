package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/codedbycupidity/alignr/internal/model"
)

var (
	// ErrInvalidInterval is returned when slot generation is asked for a
	// non-positive interval.
	ErrInvalidInterval = errors.New("slot interval must be positive")

	// ErrInvalidTimeRange is returned for unparseable HH:MM input. An end
	// before the start is not an error; it produces zero slots.
	ErrInvalidTimeRange = errors.New("malformed time of day")
)

// ParseClock converts a 24-hour "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeRange, s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as zero-padded "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// GenerateSlots produces the canonical ordered slot grid for the given dates:
// for each date, half-open [start, end) intervals of intervalMinutes walked
// from startTime, with the final slot clipped to endTime when the range is
// not an exact multiple of the interval. Dates are iterated in the order
// given; every emitted slot starts out unavailable.
//
// An end at or before the start yields zero slots for that date, and an empty
// date list yields an empty grid; neither is an error.
func GenerateSlots(dates []string, startTime, endTime string, intervalMinutes int) ([]model.TimeSlot, error) {
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, intervalMinutes)
	}

	startMin, err := ParseClock(startTime)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	endMin, err := ParseClock(endTime)
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}

	slots := []model.TimeSlot{}
	for _, date := range dates {
		for cur := startMin; cur < endMin; cur += intervalMinutes {
			slotEnd := cur + intervalMinutes
			if slotEnd > endMin {
				slotEnd = endMin
			}
			slots = append(slots, model.TimeSlot{
				Date:      date,
				StartTime: FormatClock(cur),
				EndTime:   FormatClock(slotEnd),
			})
		}
	}
	return slots, nil
}
