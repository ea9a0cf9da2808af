package schedule

import (
	"time"

	"github.com/codedbycupidity/alignr/internal/model"
)

// ShouldFinalize reports whether an event's scheduling window has fully
// elapsed at now. It is advisory: callers own the status transition and must
// make it a conditional write so concurrent evaluations stay harmless.
//
// Fixed mode finalizes once now passes the fixed date's local end of day.
// Availability mode with specific dates finalizes once now passes the latest
// selected date's end of day; with no selected dates it never finalizes.
// Recurring weekday schedules have no terminal date and never auto-finalize.
func ShouldFinalize(content *model.TimeBlockContent, now time.Time) bool {
	if content == nil {
		return false
	}

	switch content.Mode {
	case model.ModeFixed:
		deadline, ok := endOfDay(content.FixedDate)
		return ok && now.After(deadline)

	case model.ModeAvailability:
		if content.DateType == model.DateTypeDays {
			return false
		}
		if len(content.SelectedDates) == 0 {
			return false
		}
		// Zero-padded ISO dates sort chronologically, so string max is the
		// latest date.
		latest := content.SelectedDates[0]
		for _, d := range content.SelectedDates[1:] {
			if d > latest {
				latest = d
			}
		}
		deadline, ok := endOfDay(latest)
		return ok && now.After(deadline)
	}

	return false
}

// endOfDay parses an ISO YYYY-MM-DD date and returns 23:59:59.999 of that
// local day. Unparseable dates report false rather than finalizing early.
func endOfDay(date string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	// Built from wall-clock components: duration arithmetic drifts by an hour
	// on DST transition days.
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999_000_000, time.Local), true
}
