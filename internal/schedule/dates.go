package schedule

import (
	"sort"
	"time"

	"github.com/codedbycupidity/alignr/internal/model"
)

// ResolveDates returns the calendar dates a time block's grid covers, in
// chronological order. Specific dates are sorted (ISO strings sort
// chronologically); recurring weekday selections are projected onto the next
// seven days starting from today. Fixed-mode blocks have no grid.
func ResolveDates(content *model.TimeBlockContent, today time.Time) []string {
	if content == nil || content.Mode != model.ModeAvailability {
		return nil
	}

	switch content.DateType {
	case model.DateTypeSpecific:
		dates := append([]string(nil), content.SelectedDates...)
		sort.Strings(dates)
		return dates

	case model.DateTypeDays:
		wanted := make(map[int]bool, len(content.SelectedDays))
		for _, d := range content.SelectedDays {
			if d >= 0 && d <= 6 {
				wanted[d] = true
			}
		}
		var dates []string
		for i := 0; i < 7; i++ {
			day := today.AddDate(0, 0, i)
			if wanted[int(day.Weekday())] {
				dates = append(dates, day.Format("2006-01-02"))
			}
		}
		return dates
	}

	return nil
}
