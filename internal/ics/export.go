package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/codedbycupidity/alignr/internal/model"
)

// Export renders a finalized event as an iCalendar document. Fixed-schedule
// blocks become one VEVENT; availability blocks over specific dates become
// one VEVENT per selected date covering the polled time window. Location is
// optional and comes from the event's top-voted location suggestion.
func Export(event *model.Event, content *model.TimeBlockContent, location string) (string, error) {
	if content == nil {
		return "", fmt.Errorf("event has no time block")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Alignr//Event Export//EN")

	switch content.Mode {
	case model.ModeFixed:
		loc := time.Local
		if content.FixedTimezone != "" {
			l, err := time.LoadLocation(content.FixedTimezone)
			if err != nil {
				return "", fmt.Errorf("load timezone %q: %w", content.FixedTimezone, err)
			}
			loc = l
		}
		start, end, err := parseWindow(content.FixedDate, content.FixedStartTime, content.FixedEndTime, loc)
		if err != nil {
			return "", err
		}
		addVEvent(cal, event, location, content.FixedDate, start, end)

	case model.ModeAvailability:
		if content.DateType != model.DateTypeSpecific || len(content.SelectedDates) == 0 {
			return "", fmt.Errorf("event has no concrete dates to export")
		}
		for _, date := range content.SelectedDates {
			start, end, err := parseWindow(date, content.StartTime, content.EndTime, time.Local)
			if err != nil {
				return "", err
			}
			addVEvent(cal, event, location, date, start, end)
		}

	default:
		return "", fmt.Errorf("unknown time block mode %q", content.Mode)
	}

	return cal.Serialize(), nil
}

func parseWindow(date, startTime, endTime string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+startTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse start %q %q: %w", date, startTime, err)
	}
	end, err := time.ParseInLocation("2006-01-02 15:04", date+" "+endTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse end %q %q: %w", date, endTime, err)
	}
	if !end.After(start) {
		// Window wraps past midnight
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func addVEvent(cal *ical.Calendar, event *model.Event, location, date string, start, end time.Time) {
	ve := cal.AddEvent(fmt.Sprintf("%s-%s@alignr.app", event.ShareCode, date))
	ve.SetDtStampTime(time.Now().UTC())
	ve.SetStartAt(start)
	ve.SetEndAt(end)
	ve.SetSummary(event.Title)
	if event.Description != "" {
		ve.SetDescription(event.Description)
	}
	if location != "" {
		ve.SetLocation(location)
	}
}
