package ics

import (
	"strings"
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func testEvent() *model.Event {
	return &model.Event{
		ID:          1,
		Title:       "Lake Weekend",
		Description: "Annual trip",
		ShareCode:   "h7k2m9p3q4",
		Status:      model.StatusFinalized,
	}
}

func TestExportFixed(t *testing.T) {
	content := &model.TimeBlockContent{
		Mode:           model.ModeFixed,
		FixedDate:      "2026-07-18",
		FixedStartTime: "14:00",
		FixedEndTime:   "17:00",
	}

	out, err := Export(testEvent(), content, "Miller Park Pavilion")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:Lake Weekend",
		"DESCRIPTION:Annual trip",
		"LOCATION:Miller Park Pavilion",
		"UID:h7k2m9p3q4-2026-07-18@alignr.app",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 1 {
		t.Errorf("expected 1 VEVENT, got %d", got)
	}
}

func TestExportFixedBadTimezone(t *testing.T) {
	content := &model.TimeBlockContent{
		Mode:           model.ModeFixed,
		FixedDate:      "2026-07-18",
		FixedStartTime: "14:00",
		FixedEndTime:   "17:00",
		FixedTimezone:  "Mars/Olympus_Mons",
	}

	if _, err := Export(testEvent(), content, ""); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestExportAvailabilityDates(t *testing.T) {
	content := &model.TimeBlockContent{
		Mode:          model.ModeAvailability,
		DateType:      model.DateTypeSpecific,
		SelectedDates: []string{"2026-07-18", "2026-07-19"},
		StartTime:     "09:00",
		EndTime:       "12:00",
	}

	out, err := Export(testEvent(), content, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("expected 2 VEVENTs, got %d", got)
	}
	if !strings.Contains(out, "UID:h7k2m9p3q4-2026-07-19@alignr.app") {
		t.Errorf("output missing second date UID:\n%s", out)
	}
	if strings.Contains(out, "LOCATION") {
		t.Error("expected no LOCATION when none supplied")
	}
}

func TestExportRecurringDaysRejected(t *testing.T) {
	content := &model.TimeBlockContent{
		Mode:         model.ModeAvailability,
		DateType:     model.DateTypeDays,
		SelectedDays: []int{1, 3},
		StartTime:    "09:00",
		EndTime:      "12:00",
	}

	if _, err := Export(testEvent(), content, ""); err == nil {
		t.Fatal("expected error for recurring-days block")
	}
}

func TestExportNilContent(t *testing.T) {
	if _, err := Export(testEvent(), nil, ""); err == nil {
		t.Fatal("expected error for nil content")
	}
}
