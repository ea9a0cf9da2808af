package schedule

import (
	"errors"
	"testing"
)

func TestGenerateSlotsBasic(t *testing.T) {
	slots, err := GenerateSlots([]string{"2025-06-01"}, "09:00", "10:00", 30)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len = %d, want 2", len(slots))
	}
	if slots[0].Date != "2025-06-01" || slots[0].StartTime != "09:00" || slots[0].EndTime != "09:30" {
		t.Errorf("slot 0 = %+v, want 09:00-09:30 on 2025-06-01", slots[0])
	}
	if slots[1].StartTime != "09:30" || slots[1].EndTime != "10:00" {
		t.Errorf("slot 1 = %+v, want 09:30-10:00", slots[1])
	}
	for i, s := range slots {
		if s.Available {
			t.Errorf("slot %d should default to unavailable", i)
		}
	}
}

func TestGenerateSlotsShortFinalSlot(t *testing.T) {
	slots, err := GenerateSlots([]string{"2025-06-01"}, "09:00", "09:50", 30)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len = %d, want 2", len(slots))
	}
	// The final slot is clipped to the end time, shorter than the interval.
	if slots[1].StartTime != "09:30" || slots[1].EndTime != "09:50" {
		t.Errorf("final slot = %s-%s, want 09:30-09:50", slots[1].StartTime, slots[1].EndTime)
	}
}

func TestGenerateSlotsCountInvariant(t *testing.T) {
	// slots per date == ceil((end-start)/interval)
	cases := []struct {
		start, end string
		interval   int
		want       int
	}{
		{"09:00", "17:00", 30, 16},
		{"09:00", "17:00", 60, 8},
		{"09:00", "09:50", 30, 2},
		{"09:00", "09:01", 30, 1},
		{"00:00", "23:59", 45, 32},
		{"10:00", "10:00", 15, 0},
	}
	for _, c := range cases {
		slots, err := GenerateSlots([]string{"2025-06-01", "2025-06-02"}, c.start, c.end, c.interval)
		if err != nil {
			t.Fatalf("generate %s-%s/%d: %v", c.start, c.end, c.interval, err)
		}
		if len(slots) != 2*c.want {
			t.Errorf("%s-%s/%d: len = %d, want %d per date", c.start, c.end, c.interval, len(slots), c.want)
		}
	}
}

func TestGenerateSlotsCoverageInvariant(t *testing.T) {
	slots, err := GenerateSlots([]string{"2025-06-01"}, "08:15", "11:40", 25)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if slots[0].StartTime != "08:15" {
		t.Errorf("first start = %s, want 08:15", slots[0].StartTime)
	}
	if slots[len(slots)-1].EndTime != "11:40" {
		t.Errorf("last end = %s, want 11:40", slots[len(slots)-1].EndTime)
	}
	// Contiguous, no gaps or overlaps.
	for i := 1; i < len(slots); i++ {
		if slots[i].StartTime != slots[i-1].EndTime {
			t.Errorf("slot %d starts at %s, previous ends at %s", i, slots[i].StartTime, slots[i-1].EndTime)
		}
	}
}

func TestGenerateSlotsEndBeforeStart(t *testing.T) {
	slots, err := GenerateSlots([]string{"2025-06-01"}, "17:00", "09:00", 30)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("len = %d, want 0 for inverted range", len(slots))
	}
}

func TestGenerateSlotsEmptyDates(t *testing.T) {
	slots, err := GenerateSlots(nil, "09:00", "17:00", 30)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("len = %d, want 0 for empty date list", len(slots))
	}
}

func TestGenerateSlotsInvalidInterval(t *testing.T) {
	for _, interval := range []int{0, -15} {
		_, err := GenerateSlots([]string{"2025-06-01"}, "09:00", "17:00", interval)
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("interval %d: err = %v, want ErrInvalidInterval", interval, err)
		}
	}
}

func TestGenerateSlotsMalformedTime(t *testing.T) {
	for _, bad := range []string{"", "9am", "25:00", "09:75", "09.30"} {
		_, err := GenerateSlots([]string{"2025-06-01"}, bad, "17:00", 30)
		if !errors.Is(err, ErrInvalidTimeRange) {
			t.Errorf("start %q: err = %v, want ErrInvalidTimeRange", bad, err)
		}
	}
}

func TestGenerateSlotsSameShapePerDate(t *testing.T) {
	dates := []string{"2025-06-03", "2025-06-01", "2025-06-02"}
	slots, err := GenerateSlots(dates, "09:00", "10:30", 30)
	if err != nil {
		t.Fatalf("generate slots: %v", err)
	}
	if len(slots) != 9 {
		t.Fatalf("len = %d, want 9", len(slots))
	}
	// Dates keep caller order and every date carries identical time bounds.
	for i, s := range slots {
		if s.Date != dates[i/3] {
			t.Errorf("slot %d date = %s, want %s", i, s.Date, dates[i/3])
		}
		base := slots[i%3]
		if s.StartTime != base.StartTime || s.EndTime != base.EndTime {
			t.Errorf("slot %d bounds = %s-%s, want %s-%s", i, s.StartTime, s.EndTime, base.StartTime, base.EndTime)
		}
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("13:45")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m != 13*60+45 {
		t.Errorf("minutes = %d, want %d", m, 13*60+45)
	}
	if FormatClock(m) != "13:45" {
		t.Errorf("format = %s, want 13:45", FormatClock(m))
	}
	if FormatClock(5) != "00:05" {
		t.Errorf("format = %s, want 00:05", FormatClock(5))
	}
}
