package model

import "time"

// DefaultIntervalMinutes is the slot granularity used when a time block
// doesn't specify one.
const DefaultIntervalMinutes = 30

type TimeBlockMode string

const (
	ModeAvailability TimeBlockMode = "availability"
	ModeFixed        TimeBlockMode = "fixed"
)

type DateType string

const (
	DateTypeSpecific DateType = "specific"
	DateTypeDays     DateType = "days"
)

// TimeSlot is one bookable unit: a half-open [StartTime, EndTime) interval on
// a single date. Date is ISO YYYY-MM-DD; times are 24-hour HH:MM. Available
// is only meaningful inside one participant's submission.
type TimeSlot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// ParticipantAvailability is one participant's full submission for a time
// block. Resubmission replaces the whole record; slots are never merged
// field-by-field.
type ParticipantAvailability struct {
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	TimeSlots       []TimeSlot `json:"time_slots"`
	SubmittedAt     time.Time  `json:"submitted_at"`
}

// TimeBlockContent is the settings payload of a time block. Exactly one of
// the availability-mode or fixed-mode field groups is interpreted, gated by
// Mode. In availability mode, DateType selects between SelectedDates
// (specific calendar days) and SelectedDays (recurring weekday indices,
// 0=Sunday..6=Saturday).
type TimeBlockContent struct {
	Mode TimeBlockMode `json:"mode"`

	DateType        DateType `json:"date_type,omitempty"`
	SelectedDates   []string `json:"selected_dates,omitempty"`
	SelectedDays    []int    `json:"selected_days,omitempty"`
	StartTime       string   `json:"start_time,omitempty"`
	EndTime         string   `json:"end_time,omitempty"`
	IntervalMinutes int      `json:"interval_minutes,omitempty"`

	FixedDate      string `json:"fixed_date,omitempty"`
	FixedStartTime string `json:"fixed_start_time,omitempty"`
	FixedEndTime   string `json:"fixed_end_time,omitempty"`
	FixedTimezone  string `json:"fixed_timezone,omitempty"`
}
