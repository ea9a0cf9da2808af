package model

import "time"

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusActive    EventStatus = "active"
	StatusFinalized EventStatus = "finalized"
)

// Event is the top-level planning canvas shared with guests via ShareCode.
// Status only moves forward: draft -> active -> finalized.
type Event struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ShareCode   string      `json:"share_code"`
	OrganizerID int64       `json:"organizer_id"`
	Status      EventStatus `json:"status"`
	FinalizedAt *time.Time  `json:"finalized_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
