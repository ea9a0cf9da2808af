package model

import "time"

type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPDeclined RSVPStatus = "declined"
)

// RSVPEntry is one participant's response on an RSVP block. GuestCount is
// additional guests beyond the participant themselves.
type RSVPEntry struct {
	ID              int64      `json:"id"`
	BlockID         int64      `json:"block_id"`
	ParticipantID   string     `json:"participant_id"`
	ParticipantName string     `json:"participant_name"`
	Status          RSVPStatus `json:"status"`
	GuestCount      int        `json:"guest_count"`
	Note            string     `json:"note"`
	RespondedAt     time.Time  `json:"responded_at"`
}
