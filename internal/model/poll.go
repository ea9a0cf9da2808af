package model

import "time"

// PollOption is one choice in a poll block. IDs are short strings chosen by
// the organizer's client and stable across edits.
type PollOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// PollContent is the settings payload of a poll block.
type PollContent struct {
	Question      string       `json:"question"`
	Options       []PollOption `json:"options"`
	AllowMultiple bool         `json:"allow_multiple"`
}

// PollVote is one participant's current vote set. A revote replaces all of
// the participant's prior option rows.
type PollVote struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	OptionIDs       []string  `json:"option_ids"`
	VotedAt         time.Time `json:"voted_at"`
}

// PollResult is the tally for one option.
type PollResult struct {
	OptionID string   `json:"option_id"`
	Count    int      `json:"count"`
	Voters   []string `json:"voters"`
}
