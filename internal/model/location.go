package model

import "time"

// LocationSuggestion is a candidate venue on a location block. VoteCount and
// Voters are assembled from the votes table on read.
type LocationSuggestion struct {
	ID          int64     `json:"id"`
	BlockID     int64     `json:"block_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	URL         string    `json:"url"`
	SuggestedBy string    `json:"suggested_by"`
	VoteCount   int       `json:"vote_count"`
	Voters      []string  `json:"voters,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
