package model

import "time"

// Guest is an accountless participant, identified by a generated UUID stored
// in a cookie. One guest identity spans all events visited from the same
// browser.
type Guest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
