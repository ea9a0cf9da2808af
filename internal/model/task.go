package model

import "time"

// Task is one item on a task block. AssigneeName is free text because guests
// have no stable account identity.
type Task struct {
	ID           int64      `json:"id"`
	BlockID      int64      `json:"block_id"`
	Title        string     `json:"title"`
	AssigneeName string     `json:"assignee_name"`
	Done         bool       `json:"done"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
