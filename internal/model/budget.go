package model

import "time"

// BudgetItem is one line on a budget block. Amounts are stored in cents to
// avoid float drift.
type BudgetItem struct {
	ID          int64     `json:"id"`
	BlockID     int64     `json:"block_id"`
	Label       string    `json:"label"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
}
