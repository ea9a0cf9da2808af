package model

import "time"

// Photo is metadata for one image in an album block. Bytes live in object
// storage under StorageKey.
type Photo struct {
	ID          int64     `json:"id"`
	BlockID     int64     `json:"block_id"`
	StorageKey  string    `json:"storage_key"`
	Caption     string    `json:"caption"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
