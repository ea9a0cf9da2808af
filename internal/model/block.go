package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type BlockType string

const (
	BlockTypeTime     BlockType = "time"
	BlockTypePoll     BlockType = "poll"
	BlockTypeRSVP     BlockType = "rsvp"
	BlockTypeBudget   BlockType = "budget"
	BlockTypeLocation BlockType = "location"
	BlockTypeTask     BlockType = "task"
	BlockTypeAlbum    BlockType = "album"
	BlockTypeNote     BlockType = "note"
)

var validBlockTypes = map[BlockType]bool{
	BlockTypeTime:     true,
	BlockTypePoll:     true,
	BlockTypeRSVP:     true,
	BlockTypeBudget:   true,
	BlockTypeLocation: true,
	BlockTypeTask:     true,
	BlockTypeAlbum:    true,
	BlockTypeNote:     true,
}

// ValidBlockType reports whether t is a known block type.
func ValidBlockType(t BlockType) bool {
	return validBlockTypes[t]
}

// Block is one interactive unit on an event canvas. Content holds the
// type-specific settings (TimeBlockContent, PollContent, ...) as JSON;
// participant contributions live in their own tables, not in Content.
type Block struct {
	ID        int64           `json:"id"`
	EventID   int64           `json:"event_id"`
	Type      BlockType       `json:"type"`
	Title     string          `json:"title"`
	Position  int             `json:"position"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TimeContent decodes Content as TimeBlockContent. It fails for non-time blocks.
func (b *Block) TimeContent() (*TimeBlockContent, error) {
	if b.Type != BlockTypeTime {
		return nil, fmt.Errorf("block %d is %q, not a time block", b.ID, b.Type)
	}
	var c TimeBlockContent
	if err := json.Unmarshal(b.Content, &c); err != nil {
		return nil, fmt.Errorf("decode time block content: %w", err)
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = DefaultIntervalMinutes
	}
	return &c, nil
}

// PollContent decodes Content as PollContent. It fails for non-poll blocks.
func (b *Block) PollContent() (*PollContent, error) {
	if b.Type != BlockTypePoll {
		return nil, fmt.Errorf("block %d is %q, not a poll block", b.ID, b.Type)
	}
	var c PollContent
	if err := json.Unmarshal(b.Content, &c); err != nil {
		return nil, fmt.Errorf("decode poll block content: %w", err)
	}
	return &c, nil
}
