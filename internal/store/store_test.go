package store

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/codedbycupidity/alignr/internal/database"
	"github.com/codedbycupidity/alignr/internal/model"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Ensure foreign keys are enforced (modernc/sqlite may not honor DSN param for :memory:)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newTestEvent creates an organizer and an event to hang blocks off.
func newTestEvent(t *testing.T, db *sql.DB) *model.Event {
	t.Helper()
	user, err := NewUserStore(db).Create("organizer@example.com", "Org")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	event, err := NewEventStore(db).Create("Summer BBQ", "Bring snacks", user.ID)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

// newTestBlock creates a block of the given type on a fresh event.
func newTestBlock(t *testing.T, db *sql.DB, blockType model.BlockType, content any) *model.Block {
	t.Helper()
	event := newTestEvent(t, db)
	raw, err := json.Marshal(content)
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	block, err := NewBlockStore(db).Create(event.ID, blockType, "Block", 0, raw)
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	return block
}
