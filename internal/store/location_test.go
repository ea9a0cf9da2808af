package store

import (
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func TestLocationVoting(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeLocation, map[string]any{})
	s := NewLocationStore(db)

	loc, err := s.Create(block.ID, "Riverside Park", "12 River Rd", "", "Ana")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Vote(loc.ID, "g1", "Ana"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := s.Vote(loc.ID, "g2", "Ben"); err != nil {
		t.Fatalf("vote: %v", err)
	}
	// Double vote is a no-op.
	if err := s.Vote(loc.ID, "g1", "Ana"); err != nil {
		t.Fatalf("double vote: %v", err)
	}

	got, err := s.GetByID(loc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VoteCount != 2 {
		t.Errorf("votes = %d, want 2", got.VoteCount)
	}

	if err := s.Unvote(loc.ID, "g2"); err != nil {
		t.Fatalf("unvote: %v", err)
	}
	got, err = s.GetByID(loc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.VoteCount != 1 || got.Voters[0] != "Ana" {
		t.Errorf("got %+v, want only Ana's vote", got)
	}
}
