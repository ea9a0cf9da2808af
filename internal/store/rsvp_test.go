package store

import (
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func TestRSVPUpsert(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeRSVP, map[string]any{})
	s := NewRSVPStore(db)

	entry, err := s.Upsert(block.ID, model.RSVPEntry{
		ParticipantID: "g1", ParticipantName: "Ana", Status: model.RSVPGoing, GuestCount: 2,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if entry.Status != model.RSVPGoing || entry.GuestCount != 2 {
		t.Errorf("entry = %+v, want going with 2 guests", entry)
	}

	// Changing one's mind replaces the earlier response.
	entry, err = s.Upsert(block.ID, model.RSVPEntry{
		ParticipantID: "g1", ParticipantName: "Ana", Status: model.RSVPDeclined,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if entry.Status != model.RSVPDeclined || entry.GuestCount != 0 {
		t.Errorf("entry = %+v, want declined with 0 guests", entry)
	}

	entries, err := s.ListByBlock(block.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len = %d, want 1", len(entries))
	}
}

func TestRSVPCounts(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeRSVP, map[string]any{})
	s := NewRSVPStore(db)

	responses := []model.RSVPEntry{
		{ParticipantID: "g1", ParticipantName: "Ana", Status: model.RSVPGoing, GuestCount: 1},
		{ParticipantID: "g2", ParticipantName: "Ben", Status: model.RSVPGoing},
		{ParticipantID: "g3", ParticipantName: "Cam", Status: model.RSVPMaybe},
	}
	for _, r := range responses {
		if _, err := s.Upsert(block.ID, r); err != nil {
			t.Fatalf("upsert %s: %v", r.ParticipantID, err)
		}
	}

	counts, err := s.Counts(block.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[model.RSVPGoing] != 3 {
		t.Errorf("going = %d, want 3 (two responses plus one extra guest)", counts[model.RSVPGoing])
	}
	if counts[model.RSVPMaybe] != 1 {
		t.Errorf("maybe = %d, want 1", counts[model.RSVPMaybe])
	}
	if counts[model.RSVPDeclined] != 0 {
		t.Errorf("declined = %d, want 0", counts[model.RSVPDeclined])
	}
}
