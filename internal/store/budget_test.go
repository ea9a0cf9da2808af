package store

import (
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func TestBudgetTotal(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeBudget, map[string]any{})
	s := NewBudgetStore(db)

	if _, err := s.Create(block.ID, "Venue deposit", 15000, "venue", "Ana"); err != nil {
		t.Fatalf("create: %v", err)
	}
	item, err := s.Create(block.ID, "Snacks", 4250, "food", "Ben")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	total, err := s.Total(block.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 19250 {
		t.Errorf("total = %d, want 19250", total)
	}

	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	total, err = s.Total(block.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 15000 {
		t.Errorf("total = %d, want 15000 after delete", total)
	}
}

func TestBudgetEmptyTotal(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeBudget, map[string]any{})

	total, err := NewBudgetStore(db).Total(block.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}
