package store

import (
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func TestTaskLifecycle(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeTask, map[string]any{})
	s := NewTaskStore(db)

	task, err := s.Create(block.ID, "Bring speakers", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Done || task.CompletedAt != nil {
		t.Errorf("new task = %+v, want open", task)
	}

	task, err = s.Assign(task.ID, "Ben")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if task.AssigneeName != "Ben" {
		t.Errorf("assignee = %q, want Ben", task.AssigneeName)
	}

	task, err = s.SetDone(task.ID, true)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !task.Done || task.CompletedAt == nil {
		t.Errorf("task = %+v, want done with a completion time", task)
	}

	task, err = s.SetDone(task.ID, false)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if task.Done || task.CompletedAt != nil {
		t.Errorf("task = %+v, want reopened with completion cleared", task)
	}
}
