package store

import (
	"encoding/json"
	"testing"

	"github.com/codedbycupidity/alignr/internal/model"
)

func TestCreateBlockAndDecodeContent(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeTime, timeBlockContent())

	content, err := block.TimeContent()
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if content.Mode != model.ModeAvailability {
		t.Errorf("mode = %q, want availability", content.Mode)
	}
	if content.IntervalMinutes != 30 {
		t.Errorf("interval = %d, want 30", content.IntervalMinutes)
	}
}

func TestTimeContentDefaultsInterval(t *testing.T) {
	db := newTestDB(t)
	c := timeBlockContent()
	c.IntervalMinutes = 0
	block := newTestBlock(t, db, model.BlockTypeTime, c)

	content, err := block.TimeContent()
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if content.IntervalMinutes != model.DefaultIntervalMinutes {
		t.Errorf("interval = %d, want default %d", content.IntervalMinutes, model.DefaultIntervalMinutes)
	}
}

func TestTimeContentWrongType(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypePoll, model.PollContent{Question: "Where?"})

	if _, err := block.TimeContent(); err == nil {
		t.Error("expected error decoding a poll block as a time block")
	}
}

func TestCreateBlockUnknownType(t *testing.T) {
	db := newTestDB(t)
	event := newTestEvent(t, db)

	_, err := NewBlockStore(db).Create(event.ID, "karaoke", "Nope", 0, nil)
	if err == nil {
		t.Error("expected error for unknown block type")
	}
}

func TestListByEventOrdersByPosition(t *testing.T) {
	db := newTestDB(t)
	event := newTestEvent(t, db)
	s := NewBlockStore(db)

	if _, err := s.Create(event.ID, model.BlockTypeNote, "Second", 2, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(event.ID, model.BlockTypeRSVP, "First", 1, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	blocks, err := s.ListByEvent(event.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("len = %d, want 2", len(blocks))
	}
	if blocks[0].Title != "First" || blocks[1].Title != "Second" {
		t.Errorf("order = [%s, %s], want [First, Second]", blocks[0].Title, blocks[1].Title)
	}
}

func TestGetTimeBlock(t *testing.T) {
	db := newTestDB(t)
	event := newTestEvent(t, db)
	s := NewBlockStore(db)

	tb, err := s.GetTimeBlock(event.ID)
	if err != nil {
		t.Fatalf("get time block: %v", err)
	}
	if tb != nil {
		t.Error("expected nil when the event has no time block")
	}

	raw, _ := json.Marshal(timeBlockContent())
	if _, err := s.Create(event.ID, model.BlockTypeRSVP, "RSVP", 0, nil); err != nil {
		t.Fatalf("create rsvp: %v", err)
	}
	if _, err := s.Create(event.ID, model.BlockTypeTime, "When", 1, raw); err != nil {
		t.Fatalf("create time: %v", err)
	}

	tb, err = s.GetTimeBlock(event.ID)
	if err != nil {
		t.Fatalf("get time block: %v", err)
	}
	if tb == nil || tb.Title != "When" {
		t.Errorf("got %+v, want the time block", tb)
	}
}

func TestDeleteBlockCascades(t *testing.T) {
	db := newTestDB(t)
	block := newTestBlock(t, db, model.BlockTypeTime, timeBlockContent())
	avail := NewAvailabilityStore(db)

	sub := model.ParticipantAvailability{
		ParticipantID: "guest-1", ParticipantName: "Ana",
		TimeSlots: []model.TimeSlot{{Date: "2025-06-01", StartTime: "09:00", EndTime: "09:30", Available: true}},
	}
	if err := avail.Replace(block.ID, sub); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := NewBlockStore(db).Delete(block.ID); err != nil {
		t.Fatalf("delete block: %v", err)
	}

	subs, err := avail.ListByBlock(block.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("len = %d, want submissions gone with the block", len(subs))
	}
}
