package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, eventID int64) *Client {
	return &Client{
		hub:     hub,
		conn:    nil,
		eventID: eventID,
		send:    make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.RoomCount(1); got != 2 {
		t.Fatalf("expected 2 clients in room, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.RoomCount(1); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.RoomCount(1); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesRoom(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)
	hub.Register(c1)
	hub.Register(c2)

	msg := NewMessage("availability", "submitted", 42, map[string]any{"participant": "Maya"})
	hub.Broadcast(1, msg)

	// Check both clients received the message
	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "availability_submitted" {
				t.Errorf("expected type availability_submitted, got %s", got.Type)
			}
			if got.Entity != "availability" {
				t.Errorf("expected entity availability, got %s", got.Entity)
			}
			if got.BlockID != 42 {
				t.Errorf("expected block id 42, got %d", got.BlockID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	hub.Unregister(c1)
	hub.Unregister(c2)
}

func TestBroadcastScopedToEvent(t *testing.T) {
	hub := NewHub(slog.Default())

	inRoom := mockClient(hub, 1)
	otherRoom := mockClient(hub, 2)
	hub.Register(inRoom)
	hub.Register(otherRoom)

	hub.Broadcast(1, NewMessage("rsvp", "updated", 7, nil))

	select {
	case <-inRoom.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for in-room message")
	}

	select {
	case <-otherRoom.send:
		t.Fatal("client in another event's room received the message")
	default:
	}

	hub.Unregister(inRoom)
	hub.Unregister(otherRoom)
}

func TestBroadcastEmptyRoom(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	msg := NewMessage("poll", "voted", 1, nil)
	hub.Broadcast(99, msg)
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 1)
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage("test", "fill", int64(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, NewMessage("test", "dropped", 999, nil))

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestEmptyRoomPruned(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, 5)
	hub.Register(c)
	hub.Unregister(c)

	hub.mu.RLock()
	_, ok := hub.rooms[5]
	hub.mu.RUnlock()
	if ok {
		t.Error("expected empty room to be removed")
	}
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("block", "updated", 5, nil)
	if msg.Type != "block_updated" {
		t.Errorf("expected type block_updated, got %s", msg.Type)
	}
	if msg.Entity != "block" {
		t.Errorf("expected entity block, got %s", msg.Entity)
	}
	if msg.Action != "updated" {
		t.Errorf("expected action updated, got %s", msg.Action)
	}
	if msg.BlockID != 5 {
		t.Errorf("expected block id 5, got %d", msg.BlockID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, broadcast, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(eventID int64) {
			defer wg.Done()
			c := mockClient(hub, eventID)
			hub.Register(c)
			hub.Broadcast(eventID, NewMessage("test", "concurrent", 0, nil))
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i % 3))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
