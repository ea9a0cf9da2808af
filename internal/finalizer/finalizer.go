package finalizer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/schedule"
	"github.com/codedbycupidity/alignr/internal/store"
)

const defaultInterval = 60 * time.Second

// Hooks are the side effects fired after an event flips to finalized. All
// are optional.
type Hooks struct {
	// Notify pushes a "locked in" notification to the organizer's devices.
	Notify func(event *model.Event)
	// Email sends the organizer a finalized summary.
	Email func(event *model.Event)
	// Broadcast tells connected clients the event changed.
	Broadcast func(event *model.Event)
}

// Sweeper periodically walks active events and finalizes the ones whose
// deadline has passed. Finalization is also checked on event reads, so the
// sweep only matters for events nobody is looking at.
type Sweeper struct {
	mu       sync.RWMutex
	events   *store.EventStore
	blocks   *store.BlockStore
	hooks    Hooks
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewSweeper creates a deadline sweeper.
func NewSweeper(events *store.EventStore, blocks *store.BlockStore, hooks Hooks, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		events:   events,
		blocks:   blocks,
		hooks:    hooks,
		logger:   logger,
		interval: defaultInterval,
		now:      time.Now,
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Sweep(); err != nil {
					s.logger.Error("finalize sweep", "error", err)
				}
			}
		}
	}()
}

// Stop gracefully stops the sweeper.
func (s *Sweeper) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Sweep checks every active event once. Failures on individual events do not
// stop the sweep; they are collected and returned together.
func (s *Sweeper) Sweep() error {
	active, err := s.events.ListActive()
	if err != nil {
		return fmt.Errorf("list active events: %w", err)
	}

	now := s.now()
	var errs error
	for i := range active {
		if _, err := s.CheckEvent(&active[i], now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("event %d: %w", active[i].ID, err))
		}
	}
	return errs
}

// CheckEvent finalizes the event if its deadline has passed, firing hooks on
// the transition. It returns true only for the call that actually flipped
// the status; concurrent checks of the same event are safe.
func (s *Sweeper) CheckEvent(event *model.Event, now time.Time) (bool, error) {
	if event.Status != model.StatusActive {
		return false, nil
	}

	block, err := s.blocks.GetTimeBlock(event.ID)
	if err != nil {
		return false, fmt.Errorf("get time block: %w", err)
	}
	if block == nil {
		return false, nil
	}

	content, err := block.TimeContent()
	if err != nil {
		return false, fmt.Errorf("decode time block: %w", err)
	}

	if !schedule.ShouldFinalize(content, now) {
		return false, nil
	}

	flipped, err := s.events.Finalize(event.ID, now)
	if err != nil {
		return false, fmt.Errorf("finalize: %w", err)
	}
	if !flipped {
		return false, nil
	}

	s.logger.Info("event finalized", "event_id", event.ID, "share_code", event.ShareCode)

	event.Status = model.StatusFinalized
	event.FinalizedAt = &now

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()

	if hooks.Notify != nil {
		hooks.Notify(event)
	}
	if hooks.Email != nil {
		hooks.Email(event)
	}
	if hooks.Broadcast != nil {
		hooks.Broadcast(event)
	}
	return true, nil
}
