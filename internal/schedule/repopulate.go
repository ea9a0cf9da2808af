package schedule

import "github.com/codedbycupidity/alignr/internal/model"

type slotKey struct {
	date  string
	start string
}

// ApplyPrior overlays a prior submission onto a freshly generated grid.
// Slots match on (date, start time) only; end time is not part of the key
// because the grid shape is fixed per block. Grid slots with no prior match
// stay unavailable. The input grid is not modified.
func ApplyPrior(grid, prior []model.TimeSlot) []model.TimeSlot {
	marked := make(map[slotKey]bool, len(prior))
	for _, s := range prior {
		marked[slotKey{s.Date, s.StartTime}] = s.Available
	}

	out := make([]model.TimeSlot, len(grid))
	for i, s := range grid {
		if available, ok := marked[slotKey{s.Date, s.StartTime}]; ok {
			s.Available = available
		}
		out[i] = s
	}
	return out
}

type sessionState int

const (
	sessionUninitialized sessionState = iota
	sessionInitialized
)

// GridSession guards re-population for one editing session: the prior
// submission is overlaid exactly once, so re-running Apply on every render
// cannot clobber edits the participant has made since.
type GridSession struct {
	state sessionState
}

func NewGridSession() *GridSession {
	return &GridSession{state: sessionUninitialized}
}

// Initialized reports whether the prior submission has already been applied.
func (g *GridSession) Initialized() bool {
	return g.state == sessionInitialized
}

// Apply overlays prior onto grid on the first call. Every later call returns
// grid untouched.
func (g *GridSession) Apply(grid, prior []model.TimeSlot) []model.TimeSlot {
	if g.state == sessionInitialized {
		return grid
	}
	g.state = sessionInitialized
	return ApplyPrior(grid, prior)
}
