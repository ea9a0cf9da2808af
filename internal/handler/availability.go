package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/push"
	"github.com/codedbycupidity/alignr/internal/schedule"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type AvailabilityHandler struct {
	eventStore        *store.EventStore
	blockStore        *store.BlockStore
	availabilityStore *store.AvailabilityStore
	guestStore        *store.GuestStore
	hub               *websocket.Hub
	notifier          *push.Notifier
	logger            *slog.Logger
}

func NewAvailabilityHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	as *store.AvailabilityStore,
	gs *store.GuestStore,
	hub *websocket.Hub,
	notifier *push.Notifier,
	logger *slog.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		eventStore:        es,
		blockStore:        bs,
		availabilityStore: as,
		guestStore:        gs,
		hub:               hub,
		notifier:          notifier,
		logger:            logger,
	}
}

// blockGrid builds the empty slot grid a time block currently describes.
func blockGrid(block *model.Block) ([]model.TimeSlot, *model.TimeBlockContent, error) {
	content, err := block.TimeContent()
	if err != nil {
		return nil, nil, err
	}
	if content.Mode != model.ModeAvailability {
		return []model.TimeSlot{}, content, nil
	}
	dates := schedule.ResolveDates(content, time.Now())
	grid, err := schedule.GenerateSlots(dates, content.StartTime, content.EndTime, content.IntervalMinutes)
	if err != nil {
		return nil, nil, err
	}
	return grid, content, nil
}

// Grid returns the caller's editable slot grid. Slots from the participant's
// prior submission arrive pre-checked; slots the organizer added since then
// start unavailable.
func (h *AvailabilityHandler) Grid(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeTime)
	if serr != nil {
		serr.write(w)
		return
	}

	grid, content, err := blockGrid(block)
	if err != nil {
		h.logger.Error("build grid", "block_id", block.ID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "time block has an invalid schedule")
		return
	}

	var prior *model.ParticipantAvailability
	if participantID := auth.ParticipantID(r.Context()); participantID != "" {
		prior, err = h.availabilityStore.GetByParticipant(block.ID, participantID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load prior submission")
			return
		}
	}
	if prior != nil {
		grid = schedule.ApplyPrior(grid, prior.TimeSlots)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":       content.Mode,
		"time_slots": grid,
		"submitted":  prior != nil,
	})
}

type availabilityRequest struct {
	Name      string           `json:"name"`
	TimeSlots []model.TimeSlot `json:"time_slots"`
}

// Submit replaces the caller's availability wholesale. There is no merge:
// concurrent submissions from two tabs resolve last-writer-wins.
func (h *AvailabilityHandler) Submit(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeTime)
	if serr != nil {
		serr.write(w)
		return
	}

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	participantID, name, serr := participantIdentity(r, h.guestStore, req.Name)
	if serr != nil {
		serr.write(w)
		return
	}

	for _, slot := range req.TimeSlots {
		if slot.Date == "" || slot.StartTime == "" {
			writeError(w, http.StatusBadRequest, "every slot needs a date and start time")
			return
		}
	}

	sub := model.ParticipantAvailability{
		ParticipantID:   participantID,
		ParticipantName: name,
		TimeSlots:       req.TimeSlots,
	}
	if err := h.availabilityStore.Replace(block.ID, sub); err != nil {
		h.logger.Error("replace availability", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save availability")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("availability", "submitted", block.ID, map[string]any{
			"participant_name": name,
		}))
	}
	if h.notifier != nil {
		h.notifier.AvailabilitySubmitted(event, name)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type heatSlot struct {
	Date      string   `json:"date"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Count     int      `json:"count"`
	Tier      int      `json:"tier"`
	Names     []string `json:"names"`
}

// Heatmap aggregates every participant's submission into per-slot counts and
// heat tiers.
func (h *AvailabilityHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeTime)
	if serr != nil {
		serr.write(w)
		return
	}

	grid, _, err := blockGrid(block)
	if err != nil {
		h.logger.Error("build grid", "block_id", block.ID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "time block has an invalid schedule")
		return
	}

	subs, err := h.availabilityStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load submissions")
		return
	}

	slots := make([]heatSlot, 0, len(grid))
	for _, cell := range grid {
		agg, err := schedule.CountAvailable(subs, cell.Date, cell.StartTime)
		if err != nil {
			if errors.Is(err, schedule.ErrMalformedSubmission) {
				h.logger.Error("malformed submission in heatmap", "block_id", block.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "stored submissions are corrupt")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to aggregate availability")
			return
		}
		slots = append(slots, heatSlot{
			Date:      cell.Date,
			StartTime: cell.StartTime,
			EndTime:   cell.EndTime,
			Count:     agg.Count,
			Tier:      schedule.HeatTier(agg.Count, len(subs)),
			Names:     agg.Names,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"participants": len(subs),
		"slots":        slots,
	})
}
