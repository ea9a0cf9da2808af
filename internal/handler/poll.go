package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type PollHandler struct {
	eventStore *store.EventStore
	blockStore *store.BlockStore
	pollStore  *store.PollStore
	guestStore *store.GuestStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewPollHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	ps *store.PollStore,
	gs *store.GuestStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *PollHandler {
	return &PollHandler{
		eventStore: es,
		blockStore: bs,
		pollStore:  ps,
		guestStore: gs,
		hub:        hub,
		logger:     logger,
	}
}

type voteRequest struct {
	Name      string   `json:"name"`
	OptionIDs []string `json:"option_ids"`
}

// Vote replaces the caller's vote set. Multi-select is gated by the block's
// AllowMultiple setting; unknown option ids are rejected.
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypePoll)
	if serr != nil {
		serr.write(w)
		return
	}

	content, err := block.PollContent()
	if err != nil {
		h.logger.Error("decode poll block", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to decode poll")
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.OptionIDs) == 0 {
		writeError(w, http.StatusBadRequest, "pick at least one option")
		return
	}
	if !content.AllowMultiple && len(req.OptionIDs) > 1 {
		writeError(w, http.StatusBadRequest, "this poll allows a single choice")
		return
	}

	valid := make(map[string]bool, len(content.Options))
	for _, opt := range content.Options {
		valid[opt.ID] = true
	}
	for _, id := range req.OptionIDs {
		if !valid[id] {
			writeError(w, http.StatusBadRequest, "unknown option")
			return
		}
	}

	participantID, name, serr := participantIdentity(r, h.guestStore, req.Name)
	if serr != nil {
		serr.write(w)
		return
	}

	vote := model.PollVote{
		ParticipantID:   participantID,
		ParticipantName: name,
		OptionIDs:       req.OptionIDs,
	}
	if err := h.pollStore.ReplaceVote(block.ID, vote); err != nil {
		h.logger.Error("replace vote", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save vote")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("poll", "voted", block.ID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Results tallies the poll against its current options.
func (h *PollHandler) Results(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypePoll)
	if serr != nil {
		serr.write(w)
		return
	}

	content, err := block.PollContent()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to decode poll")
		return
	}

	results, err := h.pollStore.Results(block.ID, content.Options)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to tally poll")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"question": content.Question,
		"results":  results,
	})
}
