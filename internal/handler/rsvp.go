package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/push"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type RSVPHandler struct {
	eventStore *store.EventStore
	blockStore *store.BlockStore
	rsvpStore  *store.RSVPStore
	guestStore *store.GuestStore
	hub        *websocket.Hub
	notifier   *push.Notifier
	logger     *slog.Logger
}

func NewRSVPHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	rs *store.RSVPStore,
	gs *store.GuestStore,
	hub *websocket.Hub,
	notifier *push.Notifier,
	logger *slog.Logger,
) *RSVPHandler {
	return &RSVPHandler{
		eventStore: es,
		blockStore: bs,
		rsvpStore:  rs,
		guestStore: gs,
		hub:        hub,
		notifier:   notifier,
		logger:     logger,
	}
}

var validRSVPStatuses = map[model.RSVPStatus]bool{
	model.RSVPGoing:    true,
	model.RSVPMaybe:    true,
	model.RSVPDeclined: true,
}

type rsvpRequest struct {
	Name       string           `json:"name"`
	Status     model.RSVPStatus `json:"status"`
	GuestCount int              `json:"guest_count"`
	Note       string           `json:"note"`
}

// Respond saves or replaces the caller's RSVP.
func (h *RSVPHandler) Respond(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeRSVP)
	if serr != nil {
		serr.write(w)
		return
	}

	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !validRSVPStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "status must be going, maybe, or declined")
		return
	}
	if req.GuestCount < 0 || req.GuestCount > 20 {
		writeError(w, http.StatusBadRequest, "guest count out of range")
		return
	}

	participantID, name, serr := participantIdentity(r, h.guestStore, req.Name)
	if serr != nil {
		serr.write(w)
		return
	}

	entry, err := h.rsvpStore.Upsert(block.ID, model.RSVPEntry{
		ParticipantID:   participantID,
		ParticipantName: name,
		Status:          req.Status,
		GuestCount:      req.GuestCount,
		Note:            req.Note,
	})
	if err != nil {
		h.logger.Error("upsert rsvp", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save RSVP")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("rsvp", "updated", block.ID, nil))
	}
	if h.notifier != nil {
		h.notifier.RSVPReceived(event, name, req.Status)
	}

	writeJSON(w, http.StatusOK, entry)
}

// List returns everyone's responses plus headcount totals.
func (h *RSVPHandler) List(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeRSVP)
	if serr != nil {
		serr.write(w)
		return
	}

	entries, err := h.rsvpStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list RSVPs")
		return
	}
	if entries == nil {
		entries = []model.RSVPEntry{}
	}

	counts, err := h.rsvpStore.Counts(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count RSVPs")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"counts":  counts,
	})
}
