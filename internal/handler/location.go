package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type LocationHandler struct {
	eventStore    *store.EventStore
	blockStore    *store.BlockStore
	locationStore *store.LocationStore
	guestStore    *store.GuestStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewLocationHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	ls *store.LocationStore,
	gs *store.GuestStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *LocationHandler {
	return &LocationHandler{
		eventStore:    es,
		blockStore:    bs,
		locationStore: ls,
		guestStore:    gs,
		hub:           hub,
		logger:        logger,
	}
}

type locationRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	URL         string `json:"url"`
	SubmittedBy string `json:"submitted_by"`
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeLocation)
	if serr != nil {
		serr.write(w)
		return
	}

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	_, by, serr := participantIdentity(r, h.guestStore, req.SubmittedBy)
	if serr != nil {
		serr.write(w)
		return
	}

	suggestion, err := h.locationStore.Create(block.ID, req.Name, req.Address, req.URL, by)
	if err != nil {
		h.logger.Error("create location", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add suggestion")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("location", "created", block.ID, nil))
	}
	writeJSON(w, http.StatusCreated, suggestion)
}

func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeLocation)
	if serr != nil {
		serr.write(w)
		return
	}

	suggestions, err := h.locationStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []model.LocationSuggestion{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// sharedSuggestion loads a suggestion by id scoped to the shared event.
func (h *LocationHandler) sharedSuggestion(w http.ResponseWriter, r *http.Request, event *model.Event) *model.LocationSuggestion {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}
	suggestion, err := h.locationStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load suggestion")
		return nil
	}
	if suggestion == nil {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return nil
	}
	block, err := h.blockStore.GetByID(suggestion.BlockID)
	if err != nil || block == nil || block.EventID != event.ID {
		writeError(w, http.StatusNotFound, "suggestion not found")
		return nil
	}
	return suggestion
}

type locationVoteRequest struct {
	Name string `json:"name"`
}

// Vote adds the caller's vote for a venue; voting twice is a no-op.
func (h *LocationHandler) Vote(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	suggestion := h.sharedSuggestion(w, r, event)
	if suggestion == nil {
		return
	}

	var req locationVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	participantID, name, serr := participantIdentity(r, h.guestStore, req.Name)
	if serr != nil {
		serr.write(w)
		return
	}

	if err := h.locationStore.Vote(suggestion.ID, participantID, name); err != nil {
		h.logger.Error("location vote", "suggestion_id", suggestion.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save vote")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("location", "voted", suggestion.BlockID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Unvote withdraws the caller's vote.
func (h *LocationHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	suggestion := h.sharedSuggestion(w, r, event)
	if suggestion == nil {
		return
	}

	participantID, _, serr := participantIdentity(r, nil, "")
	if serr != nil {
		serr.write(w)
		return
	}

	if err := h.locationStore.Unvote(suggestion.ID, participantID); err != nil {
		h.logger.Error("location unvote", "suggestion_id", suggestion.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove vote")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("location", "voted", suggestion.BlockID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
