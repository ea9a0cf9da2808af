package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

type BlockHandler struct {
	eventStore *store.EventStore
	blockStore *store.BlockStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewBlockHandler(es *store.EventStore, bs *store.BlockStore, hub *websocket.Hub, logger *slog.Logger) *BlockHandler {
	return &BlockHandler{eventStore: es, blockStore: bs, hub: hub, logger: logger}
}

func (h *BlockHandler) broadcast(eventID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(eventID, msg)
	}
}

type blockRequest struct {
	Type     model.BlockType `json:"type"`
	Title    string          `json:"title"`
	Position int             `json:"position"`
	Content  json.RawMessage `json:"content"`
}

// validateContent rejects content payloads the block's type can't decode.
func validateContent(blockType model.BlockType, content json.RawMessage) string {
	if len(content) == 0 {
		return ""
	}
	probe := model.Block{Type: blockType, Content: content}
	switch blockType {
	case model.BlockTypeTime:
		if _, err := probe.TimeContent(); err != nil {
			return "invalid time block content"
		}
	case model.BlockTypePoll:
		if _, err := probe.PollContent(); err != nil {
			return "invalid poll block content"
		}
	default:
		if !json.Valid(content) {
			return "content must be valid JSON"
		}
	}
	return ""
}

func (h *BlockHandler) Create(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.eventStore.GetByID(eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil || event.OrganizerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if !model.ValidBlockType(req.Type) {
		writeError(w, http.StatusBadRequest, "unknown block type")
		return
	}
	if msg := validateContent(req.Type, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// One time block per event: the finalization oracle reads a single grid
	if req.Type == model.BlockTypeTime {
		existing, err := h.blockStore.GetTimeBlock(event.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check blocks")
			return
		}
		if existing != nil {
			writeError(w, http.StatusConflict, "event already has a time block")
			return
		}
	}

	block, err := h.blockStore.Create(event.ID, req.Type, strings.TrimSpace(req.Title), req.Position, req.Content)
	if err != nil {
		h.logger.Error("create block", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create block")
		return
	}

	h.broadcast(event.ID, websocket.NewMessage("block", "created", block.ID, nil))
	writeJSON(w, http.StatusCreated, block)
}

func (h *BlockHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.eventStore.GetByID(eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil || event.OrganizerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	blocks, err := h.blockStore.ListByEvent(event.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list blocks")
		return
	}
	if blocks == nil {
		blocks = []model.Block{}
	}
	writeJSON(w, http.StatusOK, blocks)
}

// ownedBlock loads the block in the path and checks the caller organizes its event.
func (h *BlockHandler) ownedBlock(w http.ResponseWriter, r *http.Request) *model.Block {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	block, err := h.blockStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load block")
		return nil
	}
	if block == nil {
		writeError(w, http.StatusNotFound, "block not found")
		return nil
	}

	event, err := h.eventStore.GetByID(block.EventID)
	if err != nil || event == nil || event.OrganizerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "block not found")
		return nil
	}
	return block
}

func (h *BlockHandler) Update(w http.ResponseWriter, r *http.Request) {
	block := h.ownedBlock(w, r)
	if block == nil {
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := validateContent(block.Type, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = block.Title
	}
	content := req.Content
	if len(content) == 0 {
		content = block.Content
	}

	updated, err := h.blockStore.Update(block.ID, title, req.Position, content)
	if err != nil {
		h.logger.Error("update block", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update block")
		return
	}

	h.broadcast(block.EventID, websocket.NewMessage("block", "updated", block.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *BlockHandler) Delete(w http.ResponseWriter, r *http.Request) {
	block := h.ownedBlock(w, r)
	if block == nil {
		return
	}

	if err := h.blockStore.Delete(block.ID); err != nil {
		h.logger.Error("delete block", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete block")
		return
	}

	h.broadcast(block.EventID, websocket.NewMessage("block", "deleted", block.ID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
