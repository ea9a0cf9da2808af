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

type BudgetHandler struct {
	eventStore  *store.EventStore
	blockStore  *store.BlockStore
	budgetStore *store.BudgetStore
	guestStore  *store.GuestStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewBudgetHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	bgs *store.BudgetStore,
	gs *store.GuestStore,
	hub *websocket.Hub,
	logger *slog.Logger,
) *BudgetHandler {
	return &BudgetHandler{
		eventStore:  es,
		blockStore:  bs,
		budgetStore: bgs,
		guestStore:  gs,
		hub:         hub,
		logger:      logger,
	}
}

type budgetItemRequest struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeBudget)
	if serr != nil {
		serr.write(w)
		return
	}

	var req budgetItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}
	if req.AmountCents < 0 {
		writeError(w, http.StatusBadRequest, "amount cannot be negative")
		return
	}

	_, name, serr := participantIdentity(r, h.guestStore, req.Name)
	if serr != nil {
		serr.write(w)
		return
	}

	item, err := h.budgetStore.Create(block.ID, req.Label, req.AmountCents, req.Category, name)
	if err != nil {
		h.logger.Error("create budget item", "block_id", block.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("budget", "updated", block.ID, nil))
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	block, serr := resolveSharedBlock(h.blockStore, event, r, model.BlockTypeBudget)
	if serr != nil {
		serr.write(w)
		return
	}

	items, err := h.budgetStore.ListByBlock(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.BudgetItem{}
	}

	total, err := h.budgetStore.Total(block.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to total budget")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"total_cents": total,
	})
}

// Delete removes a budget item from a block on the shared event.
func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}
	if serr := requireWritable(event); serr != nil {
		serr.write(w)
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, err := h.budgetStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	block, err := h.blockStore.GetByID(item.BlockID)
	if err != nil || block == nil || block.EventID != event.ID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.budgetStore.Delete(item.ID); err != nil {
		h.logger.Error("delete budget item", "item_id", item.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(event.ID, websocket.NewMessage("budget", "updated", block.ID, nil))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
