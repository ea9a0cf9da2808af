package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/email"
	"github.com/codedbycupidity/alignr/internal/finalizer"
	"github.com/codedbycupidity/alignr/internal/ics"
	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
	"github.com/codedbycupidity/alignr/internal/websocket"
)

const inviteTTL = 7 * 24 * time.Hour

type EventHandler struct {
	eventStore    *store.EventStore
	blockStore    *store.BlockStore
	locationStore *store.LocationStore
	sweeper       *finalizer.Sweeper
	emailClient   *email.Client
	hub           *websocket.Hub
	inviteSecret  []byte
	logger        *slog.Logger
}

func NewEventHandler(
	es *store.EventStore,
	bs *store.BlockStore,
	ls *store.LocationStore,
	sweeper *finalizer.Sweeper,
	ec *email.Client,
	hub *websocket.Hub,
	inviteSecret []byte,
	logger *slog.Logger,
) *EventHandler {
	return &EventHandler{
		eventStore:    es,
		blockStore:    bs,
		locationStore: ls,
		sweeper:       sweeper,
		emailClient:   ec,
		hub:           hub,
		inviteSecret:  inviteSecret,
		logger:        logger,
	}
}

func (h *EventHandler) broadcast(eventID int64, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(eventID, msg)
	}
}

// ownedEvent loads the event in the path and checks the caller organizes it.
func (h *EventHandler) ownedEvent(w http.ResponseWriter, r *http.Request) *model.Event {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return nil
	}
	if event == nil || event.OrganizerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusNotFound, "event not found")
		return nil
	}
	return event
}

type eventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	event, err := h.eventStore.Create(req.Title, req.Description, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListByOrganizer(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}
	h.checkDeadline(event)
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	updated, err := h.eventStore.Update(event.ID, req.Title, req.Description)
	if err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.broadcast(event.ID, websocket.NewMessage("event", "updated", 0, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	if err := h.eventStore.Delete(event.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Publish flips a draft to active, making the share link live.
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	updated, err := h.eventStore.Publish(event.ID)
	if err != nil {
		h.logger.Error("publish event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish event")
		return
	}
	if updated.Status != model.StatusActive {
		writeError(w, http.StatusConflict, "only draft events can be published")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Finalize locks the event in by hand, ahead of any deadline.
func (h *EventHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}
	if event.Status == model.StatusDraft {
		writeError(w, http.StatusConflict, "publish the event before finalizing")
		return
	}

	now := time.Now().UTC()
	flipped, err := h.eventStore.Finalize(event.ID, now)
	if err != nil {
		h.logger.Error("finalize event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to finalize event")
		return
	}
	if flipped {
		h.broadcast(event.ID, websocket.NewMessage("event", "finalized", 0, nil))
	}

	updated, err := h.eventStore.GetByID(event.ID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type inviteRequest struct {
	Email string `json:"email"`
}

// Invite emails a signed link that lets another organizer join the event.
func (h *EventHandler) Invite(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	addr := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(addr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	token, err := auth.NewInviteToken(h.inviteSecret, event.ID, addr, inviteTTL)
	if err != nil {
		h.logger.Error("sign invite token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create invite")
		return
	}

	if err := h.emailClient.SendInvite(addr, event.Title, token); err != nil {
		h.logger.Error("send invite", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send invite")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "invite_sent"})
}

// AcceptInvite resolves an emailed invite token to the event's share code so
// the invitee can open the canvas.
func (h *EventHandler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseInviteToken(h.inviteSecret, r.URL.Query().Get("token"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or expired invite")
		return
	}

	event, err := h.eventStore.GetByID(claims.EventID)
	if err != nil {
		h.logger.Error("get invited event", "event_id", claims.EventID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"share_code": event.ShareCode,
		"title":      event.Title,
		"email":      claims.Email,
	})
}

// ExportICS serves the finalized event as an iCalendar file.
func (h *EventHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	event := h.ownedEvent(w, r)
	if event == nil {
		return
	}
	if event.Status != model.StatusFinalized {
		writeError(w, http.StatusConflict, "event is not finalized yet")
		return
	}

	block, err := h.blockStore.GetTimeBlock(event.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load time block")
		return
	}
	if block == nil {
		writeError(w, http.StatusNotFound, "event has no time block")
		return
	}
	content, err := block.TimeContent()
	if err != nil {
		h.logger.Error("decode time block", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to decode time block")
		return
	}

	out, err := ics.Export(event, content, h.topLocation(event.ID))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+event.ShareCode+`.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

// topLocation returns the name of the event's most-voted venue, if any.
func (h *EventHandler) topLocation(eventID int64) string {
	blocks, err := h.blockStore.ListByEvent(eventID)
	if err != nil {
		return ""
	}
	for _, b := range blocks {
		if b.Type != model.BlockTypeLocation {
			continue
		}
		suggestions, err := h.locationStore.ListByBlock(b.ID)
		if err != nil || len(suggestions) == 0 {
			return ""
		}
		top := suggestions[0]
		for _, s := range suggestions[1:] {
			if s.VoteCount > top.VoteCount {
				top = s
			}
		}
		return top.Name
	}
	return ""
}

// Shared resolves a share code for guests: the event plus its blocks. Reads
// also run the finalization check so overdue events lock even between sweeps.
func (h *EventHandler) Shared(w http.ResponseWriter, r *http.Request) {
	event, serr := resolveSharedEvent(h.eventStore, r)
	if serr != nil {
		serr.write(w)
		return
	}

	h.checkDeadline(event)

	blocks, err := h.blockStore.ListByEvent(event.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load blocks")
		return
	}
	if blocks == nil {
		blocks = []model.Block{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":  event,
		"blocks": blocks,
	})
}

func (h *EventHandler) checkDeadline(event *model.Event) {
	if h.sweeper == nil {
		return
	}
	if _, err := h.sweeper.CheckEvent(event, time.Now()); err != nil {
		h.logger.Error("deadline check", "event_id", event.ID, "error", err)
	}
}
