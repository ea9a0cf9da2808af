package handler

import (
	"net/http"
	"strings"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
)

// scopeErr carries an HTTP status alongside a client-safe message.
type scopeErr struct {
	status int
	msg    string
}

func (e *scopeErr) write(w http.ResponseWriter) {
	writeError(w, e.status, e.msg)
}

// resolveSharedEvent looks up the event behind a share code. Drafts are
// invisible to guests: the link only works once the organizer publishes.
func resolveSharedEvent(events *store.EventStore, r *http.Request) (*model.Event, *scopeErr) {
	code := r.PathValue("code")
	if code == "" {
		return nil, &scopeErr{http.StatusBadRequest, "missing share code"}
	}

	event, err := events.GetByShareCode(code)
	if err != nil {
		return nil, &scopeErr{http.StatusInternalServerError, "failed to load event"}
	}
	if event == nil || event.Status == model.StatusDraft {
		return nil, &scopeErr{http.StatusNotFound, "event not found"}
	}
	return event, nil
}

// resolveSharedBlock loads a block and checks it actually belongs to the
// share-linked event, so block ids can't be guessed across events.
func resolveSharedBlock(blocks *store.BlockStore, event *model.Event, r *http.Request, wantType model.BlockType) (*model.Block, *scopeErr) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, &scopeErr{http.StatusBadRequest, "invalid block id"}
	}

	block, err := blocks.GetByID(id)
	if err != nil {
		return nil, &scopeErr{http.StatusInternalServerError, "failed to load block"}
	}
	if block == nil || block.EventID != event.ID {
		return nil, &scopeErr{http.StatusNotFound, "block not found"}
	}
	if wantType != "" && block.Type != wantType {
		return nil, &scopeErr{http.StatusBadRequest, "wrong block type"}
	}
	return block, nil
}

// requireWritable rejects guest writes once the event is finalized.
func requireWritable(event *model.Event) *scopeErr {
	if event.Status == model.StatusFinalized {
		return &scopeErr{http.StatusConflict, "event is finalized"}
	}
	return nil
}

// participantIdentity resolves the caller's stable participant id and display
// name. Guests who supply a name get it remembered for future visits.
func participantIdentity(r *http.Request, guests *store.GuestStore, submittedName string) (string, string, *scopeErr) {
	ctx := r.Context()
	submittedName = strings.TrimSpace(submittedName)

	if uc, ok := auth.UserFromContext(ctx); ok {
		name := submittedName
		if name == "" {
			name = uc.Email
		}
		return auth.ParticipantID(ctx), name, nil
	}

	gc, ok := auth.GuestFromContext(ctx)
	if !ok {
		return "", "", &scopeErr{http.StatusUnauthorized, "no participant identity"}
	}

	name := submittedName
	if name == "" {
		name = gc.Name
	}
	if name == "" {
		return "", "", &scopeErr{http.StatusBadRequest, "name is required"}
	}

	if guests != nil {
		if _, err := guests.Upsert(gc.GuestID, submittedName); err != nil {
			return "", "", &scopeErr{http.StatusInternalServerError, "failed to save guest"}
		}
	}
	return gc.GuestID, name, nil
}
