package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/store"
)

// Notifier fans out event activity to the organizer's devices. Guests have
// no accounts, so only organizers receive push notifications.
type Notifier struct {
	service *Service
	push    *store.PushStore
	logger  *slog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(svc *Service, pushStore *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: svc,
		push:    pushStore,
		logger:  logger,
	}
}

// AvailabilitySubmitted notifies the organizer that a participant filled in
// their availability grid.
func (n *Notifier) AvailabilitySubmitted(event *model.Event, participantName string) {
	n.sendToOrganizer(event, Payload{
		Title: event.Title,
		Body:  fmt.Sprintf("%s shared their availability", participantName),
		URL:   "/e/" + event.ShareCode,
		Tag:   fmt.Sprintf("%s-%d", model.NotifTypeAvailabilitySubmitted, event.ID),
	})
}

// RSVPReceived notifies the organizer of a new or changed RSVP.
func (n *Notifier) RSVPReceived(event *model.Event, participantName string, status model.RSVPStatus) {
	n.sendToOrganizer(event, Payload{
		Title: event.Title,
		Body:  fmt.Sprintf("%s responded: %s", participantName, status),
		URL:   "/e/" + event.ShareCode,
		Tag:   fmt.Sprintf("%s-%d", model.NotifTypeRSVPReceived, event.ID),
	})
}

// EventFinalized notifies the organizer that the deadline sweep locked in
// their event.
func (n *Notifier) EventFinalized(event *model.Event) {
	n.sendToOrganizer(event, Payload{
		Title: "Event finalized",
		Body:  fmt.Sprintf("%s is locked in", event.Title),
		URL:   "/e/" + event.ShareCode,
		Tag:   fmt.Sprintf("%s-%d", model.NotifTypeEventFinalized, event.ID),
	})
}

func (n *Notifier) sendToOrganizer(event *model.Event, payload Payload) {
	subs, err := n.push.ListByUser(event.OrganizerID)
	if err != nil {
		n.logger.Error("list push subscriptions", "event_id", event.ID, "error", err)
		return
	}

	for _, sub := range subs {
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				n.push.DeleteByEndpoint(sub.Endpoint)
				continue
			}
			n.logger.Error("send push", "event_id", event.ID, "error", err)
		}
	}
}
