package websocket

import (
	"log"
	"net/http"

	ws "github.com/coder/websocket"
)

// EventResolver maps an incoming request (share code in the path) to the
// event id whose room the connection should join.
type EventResolver func(r *http.Request) (int64, error)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as clients of the resolved event's room.
func HandleWebSocket(hub *Hub, resolve EventResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := resolve(r)
		if err != nil {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Guests connect from arbitrary origins via the share link
		})
		if err != nil {
			log.Printf("websocket: accept: %v", err)
			return
		}

		client := NewClient(hub, conn, eventID)
		client.Run(r.Context())
	}
}
