package model

import "time"

// Notification type constants
const (
	NotifTypeAvailabilitySubmitted = "availability_submitted"
	NotifTypeRSVPReceived          = "rsvp_received"
	NotifTypeEventFinalized        = "event_finalized"
)

// PushSubscription is an organizer's browser push endpoint, used to notify
// about guest activity and auto-finalization.
type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
