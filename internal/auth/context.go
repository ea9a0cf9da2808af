package auth

import (
	"context"
	"strconv"
)

type userKey struct{}
type guestKey struct{}

// UserContext identifies an authenticated organizer.
type UserContext struct {
	UserID    int64
	Email     string
	SessionID int64
}

// GuestContext identifies an accountless participant by generated id.
type GuestContext struct {
	GuestID string
	Name    string
}

func WithUser(ctx context.Context, uc UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, uc)
}

func UserFromContext(ctx context.Context) (UserContext, bool) {
	uc, ok := ctx.Value(userKey{}).(UserContext)
	return uc, ok
}

func UserID(ctx context.Context) int64 {
	uc, ok := UserFromContext(ctx)
	if !ok {
		return 0
	}
	return uc.UserID
}

func WithGuest(ctx context.Context, gc GuestContext) context.Context {
	return context.WithValue(ctx, guestKey{}, gc)
}

func GuestFromContext(ctx context.Context) (GuestContext, bool) {
	gc, ok := ctx.Value(guestKey{}).(GuestContext)
	return gc, ok
}

// ParticipantID returns the caller's stable participant identity: a prefixed
// user id for organizers (so user ids and guest UUIDs share one namespace),
// the guest id otherwise. Empty when neither is present.
func ParticipantID(ctx context.Context) string {
	if uc, ok := UserFromContext(ctx); ok {
		return "user-" + strconv.FormatInt(uc.UserID, 10)
	}
	if gc, ok := GuestFromContext(ctx); ok {
		return gc.GuestID
	}
	return ""
}
