package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/store"
)

const guestCookieName = "alignr_guest"

// GuestIdentity gives every browser without an organizer session a stable
// guest id. First visit sets a long-lived cookie; the id only lands in the
// guests table once the visitor actually contributes a name.
func GuestIdentity(guestStore *store.GuestStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			var guestID string
			if cookie, err := r.Cookie(guestCookieName); err == nil && cookie.Value != "" {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					guestID = cookie.Value
				}
			}

			if guestID == "" {
				guestID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     guestCookieName,
					Value:    guestID,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			gc := auth.GuestContext{GuestID: guestID}
			if guest, err := guestStore.GetByID(guestID); err == nil && guest != nil {
				gc.Name = guest.Name
			}

			next.ServeHTTP(w, r.WithContext(auth.WithGuest(r.Context(), gc)))
		})
	}
}
