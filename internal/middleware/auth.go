package middleware

import (
	"net/http"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/store"
)

const sessionCookieName = "alignr_session"

// RequireAuth validates the organizer session cookie and populates
// UserContext. API callers get a 401; for anything else the browser is sent
// to the login page.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				rejectUnauthenticated(w, r)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				rejectUnauthenticated(w, r)
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil || user == nil {
				rejectUnauthenticated(w, r)
				return
			}

			uc := auth.UserContext{
				UserID:    user.ID,
				Email:     user.Email,
				SessionID: sess.ID,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), uc)))
		})
	}
}

func rejectUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Path) >= 4 && r.URL.Path[:4] == "/api" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
