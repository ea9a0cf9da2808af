package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/codedbycupidity/alignr/internal/auth"
	"github.com/codedbycupidity/alignr/internal/database"
	"github.com/codedbycupidity/alignr/internal/store"
)

func setupAuthMiddlewareDB(t *testing.T) (*store.SessionStore, *store.UserStore, *store.GuestStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db), store.NewGuestStore(db)
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestRequireAuthAPIGets401(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, us, _ := setupAuthMiddlewareDB(t)

	u, err := us.Create("alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ss.Create(u.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUC auth.UserContext
	handler := RequireAuth(ss, us)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc, ok := auth.UserFromContext(r.Context())
		if !ok {
			t.Fatal("expected UserContext in request context")
		}
		gotUC = uc
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUC.UserID != u.ID {
		t.Errorf("UserID = %d, want %d", gotUC.UserID, u.ID)
	}
	if gotUC.Email != "alice@example.com" {
		t.Errorf("Email = %q, want %q", gotUC.Email, "alice@example.com")
	}
}

func TestGuestIdentityIssuesCookie(t *testing.T) {
	_, _, gs := setupAuthMiddlewareDB(t)

	var gotGC auth.GuestContext
	handler := GuestIdentity(gs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gc, ok := auth.GuestFromContext(r.Context())
		if !ok {
			t.Fatal("expected GuestContext in request context")
		}
		gotGC = gc
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/shared/abc123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if _, err := uuid.Parse(gotGC.GuestID); err != nil {
		t.Errorf("GuestID = %q, want a uuid", gotGC.GuestID)
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == guestCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected guest cookie to be set")
	}
	if cookie.Value != gotGC.GuestID {
		t.Errorf("cookie value = %q, want %q", cookie.Value, gotGC.GuestID)
	}
	if !cookie.HttpOnly {
		t.Error("guest cookie should be HttpOnly")
	}
}

func TestGuestIdentityReusesCookie(t *testing.T) {
	_, _, gs := setupAuthMiddlewareDB(t)

	id := uuid.NewString()
	if _, err := gs.Upsert(id, "Bob"); err != nil {
		t.Fatalf("upsert guest: %v", err)
	}

	var gotGC auth.GuestContext
	handler := GuestIdentity(gs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGC, _ = auth.GuestFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/shared/abc123", nil)
	req.AddCookie(&http.Cookie{Name: guestCookieName, Value: id})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotGC.GuestID != id {
		t.Errorf("GuestID = %q, want %q", gotGC.GuestID, id)
	}
	if gotGC.Name != "Bob" {
		t.Errorf("Name = %q, want %q", gotGC.Name, "Bob")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("existing guest cookie should not be reissued")
	}
}

func TestGuestIdentityRejectsMalformedCookie(t *testing.T) {
	_, _, gs := setupAuthMiddlewareDB(t)

	var gotGC auth.GuestContext
	handler := GuestIdentity(gs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGC, _ = auth.GuestFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/shared/abc123", nil)
	req.AddCookie(&http.Cookie{Name: guestCookieName, Value: "not-a-uuid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotGC.GuestID == "not-a-uuid" {
		t.Error("malformed guest id should be replaced")
	}
	if _, err := uuid.Parse(gotGC.GuestID); err != nil {
		t.Errorf("GuestID = %q, want a fresh uuid", gotGC.GuestID)
	}
}

func TestGuestIdentitySkipsOrganizers(t *testing.T) {
	_, _, gs := setupAuthMiddlewareDB(t)

	handler := GuestIdentity(gs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.GuestFromContext(r.Context()); ok {
			t.Error("organizer request should not get a guest identity")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/shared/abc123", nil)
	ctx := auth.WithUser(req.Context(), auth.UserContext{UserID: 1, Email: "alice@example.com"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))

	if len(rec.Result().Cookies()) != 0 {
		t.Error("organizer request should not set a guest cookie")
	}
}
