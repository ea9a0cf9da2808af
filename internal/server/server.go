package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/codedbycupidity/alignr/internal/email"
	"github.com/codedbycupidity/alignr/internal/finalizer"
	"github.com/codedbycupidity/alignr/internal/handler"
	"github.com/codedbycupidity/alignr/internal/middleware"
	"github.com/codedbycupidity/alignr/internal/model"
	"github.com/codedbycupidity/alignr/internal/push"
	"github.com/codedbycupidity/alignr/internal/storage"
	"github.com/codedbycupidity/alignr/internal/store"
	ws "github.com/codedbycupidity/alignr/internal/websocket"
)

// Config carries everything the server needs beyond the database handle.
type Config struct {
	InviteSecret []byte
	Push         push.Config
	Storage      storage.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	eventH        *handler.EventHandler
	blockH        *handler.BlockHandler
	availabilityH *handler.AvailabilityHandler
	pollH         *handler.PollHandler
	rsvpH         *handler.RSVPHandler
	budgetH       *handler.BudgetHandler
	taskH         *handler.TaskHandler
	locationH     *handler.LocationHandler
	albumH        *handler.AlbumHandler
	pushH         *handler.PushHandler
	eventStore    *store.EventStore
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	guestStore    *store.GuestStore
	sweeper       *finalizer.Sweeper
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	eventStore := store.NewEventStore(db)
	blockStore := store.NewBlockStore(db)
	availabilityStore := store.NewAvailabilityStore(db)
	pollStore := store.NewPollStore(db)
	rsvpStore := store.NewRSVPStore(db)
	budgetStore := store.NewBudgetStore(db)
	taskStore := store.NewTaskStore(db)
	locationStore := store.NewLocationStore(db)
	albumStore := store.NewAlbumStore(db)

	// Auth stores
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	magicLinkStore := store.NewMagicLinkStore(db)
	guestStore := store.NewGuestStore(db)

	// Push: optional, gated on VAPID keys
	pushStore := store.NewPushStore(db)
	var pushSvc *push.Service
	var notifier *push.Notifier
	var pushH *handler.PushHandler
	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler"))
	}

	photoStore := storage.NewStore(cfg.Storage)

	// Finalization sweeper with its downstream side effects
	hooks := finalizer.Hooks{
		Broadcast: func(e *model.Event) {
			hub.Broadcast(e.ID, ws.NewMessage("event", "finalized", 0, nil))
		},
	}
	if notifier != nil {
		hooks.Notify = notifier.EventFinalized
	}
	if emailClient.Configured() {
		finalizeLogger := logger.With("component", "finalizer")
		hooks.Email = func(e *model.Event) {
			organizer, err := userStore.GetByID(e.OrganizerID)
			if err != nil || organizer == nil {
				finalizeLogger.Error("load organizer for summary", "event_id", e.ID, "error", err)
				return
			}
			if err := emailClient.SendFinalizedSummary(organizer.Email, e.Title, e.ShareCode); err != nil {
				finalizeLogger.Error("send finalized summary", "event_id", e.ID, "error", err)
			}
		}
	}
	sweeper := finalizer.NewSweeper(eventStore, blockStore, hooks, logger.With("component", "finalizer"))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, magicLinkStore, emailClient, logger.With("component", "auth")),
		eventH:        handler.NewEventHandler(eventStore, blockStore, locationStore, sweeper, emailClient, hub, cfg.InviteSecret, logger.With("component", "event")),
		blockH:        handler.NewBlockHandler(eventStore, blockStore, hub, logger.With("component", "block")),
		availabilityH: handler.NewAvailabilityHandler(eventStore, blockStore, availabilityStore, guestStore, hub, notifier, logger.With("component", "availability")),
		pollH:         handler.NewPollHandler(eventStore, blockStore, pollStore, guestStore, hub, logger.With("component", "poll")),
		rsvpH:         handler.NewRSVPHandler(eventStore, blockStore, rsvpStore, guestStore, hub, notifier, logger.With("component", "rsvp")),
		budgetH:       handler.NewBudgetHandler(eventStore, blockStore, budgetStore, guestStore, hub, logger.With("component", "budget")),
		taskH:         handler.NewTaskHandler(eventStore, blockStore, taskStore, hub, logger.With("component", "task")),
		locationH:     handler.NewLocationHandler(eventStore, blockStore, locationStore, guestStore, hub, logger.With("component", "location")),
		albumH:        handler.NewAlbumHandler(eventStore, blockStore, albumStore, guestStore, photoStore, hub, logger.With("component", "album")),
		pushH:         pushH,
		eventStore:    eventStore,
		sessionStore:  sessionStore,
		userStore:     userStore,
		guestStore:    guestStore,
		sweeper:       sweeper,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Sweeper returns the finalization sweeper so main can run its loop.
func (s *Server) Sweeper() *finalizer.Sweeper {
	return s.sweeper
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// MagicLinkStore returns the magic link store for cleanup tasks.
func (s *Server) MagicLinkStore() *store.MagicLinkStore {
	return store.NewMagicLinkStore(s.db)
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Auth (rate limited by IP: code creation and verification are abusable)
	mux.HandleFunc("POST /api/auth/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("POST /api/auth/verify", s.rateLimited(s.authH.Verify))
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)

	// Invite links arrive before the invitee has a session
	mux.HandleFunc("GET /api/invite", s.eventH.AcceptInvite)

	mux.HandleFunc("GET /health", s.healthHandler)

	// Organizer routes behind the session cookie
	organizerMux := http.NewServeMux()
	s.registerOrganizerRoutes(organizerMux)
	requireAuth := middleware.RequireAuth(s.sessionStore, s.userStore)
	mux.Handle("/api/auth/me", requireAuth(organizerMux))
	mux.Handle("/api/events", requireAuth(organizerMux))
	mux.Handle("/api/events/", requireAuth(organizerMux))
	mux.Handle("/api/blocks/", requireAuth(organizerMux))
	mux.Handle("/api/push/", requireAuth(organizerMux))

	// Guest routes: share-code scoped, guest cookie identity. Writes are
	// throttled by IP since guests are anonymous.
	guestMux := http.NewServeMux()
	s.registerGuestRoutes(guestMux)
	guestIdentity := middleware.GuestIdentity(s.guestStore)
	mux.Handle("/api/shared/", guestIdentity(s.guestWriteLimit(guestMux)))

	// WebSocket, one room per event
	mux.Handle("GET /ws/{code}", ws.HandleWebSocket(s.hub, s.resolveEventID))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) resolveEventID(r *http.Request) (int64, error) {
	event, err := s.eventStore.GetByShareCode(r.PathValue("code"))
	if err != nil {
		return 0, err
	}
	if event == nil || event.Status == model.StatusDraft {
		return 0, fmt.Errorf("event not found")
	}
	return event.ID, nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, func(r *http.Request) string {
		return "auth:" + middleware.RealIP(r)
	}, 10, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) guestWriteLimit(next http.Handler) http.Handler {
	rl := middleware.RateLimit(s.rateLimiter, func(r *http.Request) string {
		return "guest:" + middleware.RealIP(r)
	}, 60, time.Minute)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		rl.ServeHTTP(w, r)
	})
}

func (s *Server) registerOrganizerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("POST /api/events/{id}/publish", s.eventH.Publish)
	mux.HandleFunc("POST /api/events/{id}/finalize", s.eventH.Finalize)
	mux.HandleFunc("POST /api/events/{id}/invite", s.eventH.Invite)
	mux.HandleFunc("GET /api/events/{id}/export.ics", s.eventH.ExportICS)

	mux.HandleFunc("POST /api/events/{id}/blocks", s.blockH.Create)
	mux.HandleFunc("GET /api/events/{id}/blocks", s.blockH.List)
	mux.HandleFunc("PUT /api/blocks/{id}", s.blockH.Update)
	mux.HandleFunc("DELETE /api/blocks/{id}", s.blockH.Delete)

	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	}
}

func (s *Server) registerGuestRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/shared/{code}", s.eventH.Shared)

	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/grid", s.availabilityH.Grid)
	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/availability", s.availabilityH.Submit)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/heatmap", s.availabilityH.Heatmap)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/vote", s.pollH.Vote)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/results", s.pollH.Results)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/rsvp", s.rsvpH.Respond)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/rsvps", s.rsvpH.List)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/budget", s.budgetH.Create)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/budget", s.budgetH.List)
	mux.HandleFunc("DELETE /api/shared/{code}/budget-items/{id}", s.budgetH.Delete)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/tasks", s.taskH.List)
	mux.HandleFunc("PUT /api/shared/{code}/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/shared/{code}/tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/locations", s.locationH.Create)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/locations", s.locationH.List)
	mux.HandleFunc("POST /api/shared/{code}/locations/{id}/vote", s.locationH.Vote)
	mux.HandleFunc("DELETE /api/shared/{code}/locations/{id}/vote", s.locationH.Unvote)

	mux.HandleFunc("POST /api/shared/{code}/blocks/{id}/photos", s.albumH.Upload)
	mux.HandleFunc("GET /api/shared/{code}/blocks/{id}/photos", s.albumH.List)
	mux.HandleFunc("GET /api/shared/{code}/photos/{id}", s.albumH.Serve)
	mux.HandleFunc("DELETE /api/shared/{code}/photos/{id}", s.albumH.Delete)
}
