package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codedbycupidity/alignr/internal/database"
	"github.com/codedbycupidity/alignr/internal/email"
	"github.com/codedbycupidity/alignr/internal/logging"
	"github.com/codedbycupidity/alignr/internal/push"
	"github.com/codedbycupidity/alignr/internal/server"
	"github.com/codedbycupidity/alignr/internal/storage"
)

const cleanupInterval = time.Hour

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("ALIGNR_LOG_LEVEL"))

	port := os.Getenv("ALIGNR_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("ALIGNR_DB_PATH")
	if dbPath == "" {
		dbPath = "alignr.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	baseURL := os.Getenv("ALIGNR_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}
	emailClient := email.NewClient(os.Getenv("ALIGNR_POSTMARK_TOKEN"), os.Getenv("ALIGNR_FROM_EMAIL"), baseURL)
	if !emailClient.Configured() {
		logger.Warn("email not configured, sign-in codes will only appear in logs")
	}

	inviteSecret := []byte(os.Getenv("ALIGNR_INVITE_SECRET"))
	if len(inviteSecret) == 0 {
		// Invite links stop working across restarts without a fixed secret.
		inviteSecret = make([]byte, 32)
		if _, err := rand.Read(inviteSecret); err != nil {
			logger.Error("generate invite secret", "error", err)
			os.Exit(1)
		}
		logger.Warn("ALIGNR_INVITE_SECRET not set, using an ephemeral secret")
	}

	cfg := server.Config{
		InviteSecret: inviteSecret,
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("ALIGNR_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("ALIGNR_VAPID_PRIVATE_KEY"),
		},
		Storage: storage.Config{
			Endpoint:  os.Getenv("ALIGNR_S3_ENDPOINT"),
			Bucket:    os.Getenv("ALIGNR_S3_BUCKET"),
			Region:    os.Getenv("ALIGNR_S3_REGION"),
			AccessKey: os.Getenv("ALIGNR_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("ALIGNR_S3_SECRET_KEY"),
		},
	}

	srv := server.New(db, emailClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.Sweeper().Start(ctx)
	defer srv.Sweeper().Stop()

	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Alignr running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

// cleanupLoop sweeps expired sessions, dead sign-in codes, and stale
// rate-limit buckets.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("delete expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			if _, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
				logger.Error("delete expired login codes", "error", err)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}
