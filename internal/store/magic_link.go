package store

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/codedbycupidity/alignr/internal/model"
)

const (
	magicLinkTTL         = 15 * time.Minute
	magicLinkMaxAttempts = 5
)

type MagicLinkStore struct {
	db *sql.DB
}

func NewMagicLinkStore(db *sql.DB) *MagicLinkStore {
	return &MagicLinkStore{db: db}
}

// generateCode returns a 6-digit numeric code (100000-999999).
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Create issues a login code for the email and returns the plaintext code
// for delivery. Only a bcrypt hash is stored; prior unused codes for the
// email are invalidated.
func (s *MagicLinkStore) Create(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM magic_links WHERE email = ? AND used_at IS NULL`, email); err != nil {
		return "", fmt.Errorf("invalidate prior codes: %w", err)
	}
	_, err = tx.Exec(
		`INSERT INTO magic_links (code_hash, email, expires_at) VALUES (?, ?, ?)`,
		string(hash), email, time.Now().UTC().Add(magicLinkTTL),
	)
	if err != nil {
		return "", fmt.Errorf("insert magic link: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return code, nil
}

// Verify checks a code against the email's active magic link. Each failed
// attempt is counted; the link dies after magicLinkMaxAttempts.
func (s *MagicLinkStore) Verify(email, code string) (bool, error) {
	var ml model.MagicLink
	var codeHash string
	err := s.db.QueryRow(
		`SELECT id, code_hash, attempts FROM magic_links
		 WHERE email = ? AND used_at IS NULL AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		email, time.Now().UTC(),
	).Scan(&ml.ID, &codeHash, &ml.Attempts)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get magic link: %w", err)
	}

	if ml.Attempts >= magicLinkMaxAttempts {
		return false, nil
	}

	if bcrypt.CompareHashAndPassword([]byte(codeHash), []byte(code)) != nil {
		if _, err := s.db.Exec(`UPDATE magic_links SET attempts = attempts + 1 WHERE id = ?`, ml.ID); err != nil {
			return false, fmt.Errorf("count attempt: %w", err)
		}
		return false, nil
	}

	_, err = s.db.Exec(`UPDATE magic_links SET used_at = CURRENT_TIMESTAMP WHERE id = ?`, ml.ID)
	if err != nil {
		return false, fmt.Errorf("mark used: %w", err)
	}
	return true, nil
}

// DeleteExpired removes dead links; run periodically.
func (s *MagicLinkStore) DeleteExpired() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM magic_links WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired magic links: %w", err)
	}
	return result.RowsAffected()
}
