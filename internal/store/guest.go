package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type GuestStore struct {
	db *sql.DB
}

func NewGuestStore(db *sql.DB) *GuestStore {
	return &GuestStore{db: db}
}

// Upsert records a guest identity, updating the display name if the guest
// renames themselves.
func (s *GuestStore) Upsert(id, name string) (*model.Guest, error) {
	if id == "" {
		return nil, fmt.Errorf("guest id is required")
	}
	_, err := s.db.Exec(
		`INSERT INTO guests (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = CASE WHEN excluded.name != '' THEN excluded.name ELSE guests.name END`,
		id, name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert guest: %w", err)
	}
	return s.GetByID(id)
}

func (s *GuestStore) GetByID(id string) (*model.Guest, error) {
	var g model.Guest
	err := s.db.QueryRow(
		`SELECT id, name, created_at FROM guests WHERE id = ?`, id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &g, nil
}
