package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type RSVPStore struct {
	db *sql.DB
}

func NewRSVPStore(db *sql.DB) *RSVPStore {
	return &RSVPStore{db: db}
}

func scanRSVP(scanner interface{ Scan(...any) error }) (*model.RSVPEntry, error) {
	var e model.RSVPEntry
	err := scanner.Scan(&e.ID, &e.BlockID, &e.ParticipantID, &e.ParticipantName,
		&e.Status, &e.GuestCount, &e.Note, &e.RespondedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const rsvpCols = `id, block_id, participant_id, participant_name, status, guest_count, note, responded_at`

// Upsert stores a participant's response, replacing any earlier one.
func (s *RSVPStore) Upsert(blockID int64, entry model.RSVPEntry) (*model.RSVPEntry, error) {
	if entry.ParticipantID == "" {
		return nil, fmt.Errorf("participant id is required")
	}

	_, err := s.db.Exec(
		`INSERT INTO rsvps (block_id, participant_id, participant_name, status, guest_count, note)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(block_id, participant_id) DO UPDATE SET
		   participant_name = excluded.participant_name,
		   status = excluded.status,
		   guest_count = excluded.guest_count,
		   note = excluded.note,
		   responded_at = CURRENT_TIMESTAMP`,
		blockID, entry.ParticipantID, entry.ParticipantName, entry.Status, entry.GuestCount, entry.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return s.GetByParticipant(blockID, entry.ParticipantID)
}

func (s *RSVPStore) GetByParticipant(blockID int64, participantID string) (*model.RSVPEntry, error) {
	row := s.db.QueryRow(
		`SELECT `+rsvpCols+` FROM rsvps WHERE block_id = ? AND participant_id = ?`,
		blockID, participantID,
	)
	e, err := scanRSVP(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return e, nil
}

func (s *RSVPStore) ListByBlock(blockID int64) ([]model.RSVPEntry, error) {
	rows, err := s.db.Query(
		`SELECT `+rsvpCols+` FROM rsvps WHERE block_id = ? ORDER BY responded_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rsvps: %w", err)
	}
	defer rows.Close()

	var entries []model.RSVPEntry
	for rows.Next() {
		e, err := scanRSVP(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Counts returns headcounts per status, each response counted as one person
// plus its extra guests.
func (s *RSVPStore) Counts(blockID int64) (map[model.RSVPStatus]int, error) {
	rows, err := s.db.Query(
		`SELECT status, COUNT(*) + COALESCE(SUM(guest_count), 0)
		 FROM rsvps WHERE block_id = ? GROUP BY status`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query rsvp counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.RSVPStatus]int)
	for rows.Next() {
		var status model.RSVPStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan rsvp count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
