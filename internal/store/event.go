package store

import (
	"database/sql"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codedbycupidity/alignr/internal/model"
)

// shareCodeAlphabet avoids ambiguous characters in hand-typed codes.
const shareCodeAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func scanEvent(scanner interface{ Scan(...any) error }) (*model.Event, error) {
	var e model.Event
	var finalizedAt sql.NullTime
	err := scanner.Scan(&e.ID, &e.Title, &e.Description, &e.ShareCode, &e.OrganizerID,
		&e.Status, &finalizedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if finalizedAt.Valid {
		e.FinalizedAt = &finalizedAt.Time
	}
	return &e, nil
}

const eventCols = `id, title, description, share_code, organizer_id, status, finalized_at, created_at, updated_at`

func (s *EventStore) Create(title, description string, organizerID int64) (*model.Event, error) {
	code, err := gonanoid.Generate(shareCodeAlphabet, 10)
	if err != nil {
		return nil, fmt.Errorf("generate share code: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO events (title, description, share_code, organizer_id, status)
		 VALUES (?, ?, ?, ?, 'draft')`,
		title, description, code, organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *EventStore) GetByID(id int64) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (s *EventStore) GetByShareCode(code string) (*model.Event, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM events WHERE share_code = ?`, code)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get event by share code: %w", err)
	}
	return e, nil
}

func (s *EventStore) ListByOrganizer(organizerID int64) ([]model.Event, error) {
	rows, err := s.db.Query(
		`SELECT `+eventCols+` FROM events WHERE organizer_id = ? ORDER BY created_at DESC`,
		organizerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title, description string) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.GetByID(id)
}

// Publish moves a draft event to active. Any other starting status is left
// alone; status only moves forward.
func (s *EventStore) Publish(id int64) (*model.Event, error) {
	_, err := s.db.Exec(
		`UPDATE events SET status = 'active', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = 'draft'`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("publish event: %w", err)
	}
	return s.GetByID(id)
}

// Finalize transitions an event to the terminal finalized status. The write
// is conditional on not already being finalized, so concurrent callers (the
// sweeper plus any number of read-triggered evaluations) are harmless
// no-ops after the first. It returns true if this call performed the
// transition.
func (s *EventStore) Finalize(id int64, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE events SET status = 'finalized', finalized_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status != 'finalized'`,
		at.UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("finalize event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListActive returns events that could still auto-finalize.
func (s *EventStore) ListActive() ([]model.Event, error) {
	rows, err := s.db.Query(`SELECT ` + eventCols + ` FROM events WHERE status = 'active'`)
	if err != nil {
		return nil, fmt.Errorf("query active events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
