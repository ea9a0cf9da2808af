package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type AvailabilityStore struct {
	db *sql.DB
}

func NewAvailabilityStore(db *sql.DB) *AvailabilityStore {
	return &AvailabilityStore{db: db}
}

// Replace stores one participant's submission wholesale: any prior submission
// by the same participant id is deleted before the new rows are inserted, in
// a single transaction, so the block never holds duplicate or stale slot
// records for a participant. Two concurrent Replace calls for the same
// participant race last-writer-wins; there is no version check.
func (s *AvailabilityStore) Replace(blockID int64, sub model.ParticipantAvailability) error {
	if sub.ParticipantID == "" {
		return fmt.Errorf("participant id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM availability_submissions WHERE block_id = ? AND participant_id = ?`,
		blockID, sub.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("delete prior submission: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO availability_submissions (block_id, participant_id, participant_name)
		 VALUES (?, ?, ?)`,
		blockID, sub.ParticipantID, sub.ParticipantName,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	submissionID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO availability_slots (submission_id, date, start_time, end_time, available)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare slot insert: %w", err)
	}
	defer stmt.Close()

	for _, slot := range sub.TimeSlots {
		var available int
		if slot.Available {
			available = 1
		}
		if _, err := stmt.Exec(submissionID, slot.Date, slot.StartTime, slot.EndTime, available); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListByBlock returns all submissions for a block in submission order, each
// with its full slot vector.
func (s *AvailabilityStore) ListByBlock(blockID int64) ([]model.ParticipantAvailability, error) {
	rows, err := s.db.Query(
		`SELECT id, participant_id, participant_name, submitted_at
		 FROM availability_submissions WHERE block_id = ? ORDER BY submitted_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []model.ParticipantAvailability
	var submissionIDs []int64
	for rows.Next() {
		var sub model.ParticipantAvailability
		var id int64
		if err := rows.Scan(&id, &sub.ParticipantID, &sub.ParticipantName, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, sub)
		submissionIDs = append(submissionIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range submissionIDs {
		slots, err := s.listSlots(id)
		if err != nil {
			return nil, err
		}
		subs[i].TimeSlots = slots
	}
	return subs, nil
}

// GetByParticipant returns one participant's submission, or nil.
func (s *AvailabilityStore) GetByParticipant(blockID int64, participantID string) (*model.ParticipantAvailability, error) {
	var sub model.ParticipantAvailability
	var id int64
	err := s.db.QueryRow(
		`SELECT id, participant_id, participant_name, submitted_at
		 FROM availability_submissions WHERE block_id = ? AND participant_id = ?`,
		blockID, participantID,
	).Scan(&id, &sub.ParticipantID, &sub.ParticipantName, &sub.SubmittedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}

	slots, err := s.listSlots(id)
	if err != nil {
		return nil, err
	}
	sub.TimeSlots = slots
	return &sub, nil
}

func (s *AvailabilityStore) listSlots(submissionID int64) ([]model.TimeSlot, error) {
	rows, err := s.db.Query(
		`SELECT date, start_time, end_time, available
		 FROM availability_slots WHERE submission_id = ? ORDER BY date, start_time`,
		submissionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var slot model.TimeSlot
		var available int
		if err := rows.Scan(&slot.Date, &slot.StartTime, &slot.EndTime, &available); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.Available = available != 0
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}
