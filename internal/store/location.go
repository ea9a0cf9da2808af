package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type LocationStore struct {
	db *sql.DB
}

func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

func (s *LocationStore) Create(blockID int64, name, address, url, suggestedBy string) (*model.LocationSuggestion, error) {
	result, err := s.db.Exec(
		`INSERT INTO location_suggestions (block_id, name, address, url, suggested_by)
		 VALUES (?, ?, ?, ?, ?)`,
		blockID, name, address, url, suggestedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *LocationStore) GetByID(id int64) (*model.LocationSuggestion, error) {
	var loc model.LocationSuggestion
	err := s.db.QueryRow(
		`SELECT id, block_id, name, address, url, suggested_by, created_at
		 FROM location_suggestions WHERE id = ?`, id,
	).Scan(&loc.ID, &loc.BlockID, &loc.Name, &loc.Address, &loc.URL, &loc.SuggestedBy, &loc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	if err := s.attachVotes(&loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListByBlock returns suggestions with vote counts, most-voted first.
func (s *LocationStore) ListByBlock(blockID int64) ([]model.LocationSuggestion, error) {
	rows, err := s.db.Query(
		`SELECT id, block_id, name, address, url, suggested_by, created_at
		 FROM location_suggestions WHERE block_id = ? ORDER BY created_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	var locs []model.LocationSuggestion
	for rows.Next() {
		var loc model.LocationSuggestion
		if err := rows.Scan(&loc.ID, &loc.BlockID, &loc.Name, &loc.Address, &loc.URL, &loc.SuggestedBy, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range locs {
		if err := s.attachVotes(&locs[i]); err != nil {
			return nil, err
		}
	}
	return locs, nil
}

func (s *LocationStore) attachVotes(loc *model.LocationSuggestion) error {
	rows, err := s.db.Query(
		`SELECT participant_name FROM location_votes WHERE suggestion_id = ? ORDER BY created_at, id`,
		loc.ID,
	)
	if err != nil {
		return fmt.Errorf("query location votes: %w", err)
	}
	defer rows.Close()

	loc.Voters = []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan location vote: %w", err)
		}
		loc.Voters = append(loc.Voters, name)
	}
	loc.VoteCount = len(loc.Voters)
	return rows.Err()
}

// Vote records a participant's vote; voting again is a no-op.
func (s *LocationStore) Vote(suggestionID int64, participantID, participantName string) error {
	_, err := s.db.Exec(
		`INSERT INTO location_votes (suggestion_id, participant_id, participant_name)
		 VALUES (?, ?, ?)
		 ON CONFLICT(suggestion_id, participant_id) DO NOTHING`,
		suggestionID, participantID, participantName,
	)
	if err != nil {
		return fmt.Errorf("insert location vote: %w", err)
	}
	return nil
}

func (s *LocationStore) Unvote(suggestionID int64, participantID string) error {
	_, err := s.db.Exec(
		`DELETE FROM location_votes WHERE suggestion_id = ? AND participant_id = ?`,
		suggestionID, participantID,
	)
	if err != nil {
		return fmt.Errorf("delete location vote: %w", err)
	}
	return nil
}

func (s *LocationStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM location_suggestions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
