package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type PollStore struct {
	db *sql.DB
}

func NewPollStore(db *sql.DB) *PollStore {
	return &PollStore{db: db}
}

// ReplaceVote stores one participant's vote set wholesale: prior option rows
// for the participant are deleted before the new ones are inserted, so a
// revote fully replaces the earlier one.
func (s *PollStore) ReplaceVote(blockID int64, vote model.PollVote) error {
	if vote.ParticipantID == "" {
		return fmt.Errorf("participant id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`DELETE FROM poll_votes WHERE block_id = ? AND participant_id = ?`,
		blockID, vote.ParticipantID,
	)
	if err != nil {
		return fmt.Errorf("delete prior vote: %w", err)
	}

	for _, optionID := range vote.OptionIDs {
		_, err := tx.Exec(
			`INSERT INTO poll_votes (block_id, participant_id, participant_name, option_id)
			 VALUES (?, ?, ?, ?)`,
			blockID, vote.ParticipantID, vote.ParticipantName, optionID,
		)
		if err != nil {
			return fmt.Errorf("insert vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListVotes returns one PollVote per participant, in first-vote order.
func (s *PollStore) ListVotes(blockID int64) ([]model.PollVote, error) {
	rows, err := s.db.Query(
		`SELECT participant_id, participant_name, option_id, voted_at
		 FROM poll_votes WHERE block_id = ? ORDER BY voted_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	var votes []model.PollVote
	index := make(map[string]int)
	for rows.Next() {
		var participantID, participantName, optionID string
		var votedAt sql.NullTime
		if err := rows.Scan(&participantID, &participantName, &optionID, &votedAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		i, ok := index[participantID]
		if !ok {
			votes = append(votes, model.PollVote{
				ParticipantID:   participantID,
				ParticipantName: participantName,
			})
			i = len(votes) - 1
			index[participantID] = i
		}
		votes[i].OptionIDs = append(votes[i].OptionIDs, optionID)
		if votedAt.Valid {
			votes[i].VotedAt = votedAt.Time
		}
	}
	return votes, rows.Err()
}

// Results tallies votes per option, voters in vote order.
func (s *PollStore) Results(blockID int64, options []model.PollOption) ([]model.PollResult, error) {
	votes, err := s.ListVotes(blockID)
	if err != nil {
		return nil, err
	}

	results := make([]model.PollResult, len(options))
	byOption := make(map[string]*model.PollResult, len(options))
	for i, opt := range options {
		results[i] = model.PollResult{OptionID: opt.ID, Voters: []string{}}
		byOption[opt.ID] = &results[i]
	}

	for _, v := range votes {
		for _, optionID := range v.OptionIDs {
			r, ok := byOption[optionID]
			if !ok {
				continue // vote for a removed option
			}
			r.Count++
			r.Voters = append(r.Voters, v.ParticipantName)
		}
	}
	return results, nil
}
