package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type BlockStore struct {
	db *sql.DB
}

func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

func scanBlock(scanner interface{ Scan(...any) error }) (*model.Block, error) {
	var b model.Block
	var content string
	err := scanner.Scan(&b.ID, &b.EventID, &b.Type, &b.Title, &b.Position, &content, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Content = json.RawMessage(content)
	return &b, nil
}

const blockCols = `id, event_id, type, title, position, content, created_at, updated_at`

func (s *BlockStore) Create(eventID int64, blockType model.BlockType, title string, position int, content json.RawMessage) (*model.Block, error) {
	if !model.ValidBlockType(blockType) {
		return nil, fmt.Errorf("unknown block type %q", blockType)
	}
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}

	result, err := s.db.Exec(
		`INSERT INTO blocks (event_id, type, title, position, content) VALUES (?, ?, ?, ?, ?)`,
		eventID, blockType, title, position, string(content),
	)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BlockStore) GetByID(id int64) (*model.Block, error) {
	row := s.db.QueryRow(`SELECT `+blockCols+` FROM blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get block: %w", err)
	}
	return b, nil
}

func (s *BlockStore) ListByEvent(eventID int64) ([]model.Block, error) {
	rows, err := s.db.Query(
		`SELECT `+blockCols+` FROM blocks WHERE event_id = ? ORDER BY position, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

func (s *BlockStore) Update(id int64, title string, position int, content json.RawMessage) (*model.Block, error) {
	if len(content) == 0 {
		content = json.RawMessage("{}")
	}
	_, err := s.db.Exec(
		`UPDATE blocks SET title = ?, position = ?, content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, position, string(content), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update block: %w", err)
	}
	return s.GetByID(id)
}

func (s *BlockStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return nil
}

// GetTimeBlock returns the first time block of an event, or nil if the event
// has none. Events carry at most one time block in practice; position order
// breaks ties.
func (s *BlockStore) GetTimeBlock(eventID int64) (*model.Block, error) {
	row := s.db.QueryRow(
		`SELECT `+blockCols+` FROM blocks WHERE event_id = ? AND type = ? ORDER BY position, id LIMIT 1`,
		eventID, model.BlockTypeTime,
	)
	b, err := scanBlock(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get time block: %w", err)
	}
	return b, nil
}
