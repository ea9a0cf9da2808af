package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, block_id, title, assignee_name, done, completed_at, created_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var done int
	var completedAt sql.NullTime
	err := scanner.Scan(&t.ID, &t.BlockID, &t.Title, &t.AssigneeName, &done, &completedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Done = done != 0
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func (s *TaskStore) Create(blockID int64, title, assigneeName string) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (block_id, title, assignee_name) VALUES (?, ?, ?)`,
		blockID, title, assigneeName,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByBlock(blockID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE block_id = ? ORDER BY done, created_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SetDone toggles completion. Completing stamps completed_at; reopening
// clears it.
func (s *TaskStore) SetDone(id int64, done bool) (*model.Task, error) {
	var err error
	if done {
		_, err = s.db.Exec(
			`UPDATE tasks SET done = 1, completed_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	} else {
		_, err = s.db.Exec(
			`UPDATE tasks SET done = 0, completed_at = NULL WHERE id = ?`, id)
	}
	if err != nil {
		return nil, fmt.Errorf("set task done: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Assign(id int64, assigneeName string) (*model.Task, error) {
	_, err := s.db.Exec(`UPDATE tasks SET assignee_name = ? WHERE id = ?`, assigneeName, id)
	if err != nil {
		return nil, fmt.Errorf("assign task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
