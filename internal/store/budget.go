package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

const budgetCols = `id, block_id, label, amount_cents, category, added_by, created_at`

func scanBudgetItem(scanner interface{ Scan(...any) error }) (*model.BudgetItem, error) {
	var item model.BudgetItem
	err := scanner.Scan(&item.ID, &item.BlockID, &item.Label, &item.AmountCents,
		&item.Category, &item.AddedBy, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *BudgetStore) Create(blockID int64, label string, amountCents int64, category, addedBy string) (*model.BudgetItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO budget_items (block_id, label, amount_cents, category, added_by)
		 VALUES (?, ?, ?, ?, ?)`,
		blockID, label, amountCents, category, addedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BudgetStore) GetByID(id int64) (*model.BudgetItem, error) {
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budget_items WHERE id = ?`, id)
	item, err := scanBudgetItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget item: %w", err)
	}
	return item, nil
}

func (s *BudgetStore) ListByBlock(blockID int64) ([]model.BudgetItem, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetCols+` FROM budget_items WHERE block_id = ? ORDER BY created_at, id`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query budget items: %w", err)
	}
	defer rows.Close()

	var items []model.BudgetItem
	for rows.Next() {
		item, err := scanBudgetItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Total returns the block's summed amount in cents.
func (s *BudgetStore) Total(blockID int64) (int64, error) {
	var total int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount_cents), 0) FROM budget_items WHERE block_id = ?`,
		blockID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum budget items: %w", err)
	}
	return total, nil
}

func (s *BudgetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM budget_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget item: %w", err)
	}
	return nil
}
