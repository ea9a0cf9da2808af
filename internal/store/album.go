package store

import (
	"database/sql"
	"fmt"

	"github.com/codedbycupidity/alignr/internal/model"
)

type AlbumStore struct {
	db *sql.DB
}

func NewAlbumStore(db *sql.DB) *AlbumStore {
	return &AlbumStore{db: db}
}

const photoCols = `id, block_id, storage_key, caption, content_type, size_bytes, uploaded_by, created_at`

func scanPhoto(scanner interface{ Scan(...any) error }) (*model.Photo, error) {
	var p model.Photo
	err := scanner.Scan(&p.ID, &p.BlockID, &p.StorageKey, &p.Caption,
		&p.ContentType, &p.SizeBytes, &p.UploadedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *AlbumStore) Create(blockID int64, storageKey, caption, contentType string, sizeBytes int64, uploadedBy string) (*model.Photo, error) {
	result, err := s.db.Exec(
		`INSERT INTO photos (block_id, storage_key, caption, content_type, size_bytes, uploaded_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		blockID, storageKey, caption, contentType, sizeBytes, uploadedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *AlbumStore) GetByID(id int64) (*model.Photo, error) {
	row := s.db.QueryRow(`SELECT `+photoCols+` FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

func (s *AlbumStore) ListByBlock(blockID int64) ([]model.Photo, error) {
	rows, err := s.db.Query(
		`SELECT `+photoCols+` FROM photos WHERE block_id = ? ORDER BY created_at DESC, id DESC`,
		blockID,
	)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	return photos, rows.Err()
}

func (s *AlbumStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
