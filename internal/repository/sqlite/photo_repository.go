package sqlite

import (
	"encoding/base64"
	"fmt"

	"fishsense/internal/model"
)

// PhotoRepository implements repository.PhotoRepository for SQLite.
type PhotoRepository struct {
	db *DB
}

// NewPhotoRepository creates a new SQLite photo repository.
func NewPhotoRepository(db *DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Insert validates the record's matrices and adds one row.
func (r *PhotoRepository) Insert(rec *model.PhotoRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, fmt.Errorf("failed to insert photo: %w", err)
	}

	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`
		INSERT INTO photos (utc_unix_timestamp, rgb_path, depth_bytes, depth_width, depth_height,
			confidence_bytes, confidence_width, confidence_height, estimated_length, fish_found)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.UTCUnixTimestamp, rec.RGBPath,
		rec.Depth.Bytes, rec.Depth.Width, rec.Depth.Height,
		rec.Confidence.Bytes, rec.Confidence.Width, rec.Confidence.Height,
		rec.EstimatedLength, rec.FishFound)
	if err != nil {
		return 0, fmt.Errorf("failed to insert photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to insert photo: %w", err)
	}
	rec.ID = id
	return id, nil
}

// GetAll returns every record, newest first, with blobs base64 encoded.
func (r *PhotoRepository) GetAll() ([]model.PhotoProjection, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, utc_unix_timestamp, rgb_path, depth_bytes, depth_width, depth_height,
			confidence_bytes, confidence_width, confidence_height, estimated_length, fish_found
		FROM photos
		ORDER BY utc_unix_timestamp DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query photos: %w", err)
	}
	defer rows.Close()

	photos := make([]model.PhotoProjection, 0)
	for rows.Next() {
		var (
			p          model.PhotoProjection
			depth      []byte
			confidence []byte
		)
		if err := rows.Scan(&p.ID, &p.UTCUnixTimestamp, &p.RGBPath,
			&depth, &p.DepthWidth, &p.DepthHeight,
			&confidence, &p.ConfidenceWidth, &p.ConfidenceHeight,
			&p.EstimatedLength, &p.FishFound); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		p.DepthBytes = base64.StdEncoding.EncodeToString(depth)
		p.ConfidenceBytes = base64.StdEncoding.EncodeToString(confidence)
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read photos: %w", err)
	}

	return photos, nil
}

// GetTotalCount returns the number of stored records.
func (r *PhotoRepository) GetTotalCount() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow("SELECT COUNT(*) FROM photos").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// DeleteAll removes all photo records.
func (r *PhotoRepository) DeleteAll() error {
	r.db.Lock()
	defer r.db.Unlock()

	if _, err := r.db.Conn().Exec("DELETE FROM photos"); err != nil {
		return fmt.Errorf("failed to delete all photos: %w", err)
	}
	return nil
}
