package repository

import "fishsense/internal/model"

// PhotoRepository defines the interface for photo record operations.
type PhotoRepository interface {
	// Create operations
	Insert(rec *model.PhotoRecord) (int64, error)

	// Read operations
	GetAll() ([]model.PhotoProjection, error)
	GetTotalCount() (int, error)

	// Delete operations
	DeleteAll() error
}
