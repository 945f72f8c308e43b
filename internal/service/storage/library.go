package storage

import (
	"sync"

	"fishsense/internal/apperror"
	"fishsense/internal/logger"
	"fishsense/internal/model"
	"fishsense/internal/repository"
	"fishsense/internal/repository/sqlite"
)

// Library is the local photo store. It stays usable as a value even when the
// database could not be opened: every operation then fails with
// apperror.StoreUnavailable instead of taking the process down.
type Library struct {
	mu     sync.RWMutex
	db     *sqlite.DB
	photos repository.PhotoRepository
	count  int
	logger *logger.Logger
}

// NewLibrary returns an unopened Library.
func NewLibrary(logger *logger.Logger) *Library {
	return &Library{logger: logger}
}

// OpenLibrary initializes the store at dbPath and ensures its schema. Failures
// are logged and leave the returned Library unusable.
func OpenLibrary(dbPath string, logger *logger.Logger) *Library {
	l := NewLibrary(logger)
	if err := l.Initialize(dbPath); err != nil {
		return l
	}
	l.EnsureSchema()
	return l
}

// Initialize opens the database file at dbPath.
func (l *Library) Initialize(dbPath string) error {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		l.logger.Error("Unable to open database at %s: %v", dbPath, err)
		return apperror.Wrap(apperror.StoreUnavailable, "unable to open database", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.db != nil {
		l.db.Close()
	}
	l.db = db
	l.photos = sqlite.NewPhotoRepository(db)
	l.logger.Info("📂 Opened photo database at %s", dbPath)
	return nil
}

// EnsureSchema creates the photos table when absent and seeds the in-memory
// counter from the stored rows.
func (l *Library) EnsureSchema() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return apperror.New(apperror.StoreUnavailable, "photo database is not open")
	}
	if err := l.db.EnsureSchema(); err != nil {
		l.logger.Error("Error creating photos table: %v", err)
		return apperror.Wrap(apperror.StoreWriteFailed, "error creating photos table", err)
	}

	count, err := l.photos.GetTotalCount()
	if err != nil {
		l.logger.Warning("Unable to count stored photos: %v", err)
		count = 0
	}
	l.count = count
	return nil
}

// Insert persists one record and bumps the counter.
func (l *Library) Insert(rec *model.PhotoRecord) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.photos == nil {
		return 0, apperror.New(apperror.StoreUnavailable, "photo database is not open")
	}
	id, err := l.photos.Insert(rec)
	if err != nil {
		l.logger.Error("Error inserting photo: %v", err)
		return 0, apperror.Wrap(apperror.StoreWriteFailed, "error inserting photo", err)
	}
	l.count++
	l.logger.Info("Photo %d inserted (%d stored)", id, l.count)
	return id, nil
}

// ListAll returns every stored record, newest first.
func (l *Library) ListAll() ([]model.PhotoProjection, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.photos == nil {
		return nil, apperror.New(apperror.StoreUnavailable, "photo database is not open")
	}
	photos, err := l.photos.GetAll()
	if err != nil {
		l.logger.Error("Error reading photos: %v", err)
		return nil, apperror.Wrap(apperror.StoreReadFailed, "error reading photos", err)
	}
	return photos, nil
}

// Filter returns the records matching a boolean expression over the
// projection fields, e.g. `fish_found && estimated_length > 0.3`.
// An empty expression matches everything.
func (l *Library) Filter(expression string) ([]model.PhotoProjection, error) {
	match, err := CompileFilter(expression)
	if err != nil {
		return nil, err
	}
	photos, err := l.ListAll()
	if err != nil {
		return nil, err
	}

	matched := make([]model.PhotoProjection, 0, len(photos))
	for _, p := range photos {
		if match(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// NumPhotos returns the in-memory count of persisted photos.
func (l *Library) NumPhotos() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Available reports whether the database was opened.
func (l *Library) Available() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.photos != nil
}

// Clear deletes every record.
func (l *Library) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.photos == nil {
		return apperror.New(apperror.StoreUnavailable, "photo database is not open")
	}
	if err := l.photos.DeleteAll(); err != nil {
		l.logger.Error("Error clearing photos: %v", err)
		return apperror.Wrap(apperror.StoreWriteFailed, "error clearing photos", err)
	}
	l.count = 0
	l.logger.Info("🗑️  Cleared all photos")
	return nil
}

// Close releases the database.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	l.photos = nil
	return err
}
