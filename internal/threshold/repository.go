package threshold

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"sensordash/internal/errors"
	"sensordash/internal/logger"
)

const (
	defaultDirPerm = 0o755

	settingsKey = "thresholds"

	createSettingsSQL = `
    CREATE TABLE IF NOT EXISTS settings (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );`

	upsertSettingSQL = `
    INSERT INTO settings (key, value) VALUES (?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	selectSettingSQL = `SELECT value FROM settings WHERE key = ?`
)

// Repository persists the active threshold set between runs.
type Repository interface {
	Load() (Set, bool, error)
	Save(Set) error
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
	mu sync.Mutex
}

// NewRepository opens (creating if needed) the sqlite settings store at
// path.
func NewRepository(path string) (Repository, error) {
	errFactory := errors.New()

	if path == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing settings repository at: %s", path)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if _, err := db.Exec(createSettingsSQL); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	return &sqliteRepository{db: db}, nil
}

func (r *sqliteRepository) Load() (Set, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	var raw string
	err := r.db.QueryRow(selectSettingSQL, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Set{}, false, nil
	}
	if err != nil {
		return Set{}, false, errFactory.Wrap(ErrStorageAccess, err)
	}

	var set Set
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return Set{}, false, errFactory.Wrap(ErrStorageAccess, err)
	}

	return set, true, nil
}

func (r *sqliteRepository) Save(set Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()

	raw, err := json.Marshal(set)
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	if _, err := r.db.Exec(upsertSettingSQL, settingsKey, string(raw)); err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.db.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

// noopRepository backs stores that do not persist anything.
type noopRepository struct{}

func (noopRepository) Load() (Set, bool, error) { return Set{}, false, nil }
func (noopRepository) Save(Set) error           { return nil }
func (noopRepository) Close() error             { return nil }
