// Package store persists portfolio records under a string key, either in a
// JSON file or in SQLite.
package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/theirongolddev/allot/internal/alloc"
	"github.com/theirongolddev/allot/internal/config"
)

// ErrNoRecord is returned by Load when nothing is stored under the key.
var ErrNoRecord = errors.New("no stored record")

// Store loads and saves portfolio records. Implementations satisfy
// alloc.Persister.
type Store interface {
	Load(key string) (alloc.Record, error)
	Save(key string, rec alloc.Record) error
	Keys() ([]string, error)
	Close() error
}

// File names inside the data directory.
const (
	FileName   = "portfolios.json"
	SQLiteName = "allot.db"
)

// Open picks the backend configured in cfg and opens it under dataDir.
func Open(cfg config.GeneralConfig, dataDir string) (Store, error) {
	switch cfg.Store {
	case config.StoreFile, "":
		return OpenFile(filepath.Join(dataDir, FileName))
	case config.StoreSQLite:
		return OpenSQLite(filepath.Join(dataDir, SQLiteName))
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}
