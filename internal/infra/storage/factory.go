package storage

import (
	"errors"
	"strings"
)

const (
	EngineSQLite = "sqlite"
	EngineJSON   = "json"
)

// Backend bundles the repositories of one storage engine. Events is nil
// for the JSON engine: the flat file holds save keys only, and the
// event history stays in memory.
type Backend struct {
	Saves  SaveRepository
	Events *SQLiteEventRepository
}

// OpenBackend builds the repositories for the configured engine. An
// empty engine name means SQLite.
//
// A non-nil Backend alongside a non-nil error means the engine opened
// degraded (a corrupt save file fell back to empty state); the caller
// surfaces the error and keeps the backend.
func OpenBackend(engine, path string) (*Backend, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite:
		db, err := InitSQLite(path)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Saves:  NewSQLiteSaveRepository(db),
			Events: NewSQLiteEventRepository(db),
		}, nil
	case EngineJSON:
		saves, err := NewJSONSaveRepository(path)
		if saves == nil {
			return nil, err
		}
		return &Backend{Saves: saves}, err
	default:
		return nil, errors.New("unsupported storage engine: " + engine)
	}
}
