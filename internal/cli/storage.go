package cli

import (
	"fmt"
	"log/slog"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/config"
	"github.com/roach88/schoolbot/internal/store"
)

// openPersister returns the configured catalog backend and a function
// that releases it.
func openPersister(cfg config.Config, logger *slog.Logger) (catalog.Persister, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		logger.Info("opening database", "path", cfg.Storage.Path)
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database %s: %w", cfg.Storage.Path, err)
		}
		version, err := st.SchemaVersion()
		if err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("open database %s: %w", cfg.Storage.Path, err)
		}
		logger.Debug("database ready", "schema_version", version)
		release := func() {
			if err := st.Close(); err != nil {
				logger.Error("error closing database", "error", err)
			}
		}
		return st, release, nil
	default:
		logger.Info("using JSON storage", "path", cfg.Storage.Path)
		return catalog.NewFilePersister(cfg.Storage.Path), func() {}, nil
	}
}
