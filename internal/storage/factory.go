package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/nightdrive/showcase/internal/config"
	"github.com/nightdrive/showcase/internal/database"
	gormstorage "github.com/nightdrive/showcase/internal/storage/gorm"
	"github.com/nightdrive/showcase/internal/storage/influx"
	"github.com/nightdrive/showcase/internal/storage/memory"
	sqlitestorage "github.com/nightdrive/showcase/internal/storage/sqlite"
	"github.com/nightdrive/showcase/internal/storage/websocket"
)

// Storage types accepted in storage.type.
const (
	TypeNone     = "none"
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeInflux   = "influx"
	TypeRemote   = "remote"
)

// NewBackend creates a storage backend based on configuration. The database
// backends log through zerolog, the remote collector through slog. The
// returned backend is not yet initialized.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger, slogger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case TypeNone, "":
		return Nop{}, nil
	case TypeMemory:
		return memory.New(cfg.Memory), nil
	case TypeSQLite:
		return sqlitestorage.New(cfg.SQLite, log)
	case TypePostgres:
		db, err := database.OpenPostgres(cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		return gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}), nil
	case TypeInflux:
		return influx.New(cfg.Influx, cfg.Influx.BackupPath, log), nil
	case TypeRemote:
		return websocket.New(websocket.Config{URL: cfg.Remote.URL, Secret: cfg.Remote.Secret}, slogger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
