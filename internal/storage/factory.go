package storage

import (
	"fmt"
	"log/slog"

	"github.com/rcviewer/rclog/internal/config"
	"github.com/rcviewer/rclog/internal/storage/memory"
	"github.com/rcviewer/rclog/internal/storage/sqlite"
	"github.com/rcviewer/rclog/internal/storage/websocket"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, logger *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return memory.New(cfg.Memory, logger), nil
	case "sqlite":
		return sqlite.New(cfg.Sqlite, logger)
	case "websocket":
		return websocket.New(cfg.Websocket, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
