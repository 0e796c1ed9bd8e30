// Package database opens and maintains the sqlite connections the archive
// backend writes decoded recordings to. Recordings are written to an
// in-memory database by default and dumped to disk periodically via VACUUM
// INTO, so the hot write path never touches the filesystem.
package database

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rcviewer/rclog/internal/logging"
)

// writePragmas tune sqlite for bulk time-series inserts.
var writePragmas = []string{
	"PRAGMA user_version = 1;",
	"PRAGMA journal_mode = MEMORY;",
	"PRAGMA synchronous = OFF;",
	"PRAGMA cache_size = -32000;",
	"PRAGMA temp_store = MEMORY;",
	"PRAGMA page_size = 32768;",
}

// Manager handles a sqlite connection used by the archive backend.
type Manager struct {
	DB      *gorm.DB
	IsValid bool
	// InMemory is true when the connection holds data only until dumped.
	InMemory bool
	Logger   logging.Logger
}

// NewManager creates a database manager.
func NewManager(log logging.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect opens the database. An empty path opens a shared in-memory
// database intended for periodic disk dumps.
func (m *Manager) Connect(path string) error {
	db, err := GetSqliteDB(path)
	if err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to open sqlite DB: %w", err)
	}
	m.DB = db
	m.InMemory = path == ""
	m.IsValid = true
	if m.InMemory {
		m.Logger.Info("Using in-memory sqlite DB with periodic disk dump")
	} else {
		m.Logger.Info("Using sqlite DB file", "path", path)
	}
	return nil
}

// Migrate creates or updates the schema for the given models.
func (m *Manager) Migrate(models ...any) error {
	if err := m.DB.AutoMigrate(models...); err != nil {
		m.IsValid = false
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	sqlDB, err := m.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	return sqlDB.Close()
}

// GetSqliteDB returns a sqlite connection. If path is empty, uses a shared
// in-memory database.
func GetSqliteDB(path string) (*gorm.DB, error) {
	dsn := "file::memory:?cache=shared"
	if path != "" {
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	for _, pragma := range writePragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}
	return db, nil
}

// DumpMemoryDBToDisk vacuums the in-memory database to a disk file,
// replacing any previous dump. VACUUM INTO takes a point-in-time snapshot,
// so writes may continue during the dump.
func DumpMemoryDBToDisk(db *gorm.DB, sqliteFilePath string) error {
	if sqliteFilePath == "" {
		return fmt.Errorf("sqlite file path not set")
	}

	if exists, err := os.Stat(sqliteFilePath); err == nil && exists != nil {
		if err := os.Remove(sqliteFilePath); err != nil {
			return fmt.Errorf("error removing existing DB file: %s", err)
		}
	}

	err := db.Exec("VACUUM INTO 'file:" + sqliteFilePath + "';").Error
	if err != nil {
		return fmt.Errorf("error dumping memory DB to disk: %s", err)
	}
	return nil
}
