package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"vidshelf/internal/logging"
	"vidshelf/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database is the persistent key-value store behind user settings.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New opens (creating if needed) the database file at dbPath.
// The parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("initialize_schema", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`)
	return err
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Ping verifies the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}
	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 != 0 {
			continue
		}
		logging.Warn("%s is read-only (mode: %v), writes will fail", path, info.Mode())
		if chmodErr := os.Chmod(path, 0o600); chmodErr != nil {
			logging.Error("Failed to fix permissions on %s: %v", path, chmodErr)
		} else {
			logging.Info("Fixed permissions on %s", path)
		}
	}

	return nil
}
