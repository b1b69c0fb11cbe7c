package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned by GetMetadata for keys that were never set.
var ErrNotFound = errors.New("key not found")

// GetMetadata retrieves a metadata value by key.
func (d *Database) GetMetadata(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			recordQuery("get_setting", start, nil)
			return
		}
		recordQuery("get_setting", start, err)
	}()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var v sql.NullString
	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_setting", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// ListMetadata returns every stored key-value pair.
func (d *Database) ListMetadata(ctx context.Context) (values map[string]string, err error) {
	start := time.Now()
	defer func() { recordQuery("list_settings", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, "SELECT key, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values = make(map[string]string)
	for rows.Next() {
		var key string
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		values[key] = value.String
	}
	return values, rows.Err()
}
