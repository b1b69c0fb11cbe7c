// Package database provides the SQLite store for vidshelf.
//
// Only a single key-value metadata table is kept; it backs the user
// settings. Library contents are never persisted. The database uses WAL
// mode and creates its schema on open.
package database
