// Package settings manages user preferences: theme, library view, autoplay
// and thumbnail quality.
//
// Settings are loaded once at startup from the database key-value table and
// written back key by key whenever a value changes.
package settings
