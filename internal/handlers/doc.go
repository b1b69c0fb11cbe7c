// Package handlers provides the HTTP API for vidshelf.
//
// It includes handlers for:
//   - Opening and re-scanning a library folder
//   - Listing, filtering and sorting videos, and serving their thumbnails
//   - Creating, streaming and revoking blob references for playback
//   - The playlist and recently played list
//   - User settings
//   - Codec support detection and playback error messages
//   - Health checks and version information
//
// Routes are registered on a gorilla/mux router with [Handlers.Register].
package handlers
