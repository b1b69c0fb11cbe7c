// Package main provides the vidshelf command.
//
// vidshelf opens a local folder of videos, extracts a thumbnail and technical
// metadata for each file with ffmpeg, and serves the resulting library to a
// browser over HTTP together with a playlist, recently played list and
// persisted user settings.
//
// # Commands
//
//	vidshelf [serve]   start the HTTP server (default)
//	vidshelf scan [dir] scan a folder and print a table summary
//	vidshelf version   print build information
//
// When scan is run without a directory it prompts for one on the terminal.
// Submitting an empty line cancels silently.
//
// # Application Lifecycle
//
//  1. Configuration Loading: environment variables and flags via viper
//  2. Database Initialization: SQLite key-value store for settings
//  3. Extractor Initialization: ffmpeg/ffprobe checks and the thumbnail
//     canvas (libvips when available, pure Go otherwise)
//  4. Library: opens LIBRARY_DIR in the background when set and watches it
//     for changes
//  5. HTTP Server Setup: routes, metrics, logging and compression middleware
//  6. Graceful Shutdown: SIGINT/SIGTERM stops the servers, the folder watcher,
//     libvips and the database
//
// # HTTP Servers
//
//  1. Main Server (default 127.0.0.1:8080): library, video, blob, playlist,
//     settings and codec endpoints plus health checks
//  2. Metrics Server (default port 9090, optional): Prometheus /metrics
//
// # Configuration
//
// Every setting is read from a VIDSHELF_ prefixed environment variable and
// can be overridden by the matching flag. See [vidshelf/internal/startup]
// for the full list.
//
// # Build Requirements
//
// CGO is required for SQLite and libvips. FFmpeg must be on PATH (or set with
// --ffmpeg/--ffprobe) for thumbnails; without it every video is listed with
// placeholder metadata.
//
// Build-time variables are injected with -ldflags:
//
//	go build -ldflags "-X vidshelf/internal/startup.Version=1.0.0" -o vidshelf .
package main
