// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is read through spf13/viper by [LoadConfig]. Every key can be
// set with a VIDSHELF_ environment variable or bound to a command-line flag
// on the viper instance returned by [NewViper]:
//
//   - VIDSHELF_LIBRARY_DIR: Folder to open at startup (default: none)
//   - VIDSHELF_DATABASE_DIR: Directory holding the settings database (default: ~/.vidshelf)
//   - VIDSHELF_BIND_ADDR: Listen address (default: 127.0.0.1)
//   - VIDSHELF_PORT: HTTP server port (default: 8080)
//   - VIDSHELF_METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - VIDSHELF_METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - VIDSHELF_WATCH: Re-scan the open folder when it changes (default: true)
//   - VIDSHELF_WATCH_DEBOUNCE: Quiet period before a re-scan, as Go duration (default: 2s)
//   - VIDSHELF_FFMPEG, VIDSHELF_FFPROBE: Tool paths (default: looked up in PATH)
//   - VIDSHELF_VIPS: Encode thumbnails with libvips when available (default: true)
//   - VIDSHELF_LOG_STATIC_FILES: Log static file requests (default: false)
//   - VIDSHELF_LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The log level is controlled by LOG_LEVEL or the --log-level flag; see the
// logging package.
//
// # Lifecycle Logging
//
// The Log* functions print the sectioned startup and shutdown report:
// [LogDatabaseInit], [LogExtractorInit], [LogLibraryInit], [LogHTTPRoutes],
// [LogServerStarted], [LogShutdownInitiated] and [LogShutdownComplete].
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
