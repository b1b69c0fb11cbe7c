package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshelf_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_db_queries_total",
			Help: "Total number of settings store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshelf_db_query_duration_seconds",
			Help:    "Settings store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	SettingsWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_settings_writes_total",
			Help: "Total number of persisted settings changes by key",
		},
		[]string{"key"},
	)
)

// Scanner metrics
var (
	ScannerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_scanner_operations_total",
			Help: "Total number of folder scans by outcome",
		},
		[]string{"status"}, // loaded, empty, cancelled, error
	)

	ScannerOperationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidshelf_scanner_operation_duration_seconds",
			Help:    "Duration of directory listing in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ScannerFilesScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_scanner_entries_total",
			Help: "Directory entries seen by the scanner by result",
		},
		[]string{"result"}, // accepted, skipped
	)

	ScannerWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_scanner_watcher_events_total",
			Help: "File system events observed on the open folder",
		},
		[]string{"op"},
	)

	ScannerWatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshelf_scanner_watcher_errors_total",
			Help: "Total number of folder watcher errors",
		},
	)

	ScannerRescansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshelf_scanner_rescans_total",
			Help: "Total number of re-scans triggered by the folder watcher",
		},
	)
)

// Extraction metrics
var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_extractions_total",
			Help: "Total number of thumbnail/metadata extractions by quality and status",
		},
		[]string{"quality", "status"}, // success, timeout, decode_error, capture_error, canvas_unavailable, canceled
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidshelf_extraction_duration_seconds",
			Help:    "Thumbnail/metadata extraction duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"quality"},
	)

	ExtractionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_extractions_in_flight",
			Help: "Number of extractions currently running",
		},
	)

	ExtractionBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidshelf_extraction_batch_size",
			Help:    "Number of files per extraction batch",
			Buckets: []float64{1, 2, 3},
		},
	)

	ThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidshelf_thumbnail_bytes",
			Help:    "Encoded thumbnail size in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
	)
)

// Filesystem metrics
var (
	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors by operation",
		},
		[]string{"operation"},
	)

	FilesystemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidshelf_filesystem_retries_total",
			Help: "Total number of retried filesystem operations by outcome",
		},
		[]string{"operation", "result"}, // success, failure
	)
)

// Memory metrics
var (
	GoMemLimitBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_go_memlimit_bytes",
			Help: "Configured Go soft memory limit in bytes (0 when unset)",
		},
	)
)

// Blob reference metrics
var (
	BlobReferencesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_blob_references_active",
			Help: "Number of live blob references",
		},
	)

	BlobReferencesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidshelf_blob_references_created_total",
			Help: "Total number of blob references created",
		},
	)
)

// Library metrics
var (
	LibraryVideos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_library_videos",
			Help: "Number of videos in the open library",
		},
	)

	LibraryPlaceholders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_library_placeholders",
			Help: "Number of library entries whose extraction failed",
		},
	)

	PlaylistLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_playlist_length",
			Help: "Number of entries in the playlist",
		},
	)

	RecentlyPlayedLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidshelf_recently_played_length",
			Help: "Number of entries in the recently played list",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vidshelf_app_info",
			Help: "Application build information",
		},
		[]string{"version", "commit", "go_version"},
	)
)
