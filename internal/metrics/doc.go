// Package metrics provides Prometheus instrumentation for vidshelf.
//
// All metrics are prefixed with "vidshelf_" and registered with the default
// registry through promauto. InitializeMetrics pre-creates the known label
// combinations so dashboards see zero-valued series from the first scrape.
//
// # Metric Categories
//
//   - HTTP: request counts, durations and in-flight requests.
//   - Database: settings store query counts/durations and per-key writes.
//   - Scanner: folder scan outcomes (loaded/empty/cancelled/error), entries
//     accepted or skipped by the extension allow-list, watcher activity.
//   - Extraction: per-file outcomes by quality tier (success, timeout,
//     decode_error, capture_error, canvas_unavailable, canceled), durations,
//     batch sizes and encoded thumbnail sizes.
//   - Blob references: live and created object references.
//   - Library: video, placeholder, playlist and recently-played counts,
//     refreshed by the Collector.
package metrics
