package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"loaded", "empty", "cancelled", "error"} {
		ScannerOperationsTotal.WithLabelValues(status)
	}

	for _, result := range []string{"accepted", "skipped"} {
		ScannerFilesScanned.WithLabelValues(result)
	}

	for _, op := range []string{"create", "write", "remove", "rename", "chmod"} {
		ScannerWatcherEventsTotal.WithLabelValues(op)
	}

	for _, quality := range []string{"low", "medium", "high"} {
		for _, status := range []string{"success", "timeout", "decode_error", "capture_error", "canvas_unavailable", "canceled"} {
			ExtractionsTotal.WithLabelValues(quality, status)
		}
		ExtractionDuration.WithLabelValues(quality)
	}

	for _, key := range []string{"theme", "view", "autoplay", "thumbnailQuality"} {
		SettingsWritesTotal.WithLabelValues(key)
	}

	for _, op := range []string{"stat", "open"} {
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetries.WithLabelValues(op, "success")
		FilesystemRetries.WithLabelValues(op, "failure")
	}

	for _, op := range []string{"initialize_schema", "get_setting", "set_setting", "list_settings"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
