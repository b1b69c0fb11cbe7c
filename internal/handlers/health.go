package handlers

import (
	"net/http"
	"runtime"
	"time"

	"vidshelf/internal/logging"
	"vidshelf/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusScanning = "scanning"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Ready    bool   `json:"ready"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Scanning bool   `json:"scanning"`
	Library  string `json:"library,omitempty"`
	Error    string `json:"error,omitempty"`

	Videos       int `json:"videos"`
	Placeholders int `json:"placeholders"`
	BlobRefs     int `json:"blobRefs"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()

	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Scanning:     h.library.Scanning(),
		Library:      h.library.Dir(),
		Videos:       stats.Videos,
		Placeholders: stats.Placeholders,
		BlobRefs:     h.blobs.Len(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if response.Scanning {
		response.Status = statusScanning
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		logging.Warn("Health check: database unreachable: %v", err)
		response.Status = statusDegraded
		response.Ready = false
		response.Error = "settings database unreachable"
		code = http.StatusServiceUnavailable
	}

	writeJSONCode(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 once the settings database answers.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeJSONCode(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSONStatus(w, "ready")
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONCode(w, http.StatusOK, startup.GetBuildInfo())
}
