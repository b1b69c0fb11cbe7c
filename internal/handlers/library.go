package handlers

import (
	"context"
	"errors"
	"net/http"

	"vidshelf/internal/library"
	"vidshelf/internal/logging"
)

type openRequest struct {
	Path string `json:"path"`
}

// libraryResponse is the body of a successful open or rescan. Videos are
// rendered with display fields.
type libraryResponse struct {
	Status  library.Status `json:"status"`
	Message string         `json:"message,omitempty"`
	Dir     string         `json:"dir,omitempty"`
	Count   int            `json:"count"`
	Videos  []videoView    `json:"videos,omitempty"`
}

// OpenLibrary scans the folder named in the body. An empty path is treated as
// a dismissed folder picker and answered with 204.
func (h *Handlers) OpenLibrary(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.library.Open(r.Context(), library.StaticPicker(req.Path))
	h.writeLibraryResult(w, res, err)
}

// RescanLibrary reloads the open folder.
func (h *Handlers) RescanLibrary(w http.ResponseWriter, r *http.Request) {
	res, err := h.library.Rescan(r.Context())
	h.writeLibraryResult(w, res, err)
}

// GetLibrary reports the open folder and scan state.
func (h *Handlers) GetLibrary(w http.ResponseWriter, _ *http.Request) {
	writeJSONCode(w, http.StatusOK, map[string]interface{}{
		"dir":      h.library.Dir(),
		"scanning": h.library.Scanning(),
		"count":    len(h.store.Videos()),
	})
}

func (h *Handlers) writeLibraryResult(w http.ResponseWriter, res library.Result, err error) {
	switch {
	case errors.Is(err, library.ErrScanInProgress):
		writeJSONError(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, library.ErrNoLibrary):
		writeJSONError(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, context.Canceled):
		logging.Debug("Library scan cancelled: %v", err)
		writeJSONError(w, "Scan cancelled", http.StatusServiceUnavailable)
		return
	case err != nil:
		logging.Warn("Library scan failed: %v", err)
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if res.Status == library.StatusCancelled {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSONCode(w, http.StatusOK, libraryResponse{
		Status:  res.Status,
		Message: res.Message,
		Dir:     res.Dir,
		Count:   len(res.Videos),
		Videos:  newVideoViews(res.Videos),
	})
}
