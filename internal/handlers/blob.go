package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"vidshelf/internal/blob"
	"vidshelf/internal/logging"
	"vidshelf/internal/streaming"

	"github.com/gorilla/mux"
)

type blobResponse struct {
	Ref      string `json:"ref"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// CreateBlob issues a playable reference for a video. The client revokes it
// when playback ends.
func (h *Handlers) CreateBlob(w http.ResponseWriter, r *http.Request) {
	v, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Video not found", http.StatusNotFound)
		return
	}

	ref := h.blobs.Create(v.File.Path)
	entry, _ := h.blobs.Resolve(ref)

	writeJSONCode(w, http.StatusCreated, blobResponse{
		Ref:      ref,
		URL:      "/api/blob/" + blob.Token(ref),
		MimeType: entry.MimeType,
	})
}

// ServeBlob streams the file behind a reference with Range support.
func (h *Handlers) ServeBlob(w http.ResponseWriter, r *http.Request) {
	ref := blob.FromToken(mux.Vars(r)["token"])

	f, entry, err := h.blobs.Open(ref)
	if errors.Is(err, blob.ErrNotFound) {
		writeJSONError(w, "Blob not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Warn("Failed to open blob %s: %v", ref, err)
		writeJSONError(w, "File unavailable", http.StatusNotFound)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Debug("failed to close %s: %v", entry.Path, err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		writeJSONError(w, "File unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", entry.MimeType)
	streaming.ServeContent(w, r, filepath.Base(entry.Path), info.ModTime(), f, h.stream)
}

// RevokeBlob releases a reference.
func (h *Handlers) RevokeBlob(w http.ResponseWriter, r *http.Request) {
	if !h.blobs.Revoke(blob.FromToken(mux.Vars(r)["token"])) {
		writeJSONError(w, "Blob not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
