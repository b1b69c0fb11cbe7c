package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"vidshelf/internal/logging"
	"vidshelf/internal/playlist"
	"vidshelf/internal/store"

	"github.com/gorilla/mux"
)

const exportTitle = "vidshelf-playlist"

type videoRef struct {
	ID string `json:"id"`
}

// GetPlaylist returns the queued videos in play order.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, _ *http.Request) {
	writeJSONCode(w, http.StatusOK, newVideoViews(h.store.Playlist()))
}

// AddToPlaylist queues the video named in the body. A video whose file name
// is already queued is not added twice.
func (h *Handlers) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var req videoRef
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, ok := h.store.Get(req.ID)
	if !ok {
		writeJSONError(w, "Video not found", http.StatusNotFound)
		return
	}

	added := h.store.AddToPlaylist(v)
	code := http.StatusCreated
	if !added {
		code = http.StatusOK
	}
	writeJSONCode(w, code, map[string]interface{}{
		"added":    added,
		"playlist": newVideoViews(h.store.Playlist()),
	})
}

// RemoveFromPlaylist drops the entry at {index}.
func (h *Handlers) RemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeJSONError(w, "Invalid playlist index", http.StatusBadRequest)
		return
	}
	if err := h.store.RemoveFromPlaylist(index); err != nil {
		if errors.Is(err, store.ErrIndexOutOfRange) {
			writeJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSONCode(w, http.StatusOK, newVideoViews(h.store.Playlist()))
}

// ClearPlaylist empties the playlist.
func (h *Handlers) ClearPlaylist(w http.ResponseWriter, _ *http.Request) {
	h.store.ClearPlaylist()
	w.WriteHeader(http.StatusNoContent)
}

// GetRecent returns recently played videos, newest first.
func (h *Handlers) GetRecent(w http.ResponseWriter, _ *http.Request) {
	writeJSONCode(w, http.StatusOK, newVideoViews(h.store.RecentlyPlayed()))
}

// AddRecent records that a video started playing.
func (h *Handlers) AddRecent(w http.ResponseWriter, r *http.Request) {
	var req videoRef
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	v, ok := h.store.Get(req.ID)
	if !ok {
		writeJSONError(w, "Video not found", http.StatusNotFound)
		return
	}
	h.store.AddToRecentlyPlayed(v)
	writeJSONCode(w, http.StatusOK, newVideoViews(h.store.RecentlyPlayed()))
}

// ExportPlaylist downloads the playlist as ?format=m3u (default) or wpl.
func (h *Handlers) ExportPlaylist(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(playlist.FormatM3U)
	}
	format, err := playlist.ParseFormat(name)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := playlist.Write(&buf, format, exportTitle, h.store.Playlist()); err != nil {
		logging.Error("Failed to export playlist: %v", err)
		writeJSONError(w, "Failed to export playlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportTitle+"."+string(format)))
	_, _ = w.Write(buf.Bytes())
}

// ImportPlaylist reads an M3U or WPL body (?format=) and queues every entry
// that matches a video in the open library.
func (h *Handlers) ImportPlaylist(w http.ResponseWriter, r *http.Request) {
	format, err := playlist.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	pl, err := playlist.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes), format, exportTitle)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	matched, missing := playlist.Resolve(pl, h.store.Videos())
	if missing == nil {
		missing = []string{}
	}
	added := 0
	for _, v := range matched {
		if h.store.AddToPlaylist(v) {
			added++
		}
	}
	logging.Info("Imported playlist %q: %d added, %d not in library", pl.Name, added, len(missing))

	writeJSONCode(w, http.StatusOK, map[string]interface{}{
		"name":     pl.Name,
		"added":    added,
		"missing":  missing,
		"playlist": newVideoViews(h.store.Playlist()),
	})
}
