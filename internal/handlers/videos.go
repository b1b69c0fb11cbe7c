package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"vidshelf/internal/extract"
	"vidshelf/internal/format"
	"vidshelf/internal/media"
	"vidshelf/internal/mediatypes"

	"github.com/gorilla/mux"
)

// videoView is a library record with the strings the UI displays.
type videoView struct {
	media.VideoMetadata
	DurationText string `json:"durationText"`
	SizeText     string `json:"sizeText"`
	DateText     string `json:"dateText"`
	Placeholder  bool   `json:"placeholder"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

func newVideoView(v media.VideoMetadata, now time.Time) videoView {
	view := videoView{
		VideoMetadata: v,
		DurationText:  format.Duration(v.Meta.Duration),
		SizeText:      format.FileSize(v.Meta.Size),
		DateText:      format.Date(v.Meta.Created, now),
		Placeholder:   v.IsPlaceholder(),
	}
	if v.Thumbnail != "" {
		view.ThumbnailURL = "/api/videos/" + v.ID + "/thumbnail"
	}
	return view
}

func newVideoViews(videos []media.VideoMetadata) []videoView {
	now := time.Now()
	views := make([]videoView, len(videos))
	for i, v := range videos {
		views[i] = newVideoView(v, now)
	}
	return views
}

type videoListResponse struct {
	Filter media.FilterOptions `json:"filter"`
	Total  int                 `json:"total"`
	Count  int                 `json:"count"`
	Videos []videoView         `json:"videos"`
}

// ListVideos returns the library narrowed by search, format and sortBy.
// Query parameters that are present replace the stored filter.
func (h *Handlers) ListVideos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := h.store.Filter()
	changed := false
	if q.Has("search") {
		f.Search = q.Get("search")
		changed = true
	}
	if q.Has("sortBy") {
		f.SortBy = mediatypes.SortField(q.Get("sortBy"))
		changed = true
	}
	if q.Has("format") {
		f.Format = q.Get("format")
		changed = true
	}
	if changed {
		h.store.SetFilter(f)
	}

	videos := h.store.Filtered()
	writeJSONCode(w, http.StatusOK, videoListResponse{
		Filter: h.store.Filter(),
		Total:  len(h.store.Videos()),
		Count:  len(videos),
		Videos: newVideoViews(videos),
	})
}

// GetVideo returns one record.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	v, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Video not found", http.StatusNotFound)
		return
	}
	writeJSONCode(w, http.StatusOK, newVideoView(v, time.Now()))
}

// GetThumbnail serves the JPEG embedded in a record's data URI.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	v, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		writeJSONError(w, "Video not found", http.StatusNotFound)
		return
	}
	if v.Thumbnail == "" {
		writeJSONError(w, "No thumbnail for this video", http.StatusNotFound)
		return
	}

	data, err := decodeDataURI(v.Thumbnail)
	if err != nil {
		writeJSONError(w, "Corrupt thumbnail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(data)
}

func decodeDataURI(uri string) ([]byte, error) {
	payload := strings.TrimPrefix(uri, extract.DataURIPrefix)
	return base64.StdEncoding.DecodeString(payload)
}
