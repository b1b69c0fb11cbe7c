package handlers

import (
	"net/http"
	"strconv"

	"vidshelf/internal/codec"
)

// codecInfoResponse combines format support with the display summary.
type codecInfoResponse struct {
	codec.BrowserInfo
	Source  string          `json:"source"`
	Formats []codec.Support `json:"formats"`
}

// codecSource names where the current support table came from.
func codecSource(reported bool) string {
	if reported {
		return "browser"
	}
	return "ffmpeg"
}

// GetCodecs returns the detected format support.
func (h *Handlers) GetCodecs(w http.ResponseWriter, r *http.Request) {
	supports, reported := h.codecSupport()
	writeJSONCode(w, http.StatusOK, codecInfoResponse{
		BrowserInfo: codec.Info(r.UserAgent(), supports),
		Source:      codecSource(reported),
		Formats:     supports,
	})
}

// ReportCodecs replaces the support table with the browser's own answers,
// a map of MIME type (with codecs parameter) to "probably", "maybe" or "".
func (h *Handlers) ReportCodecs(w http.ResponseWriter, r *http.Request) {
	var report map[string]string
	if err := decodeJSON(r, &report); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(report) == 0 {
		writeJSONError(w, "Empty codec report", http.StatusBadRequest)
		return
	}

	supports := codec.Detect(codec.NewReportedProber(report))
	h.setCodecSupport(supports)

	writeJSONCode(w, http.StatusOK, codecInfoResponse{
		BrowserInfo: codec.Info(r.UserAgent(), supports),
		Source:      codecSource(true),
		Formats:     supports,
	})
}

// RecommendCodec advises whether ?file= is likely to play.
func (h *Handlers) RecommendCodec(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeJSONError(w, "file is required", http.StatusBadRequest)
		return
	}
	supports, _ := h.codecSupport()
	writeJSONCode(w, http.StatusOK, codec.Recommend(file, supports))
}

// PlaybackErrorMessage turns a media element error code into the message
// shown to the user.
func (h *Handlers) PlaybackErrorMessage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, err := strconv.Atoi(q.Get("code"))
	if err != nil || code < 0 {
		code = int(codec.NoMediaError)
	}
	supports, _ := h.codecSupport()
	writeJSONCode(w, http.StatusOK, map[string]string{
		"message": codec.PlaybackError(codec.MediaErrorCode(code), q.Get("file"), supports),
	})
}
