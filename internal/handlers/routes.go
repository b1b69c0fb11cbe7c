package handlers

import (
	"github.com/gorilla/mux"
)

// Register adds every API route to r.
func (h *Handlers) Register(r *mux.Router) {
	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET").Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Library
	api.HandleFunc("/library", h.GetLibrary).Methods("GET")
	api.HandleFunc("/library/open", h.OpenLibrary).Methods("POST")
	api.HandleFunc("/library/rescan", h.RescanLibrary).Methods("POST")

	// Videos
	api.HandleFunc("/videos", h.ListVideos).Methods("GET")
	api.HandleFunc("/videos/{id}", h.GetVideo).Methods("GET")
	api.HandleFunc("/videos/{id}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/videos/{id}/blob", h.CreateBlob).Methods("POST")

	// Blob references
	api.HandleFunc("/blob/{token}", h.ServeBlob).Methods("GET", "HEAD")
	api.HandleFunc("/blob/{token}", h.RevokeBlob).Methods("DELETE")

	// Playlist and history
	api.HandleFunc("/playlist", h.GetPlaylist).Methods("GET")
	api.HandleFunc("/playlist", h.AddToPlaylist).Methods("POST")
	api.HandleFunc("/playlist", h.ClearPlaylist).Methods("DELETE")
	api.HandleFunc("/playlist/export", h.ExportPlaylist).Methods("GET")
	api.HandleFunc("/playlist/import", h.ImportPlaylist).Methods("POST")
	api.HandleFunc("/playlist/{index:[0-9]+}", h.RemoveFromPlaylist).Methods("DELETE")
	api.HandleFunc("/recent", h.GetRecent).Methods("GET")
	api.HandleFunc("/recent", h.AddRecent).Methods("POST")

	// Settings
	api.HandleFunc("/settings", h.GetSettings).Methods("GET")
	api.HandleFunc("/settings", h.UpdateSettings).Methods("PUT", "PATCH")

	// Codec support
	api.HandleFunc("/codecs", h.GetCodecs).Methods("GET")
	api.HandleFunc("/codecs/report", h.ReportCodecs).Methods("POST")
	api.HandleFunc("/codecs/recommend", h.RecommendCodec).Methods("GET")
	api.HandleFunc("/codecs/playback-error", h.PlaybackErrorMessage).Methods("GET")
}
