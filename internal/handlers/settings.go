package handlers

import (
	"errors"
	"net/http"

	"vidshelf/internal/logging"
	"vidshelf/internal/settings"
)

// GetSettings returns the current user settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSONCode(w, http.StatusOK, h.settings.Get())
}

// UpdateSettings applies a partial update. Only changed keys are stored.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var u settings.Update
	if err := decodeJSON(r, &u); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, err := h.settings.Apply(r.Context(), u)
	if errors.Is(err, settings.ErrInvalidValue) {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.Error("Failed to save settings: %v", err)
		writeJSONError(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}
	writeJSONCode(w, http.StatusOK, s)
}
