package kernel

import (
	"encoding/json"
	"net/http"
)

// handleGetSettings returns the LLM provider settings with the API key masked.
// GET /v1/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotFound, "settings are not enabled")
		return
	}
	writeJSON(w, http.StatusOK, s.settings.MaskedLLM())
}

// handleUpdateSettings merges the body into the current settings. Omitted fields keep
// their value; an empty or masked api_key keeps the stored key.
// PUT /v1/settings
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotFound, "settings are not enabled")
		return
	}

	update := s.settings.LLM()
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.settings.UpdateLLM(r.Context(), update); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.settings.MaskedLLM())
}
