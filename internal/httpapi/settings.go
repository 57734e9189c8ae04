package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/raihanetx/submonth-backend/internal/domain/settings"
)

// GetSettings returns the current site settings with their version.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

// UpdateSettings replaces the settings record. The request must carry the
// version the admin last read; a stale version is rejected with 409 so
// concurrent edits never silently overwrite each other.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	s := &settings.Settings{
		Version:         req.Version,
		USDToBDTRate:    req.USDToBDTRate,
		ContactPhone:    req.ContactPhone,
		ContactWhatsapp: req.ContactWhatsapp,
		ContactEmail:    req.ContactEmail,
	}
	if err := s.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settings.Update(r.Context(), s); err != nil {
		if errors.Is(err, settings.ErrVersionConflict) {
			writeError(w, http.StatusConflict, "settings changed concurrently, reload and retry")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func toSettingsResponse(s *settings.Settings) SettingsResponse {
	return SettingsResponse{
		Version:         s.Version,
		USDToBDTRate:    s.USDToBDTRate,
		ContactPhone:    s.ContactPhone,
		ContactWhatsapp: s.ContactWhatsapp,
		ContactEmail:    s.ContactEmail,
	}
}
