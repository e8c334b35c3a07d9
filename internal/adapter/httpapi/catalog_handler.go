package httpapi

import (
	"net/http"
	"strconv"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":     domain.Categories,
		"conditions":     domain.Conditions,
		"report_reasons": domain.ReportReasons,
	})
}

func (h *Handler) handleProvinces(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"provinces": h.locations.Provinces()})
}

func (h *Handler) handleCities(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "province id must be an integer")
		return
	}
	cities := h.locations.Cities(id)
	if cities == nil {
		writeError(w, http.StatusNotFound, "province not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

// handleCheckText runs the profanity matcher over arbitrary text so clients
// can warn while the user types.
func (h *Handler) handleCheckText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.checker.CheckText(req.Text))
}
