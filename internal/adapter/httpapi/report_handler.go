package httpapi

import (
	"net/http"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleReportListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason  string `json:"reason"`
		Details string `json:"details"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.reports.ReportListing(r.Context(), chi.URLParam(r, "id"), userID, req.Reason, req.Details)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func (h *Handler) handleListingReports(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	reports, err := h.reports.ListingReports(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if reports == nil {
		reports = []*domain.Report{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}
