package httpapi

import (
	"context"
	"net/http"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/go-chi/chi/v5"
)

// handleValidateDraft returns the verdict for a draft without starting a
// submission.
func (h *Handler) handleValidateDraft(w http.ResponseWriter, r *http.Request) {
	d, err := parseDraft(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.submissions.Validate(r.Context(), d))
}

func (h *Handler) handleStartSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	d, err := parseDraft(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.submissions.Start(r.Context(), userID, d)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, flowView(f))
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	f, err := h.submissions.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowView(f))
}

func (h *Handler) handleEditSubmission(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	d, err := parseDraft(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := h.submissions.Edit(r.Context(), userID, chi.URLParam(r, "id"), d)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowView(f))
}

// handleCheckField validates one field as the user leaves it.
func (h *Handler) handleCheckField(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msgs, err := h.submissions.CheckField(r.Context(), userID, chi.URLParam(r, "id"), req.Field, req.Value)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"field": req.Field, "valid": len(msgs) == 0, "errors": msgs})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.submissions.Submit)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.submissions.Confirm)
}

func (h *Handler) handleRevise(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.submissions.Revise)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, ownerID, id string) (*submission.Flow, error)) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	f, err := op(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, flowView(f))
}

// flowResponse omits image bytes; clients already hold the files.
type flowResponse struct {
	ID        string          `json:"id"`
	State     string          `json:"state"`
	Draft     domain.Draft    `json:"draft"`
	Images    []imageSummary  `json:"images"`
	Verdict   *domain.Verdict `json:"verdict,omitempty"`
	ListingID string          `json:"listing_id,omitempty"`
}

type imageSummary struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

func flowView(f *submission.Flow) flowResponse {
	resp := flowResponse{
		ID:        f.ID,
		State:     string(f.State),
		Draft:     f.Draft,
		Images:    make([]imageSummary, 0, len(f.Draft.Images)),
		Verdict:   f.Verdict,
		ListingID: f.ListingID,
	}
	for _, img := range f.Draft.Images {
		resp.Images = append(resp.Images, imageSummary{Name: img.Name, ContentType: img.ContentType, Size: img.Size()})
	}
	resp.Draft.Images = nil
	return resp
}
