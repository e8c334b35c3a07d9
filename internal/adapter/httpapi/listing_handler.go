package httpapi

import (
	"net/http"
	"strings"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/go-chi/chi/v5"
)

type listingPage struct {
	Listings []*domain.Listing `json:"listings"`
	Total    int64             `json:"total"`
	Page     int32             `json:"page"`
	Limit    int32             `json:"limit"`
}

func (h *Handler) handleSearchListings(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := filter.Normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	listings, total, err := h.listings.SearchListings(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingPage{Listings: nonNil(listings), Total: total, Page: filter.Page, Limit: filter.Limit})
}

func filterFromQuery(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	filter := domain.Filter{
		Query:     strings.TrimSpace(q.Get("q")),
		Category:  q.Get("category"),
		Province:  q.Get("province"),
		City:      q.Get("city"),
		Condition: q.Get("condition"),
	}
	var err error
	if filter.MinPrice, err = queryFloat(r, "min_price"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryFloat(r, "max_price"); err != nil {
		return filter, err
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		return filter, err
	}
	limit, err := queryInt(r, "limit", domain.DefaultPageSize)
	if err != nil {
		return filter, err
	}
	filter.Page, filter.Limit = int32(page), int32(limit)
	return filter, nil
}

func (h *Handler) handleFeaturedListings(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", domain.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if limit < 1 || limit > domain.MaxPageSize {
		limit = domain.DefaultPageSize
	}
	listings, err := h.listings.FeaturedListings(r.Context(), int32(limit))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": nonNil(listings)})
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.GetListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingView(listing))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.listings.Stats(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleMyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", domain.DefaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	listings, total, err := h.listings.MyListings(r.Context(), userID, int32(page), int32(limit))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingPage{Listings: nonNil(listings), Total: total, Page: int32(page), Limit: int32(limit)})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	listing, err := h.listings.UpdateListingStatus(r.Context(), chi.URLParam(r, "id"), userID, domain.ListingStatus(req.Status))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listingView(listing))
}

func (h *Handler) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.listings.DeleteListing(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type listingResponse struct {
	*domain.Listing
	PriceLabel string `json:"price_label"`
}

func listingView(l *domain.Listing) listingResponse {
	return listingResponse{Listing: l, PriceLabel: l.FormattedPrice()}
}

func nonNil(listings []*domain.Listing) []*domain.Listing {
	if listings == nil {
		return []*domain.Listing{}
	}
	return listings
}
