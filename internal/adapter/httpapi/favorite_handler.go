package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	listings, err := h.favorites.FavoriteListings(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": nonNil(listings)})
}

func (h *Handler) handleIsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingID")
	fav, err := h.favorites.IsFavorite(r.Context(), userID, listingID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listing_id": listingID, "favorite": fav})
}

func (h *Handler) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingID")
	if err := h.favorites.AddFavorite(r.Context(), userID, listingID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"listing_id": listingID, "favorite": true})
}

func (h *Handler) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	if err := h.favorites.RemoveFavorite(r.Context(), userID, chi.URLParam(r, "listingID")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}
	listingID := chi.URLParam(r, "listingID")
	fav, err := h.favorites.ToggleFavorite(r.Context(), userID, listingID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listing_id": listingID, "favorite": fav})
}
