// Package httpapi exposes the marketplace over HTTP with chi.
package httpapi

import (
	"context"
	"net/http"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type ListingService interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SearchListings(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error)
	FeaturedListings(ctx context.Context, limit int32) ([]*domain.Listing, error)
	MyListings(ctx context.Context, userID string, page, limit int32) ([]*domain.Listing, int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
	UpdateListingStatus(ctx context.Context, id, userID string, status domain.ListingStatus) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id, userID string) error
}

type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, listingID string) error
	RemoveFavorite(ctx context.Context, userID, listingID string) error
	ToggleFavorite(ctx context.Context, userID, listingID string) (bool, error)
	IsFavorite(ctx context.Context, userID, listingID string) (bool, error)
	FavoriteListings(ctx context.Context, userID string) ([]*domain.Listing, error)
}

type ReportService interface {
	ReportListing(ctx context.Context, listingID, reporterID, reason, details string) (*domain.Report, error)
	ListingReports(ctx context.Context, listingID, userID string) ([]*domain.Report, error)
}

type PhotoService interface {
	AddPhoto(ctx context.Context, listingID, userID string, img domain.Image) (string, error)
	RemovePhoto(ctx context.Context, listingID, userID, url string) error
}

type SubmissionService interface {
	Validate(ctx context.Context, d domain.Draft) domain.Verdict
	Start(ctx context.Context, ownerID string, d domain.Draft) (*submission.Flow, error)
	Get(ctx context.Context, ownerID, id string) (*submission.Flow, error)
	Edit(ctx context.Context, ownerID, id string, d domain.Draft) (*submission.Flow, error)
	CheckField(ctx context.Context, ownerID, id, field, value string) ([]string, error)
	Submit(ctx context.Context, ownerID, id string) (*submission.Flow, error)
	Confirm(ctx context.Context, ownerID, id string) (*submission.Flow, error)
	Revise(ctx context.Context, ownerID, id string) (*submission.Flow, error)
}

// Deps groups what the router serves. Metrics is optional.
type Deps struct {
	Listings       ListingService
	Favorites      FavoriteService
	Reports        ReportService
	Photos         PhotoService
	Submissions    SubmissionService
	Checker        moderation.Checker
	Locations      location.Directory
	Metrics        RequestObserver
	JWTSecret      string
	AllowedOrigins []string
}

type Handler struct {
	listings    ListingService
	favorites   FavoriteService
	reports     ReportService
	photos      PhotoService
	submissions SubmissionService
	checker     moderation.Checker
	locations   location.Directory
	metrics     RequestObserver
	logger      *logger.Logger
}

// NewRouter builds the public HTTP API.
func NewRouter(deps Deps, log *logger.Logger) http.Handler {
	h := &Handler{
		listings:    deps.Listings,
		favorites:   deps.Favorites,
		reports:     deps.Reports,
		photos:      deps.Photos,
		submissions: deps.Submissions,
		checker:     deps.Checker,
		locations:   deps.Locations,
		metrics:     deps.Metrics,
		logger:      log.Named("HTTPHandler"),
	}
	if h.metrics == nil {
		h.metrics = nopObserver{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.observe)
	r.Use(h.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/listings", h.handleSearchListings)
		r.Get("/listings/featured", h.handleFeaturedListings)
		r.Get("/listings/{id}", h.handleGetListing)
		r.Get("/stats", h.handleStats)
		r.Get("/catalog", h.handleCatalog)
		r.Get("/locations/provinces", h.handleProvinces)
		r.Get("/locations/provinces/{id}/cities", h.handleCities)
		r.Post("/moderation/check", h.handleCheckText)

		r.Group(func(r chi.Router) {
			r.Use(JWTAuth(deps.JWTSecret))

			r.Post("/listings/validate", h.handleValidateDraft)
			r.Patch("/listings/{id}/status", h.handleUpdateStatus)
			r.Delete("/listings/{id}", h.handleDeleteListing)
			r.Post("/listings/{id}/photos", h.handleAddPhoto)
			r.Delete("/listings/{id}/photos", h.handleRemovePhoto)
			r.Post("/listings/{id}/reports", h.handleReportListing)
			r.Get("/listings/{id}/reports", h.handleListingReports)
			r.Get("/me/listings", h.handleMyListings)

			r.Post("/submissions", h.handleStartSubmission)
			r.Get("/submissions/{id}", h.handleGetSubmission)
			r.Put("/submissions/{id}/draft", h.handleEditSubmission)
			r.Post("/submissions/{id}/check-field", h.handleCheckField)
			r.Post("/submissions/{id}/submit", h.handleSubmit)
			r.Post("/submissions/{id}/confirm", h.handleConfirm)
			r.Post("/submissions/{id}/revise", h.handleRevise)

			r.Get("/favorites", h.handleListFavorites)
			r.Get("/favorites/{listingID}", h.handleIsFavorite)
			r.Post("/favorites/{listingID}", h.handleAddFavorite)
			r.Delete("/favorites/{listingID}", h.handleRemoveFavorite)
			r.Post("/favorites/{listingID}/toggle", h.handleToggleFavorite)
		})
	})

	return r
}
