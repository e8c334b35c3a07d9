package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("marketplace-service/usecase")

// ListingUsecase serves browsing and owner management of published listings.
type ListingUsecase struct {
	repo      domain.ListingRepository
	cache     domain.ListingCache
	publisher domain.EventPublisher
	logger    *logger.Logger
}

// NewListingUsecase creates a ListingUsecase. cache may be nil.
func NewListingUsecase(repo domain.ListingRepository, cache domain.ListingCache, publisher domain.EventPublisher, log *logger.Logger) *ListingUsecase {
	return &ListingUsecase{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    log.Named("ListingUsecase"),
	}
}

// GetListing returns a public listing, reading through the cache, and
// counts the view. Deleted and flagged listings read as not found.
func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing")
	defer span.End()

	listing := uc.cached(ctx, id)
	if listing == nil {
		var err error
		listing, err = uc.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		uc.store(ctx, listing)
	}
	if !listing.Public() {
		return nil, domain.ErrListingNotFound
	}

	if err := uc.repo.IncrementViews(ctx, id); err != nil {
		uc.logger.Warn("Failed to increment listing views", zap.String("listing_id", id), zap.Error(err))
	} else {
		listing.Views++
	}
	return listing, nil
}

// SearchListings lists active listings newest first. Without an explicit
// status only active listings are returned.
func (uc *ListingUsecase) SearchListings(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error) {
	if err := filter.Normalize(); err != nil {
		return nil, 0, err
	}
	if filter.Status == "" {
		filter.Status = domain.StatusActive
	}
	listings, total, err := uc.repo.FindByFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Any("filter", filter), zap.Error(err))
		return nil, 0, err
	}
	return listings, total, nil
}

func (uc *ListingUsecase) FeaturedListings(ctx context.Context, limit int32) ([]*domain.Listing, error) {
	listings, _, err := uc.SearchListings(ctx, domain.Filter{Featured: true, Page: 1, Limit: limit})
	return listings, err
}

// MyListings returns every non-deleted listing owned by userID, flagged
// ones included.
func (uc *ListingUsecase) MyListings(ctx context.Context, userID string, page, limit int32) ([]*domain.Listing, int64, error) {
	filter := domain.Filter{UserID: userID, ExcludeStatus: domain.StatusInactive, Page: page, Limit: limit}
	if err := filter.Normalize(); err != nil {
		return nil, 0, err
	}
	return uc.repo.FindByFilter(ctx, filter)
}

func (uc *ListingUsecase) Stats(ctx context.Context) (*domain.Stats, error) {
	return uc.repo.Stats(ctx)
}

// UpdateListingStatus lets the owner mark a listing sold, reserved or active
// again. Flagged listings stay flagged until a moderator acts.
func (uc *ListingUsecase) UpdateListingStatus(ctx context.Context, id, userID string, status domain.ListingStatus) (*domain.Listing, error) {
	uc.logger.Info("Updating listing status",
		zap.String("listing_id", id), zap.String("user_id", userID), zap.String("new_status", string(status)))

	switch status {
	case domain.StatusActive, domain.StatusSold, domain.StatusReserved:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	listing, err := uc.ownedListing(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.StatusFlagged {
		return nil, fmt.Errorf("%w: listing is under review", domain.ErrInvalidStatus)
	}
	if listing.Status == status {
		return listing, nil
	}

	listing.Status = status
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to update listing status", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectListingStatusUpdated, map[string]interface{}{
		"listing_id": id,
		"user_id":    userID,
		"status":     status,
		"updated_at": listing.UpdatedAt.Format(time.RFC3339Nano),
	})
	return listing, nil
}

// DeleteListing hides the listing; the document is kept.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id, userID string) error {
	uc.logger.Info("Deleting listing", zap.String("listing_id", id), zap.String("user_id", userID))

	listing, err := uc.ownedListing(ctx, id, userID)
	if err != nil {
		return err
	}
	listing.Status = domain.StatusInactive
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error("Failed to soft delete listing", zap.String("listing_id", id), zap.Error(err))
		return err
	}
	uc.invalidate(ctx, id)
	uc.publish(ctx, domain.SubjectListingDeleted, map[string]interface{}{
		"listing_id": id,
		"user_id":    userID,
	})
	return nil
}

// Flag takes a listing out of the catalogue pending moderator review.
func (uc *ListingUsecase) Flag(ctx context.Context, listing *domain.Listing, reason string) error {
	listing.Status = domain.StatusFlagged
	listing.FlagReason = reason
	if err := uc.repo.Update(ctx, listing); err != nil {
		return fmt.Errorf("flag listing %s: %w", listing.ID, err)
	}
	uc.invalidate(ctx, listing.ID)
	uc.publish(ctx, domain.SubjectListingFlagged, map[string]interface{}{
		"listing_id": listing.ID,
		"user_id":    listing.UserID,
		"reason":     reason,
	})
	uc.logger.Info("Listing flagged", zap.String("listing_id", listing.ID), zap.String("reason", reason))
	return nil
}

func (uc *ListingUsecase) ownedListing(ctx context.Context, id, userID string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.StatusInactive {
		return nil, domain.ErrListingNotFound
	}
	if listing.UserID != userID {
		uc.logger.Warn("User forbidden to modify listing",
			zap.String("listing_id", id), zap.String("owner_id", listing.UserID), zap.String("user_id", userID))
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

func (uc *ListingUsecase) cached(ctx context.Context, id string) *domain.Listing {
	if uc.cache == nil {
		return nil
	}
	listing, err := uc.cache.Get(ctx, id)
	if err != nil {
		uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
		return nil
	}
	return listing
}

func (uc *ListingUsecase) store(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, listing); err != nil {
		uc.logger.Warn("Listing cache write failed", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, data map[string]interface{}) {
	publishEvent(ctx, uc.publisher, uc.logger, subject, data)
}

// publishEvent is best effort: the state change already happened.
func publishEvent(ctx context.Context, p domain.EventPublisher, log *logger.Logger, subject string, data map[string]interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		log.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
