package usecase

import (
	"context"
	"errors"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// FavoriteUsecase manages a user's saved listings. The repository is the
// only place favorites live.
type FavoriteUsecase struct {
	favorites domain.FavoriteRepository
	listings  domain.ListingRepository
	publisher domain.EventPublisher
	logger    *logger.Logger
}

func NewFavoriteUsecase(favorites domain.FavoriteRepository, listings domain.ListingRepository, publisher domain.EventPublisher, log *logger.Logger) *FavoriteUsecase {
	return &FavoriteUsecase{
		favorites: favorites,
		listings:  listings,
		publisher: publisher,
		logger:    log.Named("FavoriteUsecase"),
	}
}

func (uc *FavoriteUsecase) AddFavorite(ctx context.Context, userID, listingID string) error {
	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if !listing.Public() {
		return domain.ErrListingNotFound
	}

	if err := uc.favorites.Add(ctx, &domain.Favorite{UserID: userID, ListingID: listingID}); err != nil {
		if !errors.Is(err, domain.ErrDuplicateFavorite) {
			uc.logger.Error("Failed to add favorite", zap.String("user_id", userID), zap.String("listing_id", listingID), zap.Error(err))
		}
		return err
	}
	publishEvent(ctx, uc.publisher, uc.logger, domain.SubjectFavoriteAdded, map[string]interface{}{
		"user_id":    userID,
		"listing_id": listingID,
	})
	return nil
}

func (uc *FavoriteUsecase) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	if err := uc.favorites.Remove(ctx, userID, listingID); err != nil {
		return err
	}
	publishEvent(ctx, uc.publisher, uc.logger, domain.SubjectFavoriteRemoved, map[string]interface{}{
		"user_id":    userID,
		"listing_id": listingID,
	})
	return nil
}

// ToggleFavorite flips the favorite and reports whether it is now set.
func (uc *FavoriteUsecase) ToggleFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	exists, err := uc.favorites.Exists(ctx, userID, listingID)
	if err != nil {
		return false, err
	}
	if exists {
		err = uc.RemoveFavorite(ctx, userID, listingID)
		if errors.Is(err, domain.ErrFavoriteNotFound) {
			err = nil
		}
		return false, err
	}
	err = uc.AddFavorite(ctx, userID, listingID)
	if errors.Is(err, domain.ErrDuplicateFavorite) {
		err = nil
	}
	return err == nil, err
}

func (uc *FavoriteUsecase) IsFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	return uc.favorites.Exists(ctx, userID, listingID)
}

// FavoriteListings resolves the user's favorites to listings, newest
// favorite first. Favorites of deleted or flagged listings are skipped.
func (uc *FavoriteUsecase) FavoriteListings(ctx context.Context, userID string) ([]*domain.Listing, error) {
	favs, err := uc.favorites.FindByUserID(ctx, userID)
	if err != nil {
		uc.logger.Error("Failed to fetch favorites", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	out := make([]*domain.Listing, 0, len(favs))
	for _, f := range favs {
		listing, err := uc.listings.FindByID(ctx, f.ListingID)
		if errors.Is(err, domain.ErrListingNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !listing.Public() {
			continue
		}
		out = append(out, listing)
	}
	return out, nil
}
