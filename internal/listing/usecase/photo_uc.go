package usecase

import (
	"context"
	"fmt"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageChecker validates a single uploaded image.
type ImageChecker interface {
	Validate(ctx context.Context, img domain.Image) validation.MediaResult
}

// PhotoUsecase edits the photo set of a published listing.
type PhotoUsecase struct {
	storage domain.Storage
	repo    domain.ListingRepository
	cache   domain.ListingCache
	media   ImageChecker
	logger  *logger.Logger
}

func NewPhotoUsecase(storage domain.Storage, repo domain.ListingRepository, cache domain.ListingCache, media ImageChecker, log *logger.Logger) *PhotoUsecase {
	return &PhotoUsecase{
		storage: storage,
		repo:    repo,
		cache:   cache,
		media:   media,
		logger:  log.Named("PhotoUsecase"),
	}
}

func (uc *PhotoUsecase) AddPhoto(ctx context.Context, listingID, userID string, img domain.Image) (string, error) {
	listing, err := uc.owned(ctx, listingID, userID)
	if err != nil {
		return "", err
	}
	if len(listing.Photos) >= validation.MaxImages {
		return "", domain.ErrTooManyPhotos
	}
	if res := uc.media.Validate(ctx, img); !res.Valid {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidImage, res.Message)
	}

	urls, keys, err := uploadImages(ctx, uc.storage, userID, []domain.Image{img})
	if err != nil {
		return "", err
	}
	listing.Photos = append(listing.Photos, urls[0])
	if err := uc.repo.Update(ctx, listing); err != nil {
		discardObjects(ctx, uc.storage, uc.logger, keys)
		return "", err
	}
	uc.invalidate(ctx, listingID)
	return urls[0], nil
}

// RemovePhoto drops one photo. A listing always keeps at least one.
func (uc *PhotoUsecase) RemovePhoto(ctx context.Context, listingID, userID, url string) error {
	listing, err := uc.owned(ctx, listingID, userID)
	if err != nil {
		return err
	}
	idx := -1
	for i, p := range listing.Photos {
		if p == url {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: photo not in listing", domain.ErrInvalidListingData)
	}
	if len(listing.Photos) <= validation.MinImages {
		return fmt.Errorf("%w: a listing needs at least one photo", domain.ErrInvalidListingData)
	}

	listing.Photos = append(listing.Photos[:idx:idx], listing.Photos[idx+1:]...)
	if err := uc.repo.Update(ctx, listing); err != nil {
		return err
	}
	uc.invalidate(ctx, listingID)
	if key, ok := uc.storage.KeyFromURL(url); ok {
		discardObjects(ctx, uc.storage, uc.logger, []string{key})
	}
	return nil
}

func (uc *PhotoUsecase) owned(ctx context.Context, listingID, userID string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.StatusInactive {
		return nil, domain.ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

func (uc *PhotoUsecase) invalidate(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// imageKey builds listings/<owner>/<uuid><ext>. The extension follows the
// validated content type and ignores the client's file name.
func imageKey(ownerID string, img domain.Image) string {
	ext := extByType[validation.ContentType(img)]
	return fmt.Sprintf("listings/%s/%s%s", ownerID, uuid.NewString(), ext)
}

// uploadImages stores imgs in order. On failure every object already
// written is removed again.
func uploadImages(ctx context.Context, storage domain.Storage, ownerID string, imgs []domain.Image) (urls, keys []string, err error) {
	urls = make([]string, 0, len(imgs))
	keys = make([]string, 0, len(imgs))
	for i, img := range imgs {
		key := imageKey(ownerID, img)
		url, err := storage.Upload(ctx, key, validation.ContentType(img), img.Data)
		if err != nil {
			discardObjects(context.WithoutCancel(ctx), storage, nil, keys)
			return nil, nil, fmt.Errorf("upload image %d: %w", i+1, err)
		}
		urls = append(urls, url)
		keys = append(keys, key)
	}
	return urls, keys, nil
}

func discardObjects(ctx context.Context, storage domain.Storage, log *logger.Logger, keys []string) {
	for _, key := range keys {
		if err := storage.Delete(ctx, key); err != nil && log != nil {
			log.Warn("Failed to remove orphaned image", zap.String("key", key), zap.Error(err))
		}
	}
}
