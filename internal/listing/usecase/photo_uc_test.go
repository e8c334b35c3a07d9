package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAddPhoto(t *testing.T) {
	ctx := context.Background()
	img := domain.Image{Name: "Nueva.PNG", ContentType: "image/png", Data: []byte("png")}

	t.Run("uploads and appends", func(t *testing.T) {
		repo, storage, media := &mockListingRepo{}, &mockStorage{}, &mockImageChecker{}
		uc := NewPhotoUsecase(storage, repo, nil, media, logger.NewNop())

		repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1", Photos: []string{"a"}}, nil)
		media.On("Validate", mock.Anything, img).Return(validation.MediaResult{Valid: true})
		storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
			return assert.Regexp(t, `^listings/u1/[0-9a-f-]{36}\.png$`, key)
		}), "image/png", img.Data).Return("http://minio/b", nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
			return len(l.Photos) == 2 && l.Photos[1] == "http://minio/b"
		})).Return(nil)

		url, err := uc.AddPhoto(ctx, "l1", "u1", img)
		require.NoError(t, err)
		assert.Equal(t, "http://minio/b", url)
	})

	t.Run("limit reached", func(t *testing.T) {
		repo := &mockListingRepo{}
		uc := NewPhotoUsecase(&mockStorage{}, repo, nil, &mockImageChecker{}, logger.NewNop())
		photos := make([]string, validation.MaxImages)
		repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1", Photos: photos}, nil)

		_, err := uc.AddPhoto(ctx, "l1", "u1", img)
		assert.ErrorIs(t, err, domain.ErrTooManyPhotos)
	})

	t.Run("invalid image", func(t *testing.T) {
		repo, media := &mockListingRepo{}, &mockImageChecker{}
		uc := NewPhotoUsecase(&mockStorage{}, repo, nil, media, logger.NewNop())
		repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1"}, nil)
		media.On("Validate", mock.Anything, img).Return(validation.MediaResult{Message: validation.MsgImageInvalid})

		_, err := uc.AddPhoto(ctx, "l1", "u1", img)
		assert.ErrorIs(t, err, domain.ErrInvalidImage)
		assert.Contains(t, err.Error(), validation.MsgImageInvalid)
	})

	t.Run("update failure removes upload", func(t *testing.T) {
		repo, storage, media := &mockListingRepo{}, &mockStorage{}, &mockImageChecker{}
		uc := NewPhotoUsecase(storage, repo, nil, media, logger.NewNop())
		repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1"}, nil)
		media.On("Validate", mock.Anything, img).Return(validation.MediaResult{Valid: true})
		storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("http://minio/b", nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(errors.New("write conflict"))
		storage.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := uc.AddPhoto(ctx, "l1", "u1", img)
		assert.Error(t, err)
		storage.AssertExpectations(t)
	})
}

func TestRemovePhoto(t *testing.T) {
	ctx := context.Background()

	repo, storage, cache := &mockListingRepo{}, &mockStorage{}, &mockCache{}
	uc := NewPhotoUsecase(storage, repo, cache, &mockImageChecker{}, logger.NewNop())
	repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1", Photos: []string{"http://minio/a", "http://minio/b"}}, nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return len(l.Photos) == 1 && l.Photos[0] == "http://minio/b"
	})).Return(nil).Once()
	cache.On("Delete", mock.Anything, "l1").Return(nil).Once()
	storage.On("KeyFromURL", "http://minio/a").Return("listings/u1/a.jpg", true)
	storage.On("Delete", mock.Anything, "listings/u1/a.jpg").Return(nil).Once()

	require.NoError(t, uc.RemovePhoto(ctx, "l1", "u1", "http://minio/a"))
	storage.AssertExpectations(t)
	cache.AssertExpectations(t)

	repo.On("FindByID", mock.Anything, "l1").Return(&domain.Listing{ID: "l1", UserID: "u1", Photos: []string{"http://minio/b"}}, nil)
	err := uc.RemovePhoto(ctx, "l1", "u1", "http://minio/b")
	assert.ErrorIs(t, err, domain.ErrInvalidListingData)
}

func TestUploadImagesRollsBack(t *testing.T) {
	storage := &mockStorage{}
	imgs := []domain.Image{
		{Name: "1.jpg", ContentType: "image/jpeg", Data: []byte("1")},
		{Name: "2.jpg", ContentType: "image/jpeg", Data: []byte("2")},
		{Name: "3.jpg", ContentType: "image/jpeg", Data: []byte("3")},
	}
	for i, img := range imgs[:2] {
		storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", img.Data).Return(fmt.Sprintf("url-%d", i), nil).Once()
	}
	storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", imgs[2].Data).Return("", errors.New("bucket full")).Once()
	storage.On("Delete", mock.Anything, mock.Anything).Return(nil).Twice()

	_, _, err := uploadImages(context.Background(), storage, "u1", imgs)
	assert.ErrorContains(t, err, "upload image 3")
	storage.AssertExpectations(t)
}

func TestImageKeyFollowsContentType(t *testing.T) {
	key := imageKey("u1", domain.Image{Name: "blob", ContentType: "image/webp"})
	assert.Regexp(t, `^listings/u1/[0-9a-f-]{36}\.webp$`, key)

	key = imageKey("u1", domain.Image{Name: "foto.html", ContentType: "image/jpeg"})
	assert.Regexp(t, `^listings/u1/[0-9a-f-]{36}\.jpg$`, key)

	key = imageKey("u1", domain.Image{Name: "foto.JPEG", ContentType: "image/png; charset=binary"})
	assert.Regexp(t, `^listings/u1/[0-9a-f-]{36}\.png$`, key)
}
