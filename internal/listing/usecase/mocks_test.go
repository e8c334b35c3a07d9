package usecase

import (
	"context"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/validation"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/stretchr/testify/mock"
)

type mockListingRepo struct{ mock.Mock }

func (m *mockListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	args := m.Called(ctx, l)
	if args.Error(0) == nil && l.ID == "" {
		l.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *mockListingRepo) Update(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockListingRepo) FindBySubmissionID(ctx context.Context, submissionID string) (*domain.Listing, error) {
	args := m.Called(ctx, submissionID)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockListingRepo) FindByFilter(ctx context.Context, f domain.Filter) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, f)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Get(1).(int64), args.Error(2)
}

func (m *mockListingRepo) IncrementViews(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockListingRepo) FindUpdatedSince(ctx context.Context, since time.Time, status domain.ListingStatus) ([]*domain.Listing, error) {
	args := m.Called(ctx, since, status)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Error(1)
}

func (m *mockListingRepo) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.Stats)
	return s, args.Error(1)
}

type mockFavoriteRepo struct{ mock.Mock }

func (m *mockFavoriteRepo) Add(ctx context.Context, f *domain.Favorite) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFavoriteRepo) Remove(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func (m *mockFavoriteRepo) FindByUserID(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	args := m.Called(ctx, userID)
	fs, _ := args.Get(0).([]*domain.Favorite)
	return fs, args.Error(1)
}

func (m *mockFavoriteRepo) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

type mockReportRepo struct{ mock.Mock }

func (m *mockReportRepo) Create(ctx context.Context, r *domain.Report) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReportRepo) CountByListing(ctx context.Context, listingID string) (int64, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReportRepo) FindByListing(ctx context.Context, listingID string) ([]*domain.Report, error) {
	args := m.Called(ctx, listingID)
	rs, _ := args.Get(0).([]*domain.Report)
	return rs, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) GetEmailByID(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, key, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStorage) KeyFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, l *domain.Listing) error {
	return m.Called(ctx, l).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return m.Called(ctx, subject, data).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendListingPublished(to string, l *domain.Listing) error {
	return m.Called(to, l).Error(0)
}

type mockImageChecker struct{ mock.Mock }

func (m *mockImageChecker) Validate(ctx context.Context, img domain.Image) validation.MediaResult {
	return m.Called(ctx, img).Get(0).(validation.MediaResult)
}

type stubChecker struct{ result moderation.Result }

func (s stubChecker) CheckText(string) moderation.Result { return s.result }
