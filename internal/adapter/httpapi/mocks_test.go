package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/stretchr/testify/mock"
)

type mockListings struct{ mock.Mock }

func (m *mockListings) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockListings) SearchListings(ctx context.Context, f domain.Filter) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, f)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Get(1).(int64), args.Error(2)
}

func (m *mockListings) FeaturedListings(ctx context.Context, limit int32) ([]*domain.Listing, error) {
	args := m.Called(ctx, limit)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Error(1)
}

func (m *mockListings) MyListings(ctx context.Context, userID string, page, limit int32) ([]*domain.Listing, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Get(1).(int64), args.Error(2)
}

func (m *mockListings) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.Stats)
	return s, args.Error(1)
}

func (m *mockListings) UpdateListingStatus(ctx context.Context, id, userID string, status domain.ListingStatus) (*domain.Listing, error) {
	args := m.Called(ctx, id, userID, status)
	l, _ := args.Get(0).(*domain.Listing)
	return l, args.Error(1)
}

func (m *mockListings) DeleteListing(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

type mockFavorites struct{ mock.Mock }

func (m *mockFavorites) AddFavorite(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func (m *mockFavorites) RemoveFavorite(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func (m *mockFavorites) ToggleFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFavorites) IsFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFavorites) FavoriteListings(ctx context.Context, userID string) ([]*domain.Listing, error) {
	args := m.Called(ctx, userID)
	ls, _ := args.Get(0).([]*domain.Listing)
	return ls, args.Error(1)
}

type mockReports struct{ mock.Mock }

func (m *mockReports) ReportListing(ctx context.Context, listingID, reporterID, reason, details string) (*domain.Report, error) {
	args := m.Called(ctx, listingID, reporterID, reason, details)
	r, _ := args.Get(0).(*domain.Report)
	return r, args.Error(1)
}

func (m *mockReports) ListingReports(ctx context.Context, listingID, userID string) ([]*domain.Report, error) {
	args := m.Called(ctx, listingID, userID)
	rs, _ := args.Get(0).([]*domain.Report)
	return rs, args.Error(1)
}

type mockPhotos struct{ mock.Mock }

func (m *mockPhotos) AddPhoto(ctx context.Context, listingID, userID string, img domain.Image) (string, error) {
	args := m.Called(ctx, listingID, userID, img)
	return args.String(0), args.Error(1)
}

func (m *mockPhotos) RemovePhoto(ctx context.Context, listingID, userID, url string) error {
	return m.Called(ctx, listingID, userID, url).Error(0)
}

type mockSubmissions struct{ mock.Mock }

func (m *mockSubmissions) Validate(ctx context.Context, d domain.Draft) domain.Verdict {
	return m.Called(ctx, d).Get(0).(domain.Verdict)
}

func (m *mockSubmissions) Start(ctx context.Context, ownerID string, d domain.Draft) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, d))
}

func (m *mockSubmissions) Get(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, id))
}

func (m *mockSubmissions) Edit(ctx context.Context, ownerID, id string, d domain.Draft) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, id, d))
}

func (m *mockSubmissions) CheckField(ctx context.Context, ownerID, id, field, value string) ([]string, error) {
	args := m.Called(ctx, ownerID, id, field, value)
	msgs, _ := args.Get(0).([]string)
	return msgs, args.Error(1)
}

func (m *mockSubmissions) Submit(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, id))
}

func (m *mockSubmissions) Confirm(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, id))
}

func (m *mockSubmissions) Revise(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return m.flow(m.Called(ctx, ownerID, id))
}

func (m *mockSubmissions) flow(args mock.Arguments) (*submission.Flow, error) {
	f, _ := args.Get(0).(*submission.Flow)
	return f, args.Error(1)
}

type observed struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observed
}

func (o *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observed{method: method, route: route, status: status})
}
