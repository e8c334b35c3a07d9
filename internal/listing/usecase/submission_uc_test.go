package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedValidator struct {
	verdict domain.Verdict
}

func (v fixedValidator) ValidateListing(context.Context, domain.Draft) domain.Verdict {
	return v.verdict
}

func (v fixedValidator) CheckField(d domain.Draft, field string) []string {
	if d.FieldValue(field) == "" {
		return []string{"obligatorio"}
	}
	return nil
}

type submissionFixture struct {
	uc       *SubmissionUsecase
	store    *submission.MemoryStore
	listings *mockListingRepo
	storage  *mockStorage
	users    *mockUserRepo
	notifier *mockNotifier
	pub      *mockPublisher
	created  int
}

func newSubmissionFixture(verdict domain.Verdict) *submissionFixture {
	fx := &submissionFixture{
		store:    submission.NewMemoryStore(),
		listings: &mockListingRepo{},
		storage:  &mockStorage{},
		users:    &mockUserRepo{},
		notifier: &mockNotifier{},
		pub:      &mockPublisher{},
	}
	fx.useFlows(fx.store, verdict)
	return fx
}

func (fx *submissionFixture) useFlows(flows submission.Store, verdict domain.Verdict) {
	fx.uc = NewSubmissionUsecase(SubmissionDeps{
		Flows:     flows,
		Validator: fixedValidator{verdict: verdict},
		Listings:  fx.listings,
		Storage:   fx.storage,
		Users:     fx.users,
		Notifier:  fx.notifier,
		Publisher: fx.pub,
		Locations: location.Default(),
		OnCreated: func() { fx.created++ },
	}, logger.NewNop())
}

// flakyStore fails the next Save after failNext is set.
type flakyStore struct {
	*submission.MemoryStore
	failNext bool
}

func (s *flakyStore) Save(ctx context.Context, f *submission.Flow) error {
	if s.failNext {
		s.failNext = false
		return errors.New("redis timeout")
	}
	return s.MemoryStore.Save(ctx, f)
}

func sampleDraft() domain.Draft {
	return domain.Draft{
		Title:       " Bicicleta rodado 29 ",
		Description: "Bicicleta de montaña con frenos a disco, cambios Shimano y cubiertas nuevas.",
		Price:       "$ 350.000",
		Category:    "Deportes",
		Condition:   "Muy bueno",
		Province:    "Buenos Aires",
		City:        "La Plata",
		Images: []domain.Image{
			{Name: "1.jpg", ContentType: "image/jpeg", Data: []byte("1")},
			{Name: "2.jpg", ContentType: "image/jpeg", Data: []byte("2")},
		},
	}
}

func (fx *submissionFixture) expectPersist() {
	fx.listings.On("FindBySubmissionID", mock.Anything, mock.Anything).Return(nil, domain.ErrListingNotFound).Once()
	fx.storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", []byte("1")).Return("http://minio/1.jpg", nil).Once()
	fx.storage.On("Upload", mock.Anything, mock.Anything, "image/jpeg", []byte("2")).Return("http://minio/2.jpg", nil).Once()
	fx.listings.On("Create", mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
		return l.Title == "Bicicleta rodado 29" &&
			l.Price == 350000 &&
			l.PostalCode == "1900" &&
			l.Location == "La Plata, Buenos Aires (CP: 1900)" &&
			l.Status == domain.StatusActive &&
			l.SubmissionID != "" &&
			len(l.Photos) == 2 && l.Photos[0] == "http://minio/1.jpg"
	})).Return(nil).Once()
	fx.pub.On("Publish", mock.Anything, domain.SubjectListingCreated, mock.Anything).Return(nil).Once()
	fx.users.On("GetEmailByID", mock.Anything, "seller").Return("seller@example.com", nil).Once()
	fx.notifier.On("SendListingPublished", "seller@example.com", mock.Anything).Return(nil).Once()
}

func TestSubmitCleanDraftCreatesListing(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true, Errors: []domain.FieldError{}, Warnings: []string{}})
	fx.expectPersist()

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)

	f, err = fx.uc.Submit(ctx, "seller", f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateAccepted, f.State)
	assert.Equal(t, "generated-id", f.ListingID)
	assert.Nil(t, f.Draft.Images)
	assert.Equal(t, 1, fx.created)

	stored, err := fx.store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateAccepted, stored.State)

	_, err = fx.uc.Confirm(ctx, "seller", f.ID)
	assert.ErrorIs(t, err, submission.ErrInvalidTransition)

	fx.listings.AssertExpectations(t)
	fx.storage.AssertExpectations(t)
	fx.notifier.AssertExpectations(t)
}

func TestSubmitWithWarningsWaitsForConfirm(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true, Errors: []domain.FieldError{}, Warnings: []string{"corta"}})

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)
	f, err = fx.uc.Submit(ctx, "seller", f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateNeedsConfirmation, f.State)
	fx.listings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	fx.expectPersist()
	f, err = fx.uc.Confirm(ctx, "seller", f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateAccepted, f.State)
	fx.listings.AssertExpectations(t)
}

func TestPersistFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true, Errors: []domain.FieldError{}, Warnings: []string{"corta"}})

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)
	_, err = fx.uc.Submit(ctx, "seller", f.ID)
	require.NoError(t, err)

	fx.listings.On("FindBySubmissionID", mock.Anything, f.ID).Return(nil, domain.ErrListingNotFound).Once()
	fx.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("http://minio/x.jpg", nil).Twice()
	fx.listings.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()
	fx.storage.On("Delete", mock.Anything, mock.Anything).Return(nil).Twice()

	f, err = fx.uc.Confirm(ctx, "seller", f.ID)
	require.Error(t, err)
	assert.Equal(t, submission.StateNeedsConfirmation, f.State)

	stored, err := fx.store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateNeedsConfirmation, stored.State)
	assert.Len(t, stored.Draft.Images, 2)
	assert.Equal(t, 0, fx.created)
	fx.storage.AssertExpectations(t)
}

func TestConfirmAfterLostSaveReusesListing(t *testing.T) {
	ctx := context.Background()
	verdict := domain.Verdict{Valid: true, Errors: []domain.FieldError{}, Warnings: []string{"corta"}}
	fx := newSubmissionFixture(verdict)
	flows := &flakyStore{MemoryStore: fx.store}
	fx.useFlows(flows, verdict)

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)
	_, err = fx.uc.Submit(ctx, "seller", f.ID)
	require.NoError(t, err)

	fx.expectPersist()
	flows.failNext = true
	_, err = fx.uc.Confirm(ctx, "seller", f.ID)
	require.Error(t, err)

	stored, err := fx.store.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateNeedsConfirmation, stored.State)

	fx.listings.On("FindBySubmissionID", mock.Anything, f.ID).
		Return(&domain.Listing{ID: "generated-id", SubmissionID: f.ID}, nil).Once()
	f, err = fx.uc.Confirm(ctx, "seller", f.ID)
	require.NoError(t, err)
	assert.Equal(t, submission.StateAccepted, f.State)
	assert.Equal(t, "generated-id", f.ListingID)

	assert.Equal(t, 1, fx.created)
	fx.listings.AssertNumberOfCalls(t, "Create", 1)
	fx.listings.AssertExpectations(t)
	fx.storage.AssertExpectations(t)
}

func TestPersistResolvesConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true})

	fx.listings.On("FindBySubmissionID", mock.Anything, "sub-1").Return(nil, domain.ErrListingNotFound).Once()
	fx.storage.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("http://minio/x.jpg", nil).Twice()
	fx.listings.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateSubmission).Once()
	fx.storage.On("Delete", mock.Anything, mock.Anything).Return(nil).Twice()
	fx.listings.On("FindBySubmissionID", mock.Anything, "sub-1").
		Return(&domain.Listing{ID: "other-instance", SubmissionID: "sub-1"}, nil).Once()

	id, err := fx.uc.Persist(ctx, "sub-1", "seller", sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "other-instance", id)
	assert.Equal(t, 0, fx.created)
	fx.listings.AssertExpectations(t)
	fx.storage.AssertExpectations(t)
}

func TestSubmissionBelongsToOwner(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true})

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)

	_, err = fx.uc.Get(ctx, "someone-else", f.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = fx.uc.Submit(ctx, "someone-else", f.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = fx.uc.Get(ctx, "seller", "missing")
	assert.ErrorIs(t, err, domain.ErrSubmissionNotFound)
}

func TestCheckFieldRejectsUnknownField(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true})
	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)

	msgs, err := fx.uc.CheckField(ctx, "seller", f.ID, domain.FieldTitle, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"obligatorio"}, msgs)

	_, err = fx.uc.CheckField(ctx, "seller", f.ID, "color", "rojo")
	assert.ErrorIs(t, err, domain.ErrInvalidListingData)
}

func TestConcurrentSubmitPersistsOnce(t *testing.T) {
	ctx := context.Background()
	fx := newSubmissionFixture(domain.Verdict{Valid: true, Errors: []domain.FieldError{}, Warnings: []string{}})
	fx.expectPersist()

	f, err := fx.uc.Start(ctx, "seller", sampleDraft())
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := fx.uc.Submit(ctx, "seller", f.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				accepted++
			} else if errors.Is(err, submission.ErrInvalidTransition) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 4, rejected)
	assert.Equal(t, 1, fx.created)
	fx.listings.AssertExpectations(t)
}

func TestFlowLocksAreReleased(t *testing.T) {
	var l flowLocks
	l.held = make(map[string]*flowLock)
	unlock := l.lock("a")
	unlock()
	assert.Empty(t, l.held)
}
