package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/listing/submission"
	"github.com/compraventa/marketplace-service/internal/location"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// SubmissionUsecase drives submission flows on behalf of HTTP clients and
// persists accepted drafts as listings.
type SubmissionUsecase struct {
	flows     submission.Store
	validator submission.Validator
	listings  domain.ListingRepository
	storage   domain.Storage
	users     domain.UserRepository
	notifier  domain.Notifier
	publisher domain.EventPublisher
	locations location.Directory
	onCreated func()
	locks     flowLocks
	logger    *logger.Logger
}

type SubmissionDeps struct {
	Flows     submission.Store
	Validator submission.Validator
	Listings  domain.ListingRepository
	Storage   domain.Storage
	Users     domain.UserRepository
	Notifier  domain.Notifier
	Publisher domain.EventPublisher
	Locations location.Directory
	// OnCreated runs after every listing persisted. Optional.
	OnCreated func()
}

func NewSubmissionUsecase(deps SubmissionDeps, log *logger.Logger) *SubmissionUsecase {
	onCreated := deps.OnCreated
	if onCreated == nil {
		onCreated = func() {}
	}
	return &SubmissionUsecase{
		flows:     deps.Flows,
		validator: deps.Validator,
		listings:  deps.Listings,
		storage:   deps.Storage,
		users:     deps.Users,
		notifier:  deps.Notifier,
		publisher: deps.Publisher,
		locations: deps.Locations,
		onCreated: onCreated,
		locks:     flowLocks{held: make(map[string]*flowLock)},
		logger:    log.Named("SubmissionUsecase"),
	}
}

// Validate runs the full check without any flow.
func (uc *SubmissionUsecase) Validate(ctx context.Context, d domain.Draft) domain.Verdict {
	return uc.validator.ValidateListing(ctx, d)
}

func (uc *SubmissionUsecase) Start(ctx context.Context, ownerID string, d domain.Draft) (*submission.Flow, error) {
	f := submission.New(ownerID, d)
	if err := uc.flows.Save(ctx, f); err != nil {
		return nil, err
	}
	uc.logger.Debug("Submission started", zap.String("submission_id", f.ID), zap.String("owner_id", ownerID))
	return f, nil
}

func (uc *SubmissionUsecase) Get(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	f, err := uc.flows.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return f, nil
}

func (uc *SubmissionUsecase) Edit(ctx context.Context, ownerID, id string, d domain.Draft) (*submission.Flow, error) {
	return uc.mutate(ctx, ownerID, id, func(f *submission.Flow) error { return f.Edit(d) })
}

func (uc *SubmissionUsecase) CheckField(ctx context.Context, ownerID, id, field, value string) ([]string, error) {
	if !domain.IsField(field) {
		return nil, fmt.Errorf("%w: unknown field %q", domain.ErrInvalidListingData, field)
	}
	f, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return f.CheckField(uc.validator, field, value), nil
}

func (uc *SubmissionUsecase) Submit(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return uc.mutate(ctx, ownerID, id, func(f *submission.Flow) error { return f.Submit(ctx, uc.validator, uc) })
}

func (uc *SubmissionUsecase) Confirm(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return uc.mutate(ctx, ownerID, id, func(f *submission.Flow) error { return f.Confirm(ctx, uc) })
}

func (uc *SubmissionUsecase) Revise(ctx context.Context, ownerID, id string) (*submission.Flow, error) {
	return uc.mutate(ctx, ownerID, id, func(f *submission.Flow) error { return f.Revise() })
}

// mutate loads, changes and saves a flow while holding its lock, so two
// requests on one flow cannot both reach the persister. The flow is saved
// even when op fails, since a failed persist moves it back to an editable
// state.
func (uc *SubmissionUsecase) mutate(ctx context.Context, ownerID, id string, op func(*submission.Flow) error) (*submission.Flow, error) {
	unlock := uc.locks.lock(id)
	defer unlock()

	f, err := uc.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	opErr := op(f)
	if errors.Is(opErr, submission.ErrInvalidTransition) {
		return f, opErr
	}
	if f.State == submission.StateAccepted {
		// Images now live in object storage.
		f.Draft.Images = nil
	}
	if err := uc.flows.Save(ctx, f); err != nil {
		uc.logger.Error("Failed to save submission", zap.String("submission_id", id), zap.Error(err))
		if opErr == nil {
			opErr = err
		}
	}
	return f, opErr
}

// Persist implements submission.Persister: it uploads the images, stores
// the listing and announces it. A submission that already produced a
// listing returns that listing's ID without storing anything.
func (uc *SubmissionUsecase) Persist(ctx context.Context, submissionID, ownerID string, d domain.Draft) (string, error) {
	ctx, span := tracer.Start(ctx, "SubmissionUsecase.Persist")
	defer span.End()

	existing, err := uc.listings.FindBySubmissionID(ctx, submissionID)
	switch {
	case err == nil:
		uc.logger.Info("Submission already persisted",
			zap.String("submission_id", submissionID), zap.String("listing_id", existing.ID))
		return existing.ID, nil
	case !errors.Is(err, domain.ErrListingNotFound):
		return "", err
	}

	price, err := domain.ParsePrice(d.Price)
	if err != nil {
		return "", err
	}

	urls, keys, err := uploadImages(ctx, uc.storage, ownerID, d.Images)
	if err != nil {
		uc.logger.Error("Failed to upload listing images", zap.String("owner_id", ownerID), zap.Error(err))
		return "", err
	}

	province := strings.TrimSpace(d.Province)
	city := strings.TrimSpace(d.City)
	postalCode := strings.TrimSpace(d.PostalCode)
	if postalCode == "" && uc.locations != nil {
		postalCode = location.PostalCodeFor(uc.locations, province, city)
	}

	listing := &domain.Listing{
		UserID:       ownerID,
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Price:        price,
		Category:     d.Category,
		Condition:    d.Condition,
		Province:     province,
		City:         city,
		PostalCode:   postalCode,
		Location:     domain.LocationLabel(city, province, postalCode),
		Photos:       urls,
		Status:       domain.StatusActive,
		SubmissionID: submissionID,
	}
	if err := uc.listings.Create(ctx, listing); err != nil {
		discardObjects(context.WithoutCancel(ctx), uc.storage, uc.logger, keys)
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			existing, findErr := uc.listings.FindBySubmissionID(ctx, submissionID)
			if findErr != nil {
				return "", findErr
			}
			return existing.ID, nil
		}
		uc.logger.Error("Failed to create listing", zap.String("owner_id", ownerID), zap.Error(err))
		return "", err
	}
	uc.onCreated()
	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", ownerID))

	publishEvent(ctx, uc.publisher, uc.logger, domain.SubjectListingCreated, map[string]interface{}{
		"listing_id": listing.ID,
		"user_id":    ownerID,
		"title":      listing.Title,
		"price":      listing.Price,
		"category":   listing.Category,
		"created_at": listing.CreatedAt.Format(time.RFC3339Nano),
	})
	uc.notifyOwner(ctx, listing)
	return listing.ID, nil
}

func (uc *SubmissionUsecase) notifyOwner(ctx context.Context, listing *domain.Listing) {
	if uc.notifier == nil || uc.users == nil {
		return
	}
	email, err := uc.users.GetEmailByID(ctx, listing.UserID)
	if err != nil || email == "" {
		uc.logger.Warn("No email for listing owner", zap.String("user_id", listing.UserID), zap.Error(err))
		return
	}
	if err := uc.notifier.SendListingPublished(email, listing); err != nil {
		uc.logger.Warn("Failed to send listing published email", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

type flowLock struct {
	mu   sync.Mutex
	refs int
}

// flowLocks serializes operations per flow ID within this process.
type flowLocks struct {
	mu   sync.Mutex
	held map[string]*flowLock
}

func (l *flowLocks) lock(id string) func() {
	l.mu.Lock()
	fl, ok := l.held[id]
	if !ok {
		fl = &flowLock{}
		l.held[id] = fl
	}
	fl.refs++
	l.mu.Unlock()

	fl.mu.Lock()
	return func() {
		fl.mu.Unlock()
		l.mu.Lock()
		fl.refs--
		if fl.refs == 0 {
			delete(l.held, id)
		}
		l.mu.Unlock()
	}
}
