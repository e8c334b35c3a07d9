package domain

import (
	"context"
	"time"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	// FindBySubmissionID returns ErrListingNotFound when the submission
	// was never persisted.
	FindBySubmissionID(ctx context.Context, submissionID string) (*Listing, error)
	FindByFilter(ctx context.Context, filter Filter) ([]*Listing, int64, error)
	IncrementViews(ctx context.Context, id string) error
	FindUpdatedSince(ctx context.Context, since time.Time, status ListingStatus) ([]*Listing, error)
	Stats(ctx context.Context) (*Stats, error)
}

type FavoriteRepository interface {
	Add(ctx context.Context, favorite *Favorite) error
	Remove(ctx context.Context, userID, listingID string) error
	FindByUserID(ctx context.Context, userID string) ([]*Favorite, error)
	Exists(ctx context.Context, userID, listingID string) (bool, error)
}

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	CountByListing(ctx context.Context, listingID string) (int64, error)
	FindByListing(ctx context.Context, listingID string) ([]*Report, error)
}

type UserRepository interface {
	GetEmailByID(ctx context.Context, userID string) (string, error)
}

// Storage keeps uploaded listing images and returns their public URL.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFromURL maps a URL returned by Upload back to its key.
	KeyFromURL(url string) (string, bool)
}

type ListingCache interface {
	Get(ctx context.Context, id string) (*Listing, error)
	Set(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits domain events on a subject.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// Notifier tells a seller their listing went live.
type Notifier interface {
	SendListingPublished(to string, listing *Listing) error
}
