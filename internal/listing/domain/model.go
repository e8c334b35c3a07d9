package domain

import (
	"fmt"
	"time"
)

type ListingStatus string

const (
	StatusActive   ListingStatus = "active"
	StatusSold     ListingStatus = "sold"
	StatusReserved ListingStatus = "reserved"
	StatusInactive ListingStatus = "inactive"
	StatusFlagged  ListingStatus = "flagged"
)

// Valid reports whether s is one of the known statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSold, StatusReserved, StatusInactive, StatusFlagged:
		return true
	}
	return false
}

// Listing is a persisted product-for-sale record.
type Listing struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	Category    string        `json:"category"`
	Condition   string        `json:"condition"`
	Province    string        `json:"province"`
	City        string        `json:"city"`
	PostalCode  string        `json:"postal_code"`
	Location    string        `json:"location"`
	Photos      []string      `json:"photos"`
	Status      ListingStatus `json:"status"`
	Featured    bool          `json:"featured"`
	Views       int64         `json:"views"`
	FlagReason  string        `json:"flag_reason,omitempty"`
	// SubmissionID links the listing to the flow that created it.
	SubmissionID string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public reports whether the listing may be shown to anyone but its owner.
// Deleted and flagged listings are hidden.
func (l *Listing) Public() bool {
	return l.Status != StatusInactive && l.Status != StatusFlagged
}

// FormattedPrice renders Price for display, e.g. "$ 950.000".
func (l *Listing) FormattedPrice() string {
	return FormatPrice(l.Price)
}

// LocationLabel builds "City, Province (CP: 1234)". The postal code part is
// omitted when unknown.
func LocationLabel(city, province, postalCode string) string {
	if postalCode == "" {
		return fmt.Sprintf("%s, %s", city, province)
	}
	return fmt.Sprintf("%s, %s (CP: %s)", city, province, postalCode)
}

type Favorite struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ListingID string    `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listing_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// Filter narrows listing searches. Zero values mean "any".
type Filter struct {
	Query     string
	Category  string
	Province  string
	City      string
	Condition string
	MinPrice  float64
	MaxPrice  float64
	UserID    string
	Status    ListingStatus
	// ExcludeStatus drops one status when Status is empty.
	ExcludeStatus ListingStatus
	Featured      bool
	Page          int32
	Limit         int32
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Normalize fills paging defaults and rejects inverted price ranges.
func (f *Filter) Normalize() error {
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return fmt.Errorf("%w: negative price bound", ErrInvalidFilter)
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return fmt.Errorf("%w: min_price greater than max_price", ErrInvalidFilter)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return nil
}

// Stats summarizes the active catalogue.
type Stats struct {
	TotalListings int64    `json:"total_listings"`
	Categories    []string `json:"categories"`
	AveragePrice  float64  `json:"average_price"`
}
