package mongodb

import (
	"fmt"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	UserID      string               `bson:"user_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Price       float64              `bson:"price"`
	Category    string               `bson:"category"`
	Condition   string               `bson:"condition"`
	Province    string               `bson:"province"`
	City        string               `bson:"city"`
	PostalCode  string               `bson:"postal_code,omitempty"`
	Location    string               `bson:"location"`
	Photos      []string             `bson:"photos,omitempty"`
	Status      domain.ListingStatus `bson:"status"`
	Featured    bool                 `bson:"featured"`
	Views       int64                `bson:"views"`
	FlagReason  string               `bson:"flag_reason,omitempty"`
	// Unique when set. Absent on listings created outside a submission.
	SubmissionID string    `bson:"submission_id,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type favoriteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	ListingID string             `bson:"listing_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type reportDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ListingID  string             `bson:"listing_id"`
	ReporterID string             `bson:"reporter_id"`
	Reason     string             `bson:"reason"`
	Details    string             `bson:"details,omitempty"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// objectID parses a domain ID. An empty ID yields NilObjectID so the
// caller can generate one.
func objectID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NilObjectID, nil
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, err)
	}
	return oid, nil
}

func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	oid, err := objectID(l.ID)
	if err != nil {
		return nil, err
	}
	return &listingDocument{
		ID:           oid,
		UserID:       l.UserID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		Category:     l.Category,
		Condition:    l.Condition,
		Province:     l.Province,
		City:         l.City,
		PostalCode:   l.PostalCode,
		Location:     l.Location,
		Photos:       l.Photos,
		Status:       l.Status,
		Featured:     l.Featured,
		Views:        l.Views,
		FlagReason:   l.FlagReason,
		SubmissionID: l.SubmissionID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}, nil
}

func (d *listingDocument) toDomain() *domain.Listing {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	return &domain.Listing{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Title:        d.Title,
		Description:  d.Description,
		Price:        d.Price,
		Category:     d.Category,
		Condition:    d.Condition,
		Province:     d.Province,
		City:         d.City,
		PostalCode:   d.PostalCode,
		Location:     d.Location,
		Photos:       photos,
		Status:       d.Status,
		Featured:     d.Featured,
		Views:        d.Views,
		FlagReason:   d.FlagReason,
		SubmissionID: d.SubmissionID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out
}

func (d *favoriteDocument) toDomain() *domain.Favorite {
	return &domain.Favorite{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		ListingID: d.ListingID,
		CreatedAt: d.CreatedAt,
	}
}

func (d *reportDocument) toDomain() *domain.Report {
	return &domain.Report{
		ID:         d.ID.Hex(),
		ListingID:  d.ListingID,
		ReporterID: d.ReporterID,
		Reason:     d.Reason,
		Details:    d.Details,
		CreatedAt:  d.CreatedAt,
	}
}
