package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "province", Value: 1}, {Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: 1}}},
		{
			Keys:    bson.D{{Key: "submission_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidListingData, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) && doc.SubmissionID != "" {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSubmission, doc.SubmissionID)
		}
		r.logger.Error("Failed to insert listing", zap.Error(err), zap.String("user_id", listing.UserID))
		return fmt.Errorf("db insert failed: %w", err)
	}

	listing.ID = doc.ID.Hex()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.logger.Debug("Listing inserted", zap.String("listing_id", listing.ID))
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil || doc.ID.IsZero() {
		return domain.ErrListingNotFound
	}
	doc.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"category":    doc.Category,
		"condition":   doc.Condition,
		"province":    doc.Province,
		"city":        doc.City,
		"postal_code": doc.PostalCode,
		"location":    doc.Location,
		"photos":      doc.Photos,
		"status":      doc.Status,
		"featured":    doc.Featured,
		"flag_reason": doc.FlagReason,
		"updated_at":  doc.UpdatedAt,
	}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update listing", zap.Error(err), zap.String("listing_id", listing.ID))
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	listing.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to find listing", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) FindBySubmissionID(ctx context.Context, submissionID string) (*domain.Listing, error) {
	if submissionID == "" {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"submission_id": submissionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// buildQuery translates a normalized filter into a Mongo query. Text search
// is a case-insensitive substring match on title and description.
func buildQuery(f domain.Filter) bson.M {
	query := bson.M{}
	if f.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	for key, value := range map[string]string{
		"category":  f.Category,
		"province":  f.Province,
		"city":      f.City,
		"condition": f.Condition,
		"user_id":   f.UserID,
		"status":    string(f.Status),
	} {
		if value != "" {
			query[key] = value
		}
	}
	if f.Status == "" && f.ExcludeStatus != "" {
		query["status"] = bson.M{"$ne": string(f.ExcludeStatus)}
	}
	price := bson.M{}
	if f.MinPrice > 0 {
		price["$gte"] = f.MinPrice
	}
	if f.MaxPrice > 0 {
		price["$lte"] = f.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if f.Featured {
		query["featured"] = true
	}
	return query
}

func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, int64, error) {
	r.logger.Debug("Finding listings", zap.Any("filter", filter))
	query := buildQuery(filter)

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
		if filter.Page > 0 {
			findOptions.SetSkip(int64(filter.Page-1) * int64(filter.Limit))
		}
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, 0, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("db cursor all failed: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("db count failed: %w", err)
	}
	return toDomainListings(docs), total, nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("db update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindUpdatedSince(ctx context.Context, since time.Time, status domain.ListingStatus) ([]*domain.Listing, error) {
	query := bson.M{"updated_at": bson.M{"$gte": since}}
	if status != "" {
		query["status"] = status
	}
	cursor, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "status", Value: domain.StatusActive}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "average_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "categories", Value: bson.D{{Key: "$addToSet", Value: "$category"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate listing stats", zap.Error(err))
		return nil, fmt.Errorf("db aggregate failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total        int64    `bson:"total"`
		AveragePrice float64  `bson:"average_price"`
		Categories   []string `bson:"categories"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("db cursor all for aggregate failed: %w", err)
	}
	if len(results) == 0 {
		return &domain.Stats{Categories: []string{}}, nil
	}
	sort.Strings(results[0].Categories)
	return &domain.Stats{
		TotalListings: results[0].Total,
		Categories:    results[0].Categories,
		AveragePrice:  results[0].AveragePrice,
	}, nil
}
