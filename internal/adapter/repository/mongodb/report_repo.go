package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const reportCollectionName = "reports"

type ReportRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReportRepository(db *mongo.Database, log *logger.Logger) (*ReportRepository, error) {
	collection := db.Collection(reportCollectionName)

	indexes := []mongo.IndexModel{
		// One report per user per listing.
		{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "reporter_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for reports collection", zap.Error(err))
	}

	return &ReportRepository{
		collection: collection,
		logger:     log.Named("ReportRepository"),
	}, nil
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	doc := reportDocument{
		ID:         primitive.NewObjectID(),
		ListingID:  report.ListingID,
		ReporterID: report.ReporterID,
		Reason:     report.Reason,
		Details:    report.Details,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyReported
		}
		r.logger.Error("Failed to insert report", zap.Error(err), zap.String("listing_id", report.ListingID))
		return fmt.Errorf("db insert failed: %w", err)
	}
	report.ID = doc.ID.Hex()
	report.CreatedAt = doc.CreatedAt
	return nil
}

func (r *ReportRepository) CountByListing(ctx context.Context, listingID string) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return 0, fmt.Errorf("db count failed: %w", err)
	}
	return n, nil
}

// FindByListing is used by moderators reviewing a listing's reports.
func (r *ReportRepository) FindByListing(ctx context.Context, listingID string) ([]*domain.Report, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"listing_id": listingID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	out := make([]*domain.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
