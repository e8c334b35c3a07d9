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

const favoriteCollectionName = "favorites"

// FavoriteRepository is the single source of truth for a user's favorites.
type FavoriteRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewFavoriteRepository(db *mongo.Database, log *logger.Logger) (*FavoriteRepository, error) {
	collection := db.Collection(favoriteCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "listing_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for favorites collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for favorites collection")
	}

	return &FavoriteRepository{
		collection: collection,
		logger:     log.Named("FavoriteRepository"),
	}, nil
}

func (r *FavoriteRepository) Add(ctx context.Context, favorite *domain.Favorite) error {
	doc := favoriteDocument{
		ID:        primitive.NewObjectID(),
		UserID:    favorite.UserID,
		ListingID: favorite.ListingID,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateFavorite
		}
		r.logger.Error("Failed to insert favorite", zap.Error(err),
			zap.String("user_id", favorite.UserID), zap.String("listing_id", favorite.ListingID))
		return fmt.Errorf("db insert failed: %w", err)
	}

	favorite.ID = doc.ID.Hex()
	favorite.CreatedAt = doc.CreatedAt
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, listingID string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "listing_id": listingID})
	if err != nil {
		r.logger.Error("Failed to delete favorite", zap.Error(err),
			zap.String("user_id", userID), zap.String("listing_id", listingID))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrFavoriteNotFound
	}
	return nil
}

func (r *FavoriteRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*favoriteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	out := make([]*domain.Favorite, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, listingID string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"user_id": userID, "listing_id": listingID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("db count failed: %w", err)
	}
	return n > 0, nil
}
