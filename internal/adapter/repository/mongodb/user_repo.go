package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// UserRepository reads the users collection owned by the auth provider.
type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		logger:     log.Named("UserRepository"),
	}
}

func (r *UserRepository) GetEmailByID(ctx context.Context, userID string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}

	var userDoc struct {
		Email string `bson:"email"`
	}
	opts := options.FindOne().SetProjection(bson.M{"email": 1})
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&userDoc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", domain.ErrUserNotFound
		}
		r.logger.Error("Failed to find user", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("db findone failed: %w", err)
	}
	return userDoc.Email, nil
}
