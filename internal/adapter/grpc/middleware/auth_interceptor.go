package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UserIDKeyType is a custom type for the context key to avoid collisions.
type UserIDKeyType string

// UserIDKey stores the authenticated user ID in the context.
const UserIDKey UserIDKeyType = "authenticatedUserID"

// Claims is the JWT payload issued by the auth provider.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// AuthInterceptor requires a Bearer token on every method not listed in
// publicMethods.
func AuthInterceptor(jwtSecret string, log *logger.Logger, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	log = log.Named("AuthInterceptor")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			log.Warn("Missing metadata", zap.String("method", info.FullMethod))
			return nil, status.Errorf(codes.Unauthenticated, "metadata is not provided")
		}
		authHeaders := md.Get("authorization")
		if len(authHeaders) == 0 {
			log.Warn("Authorization header not found", zap.String("method", info.FullMethod))
			return nil, status.Errorf(codes.Unauthenticated, "authorization token is not provided")
		}
		parts := strings.Fields(authHeaders[0])
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			log.Warn("Invalid authorization header format", zap.String("method", info.FullMethod))
			return nil, status.Errorf(codes.Unauthenticated, "authorization token format is invalid, expected 'Bearer <token>'")
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, status.Errorf(codes.Unauthenticated, "unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			log.Warn("Token validation failed", zap.String("method", info.FullMethod), zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil, status.Errorf(codes.Unauthenticated, "token has expired")
			}
			return nil, status.Errorf(codes.Unauthenticated, "token is invalid")
		}
		if !token.Valid {
			return nil, status.Errorf(codes.Unauthenticated, "token is not valid")
		}
		if claims.UserID == "" {
			claims.UserID = claims.Subject
		}
		if claims.UserID == "" {
			log.Error("UserID not found in token claims", zap.String("method", info.FullMethod))
			return nil, status.Errorf(codes.Unauthenticated, "UserID not found in token claims")
		}

		log.Debug("User authenticated", zap.String("method", info.FullMethod), zap.String("user_id", claims.UserID))
		return handler(context.WithValue(ctx, UserIDKey, claims.UserID), req)
	}
}
