package grpc

import (
	"context"

	"github.com/compraventa/marketplace-service/internal/adapter/grpc/middleware"
	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var tracer = otel.Tracer("marketplace-service/grpc-handler")

// DraftValidator is satisfied by the validation orchestrator.
type DraftValidator interface {
	ValidateListing(ctx context.Context, d domain.Draft) domain.Verdict
}

type Handler struct {
	checker   moderation.Checker
	validator DraftValidator
	logger    *logger.Logger
}

func NewHandler(checker moderation.Checker, validator DraftValidator, log *logger.Logger) *Handler {
	return &Handler{checker: checker, validator: validator, logger: log.Named("GRPCHandler")}
}

func (h *Handler) CheckText(ctx context.Context, req *CheckTextRequest) (*CheckTextResponse, error) {
	_, span := tracer.Start(ctx, "Handler.CheckText", oteltrace.WithAttributes(
		attribute.Int("text_length", len(req.Text)),
	))
	defer span.End()

	res := h.checker.CheckText(req.Text)
	span.SetAttributes(attribute.Bool("valid", res.Valid))
	return &CheckTextResponse{Result: res}, nil
}

func (h *Handler) ValidateDraft(ctx context.Context, req *ValidateDraftRequest) (*ValidateDraftResponse, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		h.logger.Error("ValidateDraft: UserID not found in context")
		return nil, status.Error(codes.Unauthenticated, "user not authenticated")
	}
	ctx, span := tracer.Start(ctx, "Handler.ValidateDraft", oteltrace.WithAttributes(
		attribute.String("user_id", userID),
		attribute.Int("images", len(req.Draft.Images)),
	))
	defer span.End()

	verdict := h.validator.ValidateListing(ctx, req.Draft)
	span.SetAttributes(attribute.Bool("valid", verdict.Valid), attribute.Int("errors", len(verdict.Errors)))
	h.logger.Debug("ValidateDraft: verdict computed",
		zap.String("user_id", userID), zap.Bool("valid", verdict.Valid), zap.Int("warnings", len(verdict.Warnings)))
	return &ValidateDraftResponse{Verdict: verdict}, nil
}
