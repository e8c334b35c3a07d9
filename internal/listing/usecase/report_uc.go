package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

const MaxReportDetails = 1000

type ReportUsecase struct {
	reports   domain.ReportRepository
	listings  domain.ListingRepository
	checker   moderation.Checker
	publisher domain.EventPublisher
	onReport  func(reason string)
	logger    *logger.Logger
}

func NewReportUsecase(reports domain.ReportRepository, listings domain.ListingRepository, checker moderation.Checker, publisher domain.EventPublisher, log *logger.Logger) *ReportUsecase {
	return &ReportUsecase{
		reports:   reports,
		listings:  listings,
		checker:   checker,
		publisher: publisher,
		onReport:  func(string) {},
		logger:    log.Named("ReportUsecase"),
	}
}

// OnReport registers fn to be called with the reason of every stored report.
func (uc *ReportUsecase) OnReport(fn func(reason string)) { uc.onReport = fn }

// ReportListing files a report. Offensive words in the details are masked
// before storage; a user may report a listing once.
func (uc *ReportUsecase) ReportListing(ctx context.Context, listingID, reporterID, reason, details string) (*domain.Report, error) {
	if !domain.IsReportReason(reason) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReportReason, reason)
	}
	details = strings.TrimSpace(details)
	if utf8.RuneCountInString(details) > MaxReportDetails {
		return nil, fmt.Errorf("%w: more than %d characters", domain.ErrInvalidReportDetail, MaxReportDetails)
	}
	if res := uc.checker.CheckText(details); !res.Valid {
		details = res.Cleaned
	}

	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID == reporterID {
		return nil, fmt.Errorf("%w: cannot report your own listing", domain.ErrForbidden)
	}

	report := &domain.Report{
		ListingID:  listingID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    details,
	}
	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	uc.onReport(reason)
	uc.logger.Info("Listing reported", zap.String("listing_id", listingID), zap.String("reason", reason))

	publishEvent(ctx, uc.publisher, uc.logger, domain.SubjectListingReported, map[string]interface{}{
		"report_id":   report.ID,
		"listing_id":  listingID,
		"reporter_id": reporterID,
		"reason":      reason,
	})
	return report, nil
}

// ListingReports returns the reports on a listing to its owner with the
// reporters left anonymous.
func (uc *ReportUsecase) ListingReports(ctx context.Context, listingID, userID string) ([]*domain.Report, error) {
	listing, err := uc.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserID != userID {
		return nil, domain.ErrForbidden
	}
	reports, err := uc.reports.FindByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		r.ReporterID = ""
	}
	return reports, nil
}
