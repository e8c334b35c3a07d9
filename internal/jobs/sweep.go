// Package jobs runs periodic background work: re-moderating recently
// changed listings against the current word list.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/compraventa/marketplace-service/internal/listing/domain"
	"github.com/compraventa/marketplace-service/internal/moderation"
	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// DefaultLookback bounds the first sweep after startup.
const DefaultLookback = 24 * time.Hour

// Flagger takes a listing out of the catalogue.
type Flagger interface {
	Flag(ctx context.Context, listing *domain.Listing, reason string) error
}

// Sweeper re-runs the profanity matcher over active listings updated since
// its previous run.
type Sweeper struct {
	listings domain.ListingRepository
	checker  moderation.Checker
	flagger  Flagger
	onFlag   func()
	now      func() time.Time
	logger   *logger.Logger

	mu      sync.Mutex
	lastRun time.Time
}

func NewSweeper(listings domain.ListingRepository, checker moderation.Checker, flagger Flagger, onFlag func(), log *logger.Logger) *Sweeper {
	if onFlag == nil {
		onFlag = func() {}
	}
	return &Sweeper{
		listings: listings,
		checker:  checker,
		flagger:  flagger,
		onFlag:   onFlag,
		now:      time.Now,
		logger:   log.Named("ModerationSweep"),
	}
}

// RunOnce performs one sweep and returns how many listings were flagged.
// The watermark only advances when every listing was processed.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	since := s.lastRun
	if since.IsZero() {
		since = started.Add(-DefaultLookback)
	}

	listings, err := s.listings.FindUpdatedSince(ctx, since, domain.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("load listings updated since %s: %w", since.Format(time.RFC3339), err)
	}

	flagged := 0
	var firstErr error
	for _, l := range listings {
		reason := s.offense(l)
		if reason == "" {
			continue
		}
		if err := s.flagger.Flag(ctx, l, reason); err != nil {
			s.logger.Error("Failed to flag listing", zap.String("listing_id", l.ID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.onFlag()
		flagged++
	}

	if firstErr == nil {
		s.lastRun = started
	}
	s.logger.Info("Moderation sweep finished",
		zap.Int("checked", len(listings)), zap.Int("flagged", flagged), zap.Time("since", since))
	return flagged, firstErr
}

func (s *Sweeper) offense(l *domain.Listing) string {
	if res := s.checker.CheckText(l.Title); !res.Valid {
		return "Título: " + res.Message
	}
	if res := s.checker.CheckText(l.Description); !res.Valid {
		return "Descripción: " + res.Message
	}
	return ""
}
