package jobs

import (
	"context"
	"fmt"

	"github.com/compraventa/marketplace-service/internal/platform/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler fires the sweep on a cron spec such as "@every 15m".
type Scheduler struct {
	cron    *cron.Cron
	sweeper *Sweeper
	spec    string
	logger  *logger.Logger
}

func NewScheduler(sweeper *Sweeper, spec string, log *logger.Logger) *Scheduler {
	l := log.Named("Scheduler")
	cl := cronLogger{l.Sugar()}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
		sweeper: sweeper,
		spec:    spec,
		logger:  l,
	}
}

// Start registers the sweep and starts the cron loop. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.sweeper.RunOnce(ctx); err != nil {
			s.logger.Error("Moderation sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("Cron started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron stopped")
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
