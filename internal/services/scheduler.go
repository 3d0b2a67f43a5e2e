// Package services provides the background services of the regulatory watch.
package services

import (
	"context"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"go.uber.org/zap"
)

// Checker runs a regulatory check.
type Checker interface {
	Check(ctx context.Context, refresh bool) ([]model.RegulatoryUpdate, error)
}

// Scheduler refreshes the regulatory updates on a fixed interval.
type Scheduler struct {
	checker  Checker
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler returns a scheduler running a forced check every interval.
// A run is bounded by the checker's per-source fetch and mail timeouts only;
// the cycle itself is detached from the caller's context.
func NewScheduler(checker Checker, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{checker: checker, interval: interval, logger: logger}
}

// Run performs one check immediately and then one per tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	s.runOnce(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	updates, err := s.checker.Check(ctx, true)
	if err != nil {
		s.logger.Warn("Background Task: scheduled regulatory check failed", zap.Error(err))
		return
	}
	if len(updates) > 0 {
		s.logger.Info("Background Task: regulatory updates detected",
			zap.Int("updates", len(updates)),
			zap.Int("critical", model.CountAtLevel(updates, model.ImpactCritical)))
	}
}
