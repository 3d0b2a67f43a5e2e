package updates

import (
	"context"
	"time"

	"github.com/qeme/sentinel-lite/model"
)

// Checker runs or serves a regulatory check.
type Checker interface {
	Check(ctx context.Context, refresh bool) ([]model.RegulatoryUpdate, error)
}

// SourceLister exposes the monitored sources.
type SourceLister interface {
	Sources() []model.Source
}

// ResolveUpdates returns the updates of a check, optionally filtered to
// minLevel and above and truncated to limit items (negative means all).
func ResolveUpdates(ctx context.Context, checker Checker, refresh bool, limit int, minLevel model.ImpactLevel) ([]model.RegulatoryUpdate, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	updates, err := checker.Check(ctx, refresh)
	if err != nil {
		return nil, err
	}

	if minLevel != "" {
		filtered := updates[:0]
		for _, u := range updates {
			if u.ImpactLevel.AtLeast(minLevel) {
				filtered = append(filtered, u)
			}
		}
		updates = filtered
	}

	if limit >= 0 && limit < len(updates) {
		updates = updates[:limit]
	}
	return updates, nil
}

// ResolveStatus returns the dashboard status view of a check.
func ResolveStatus(ctx context.Context, checker Checker, refresh bool) (model.RegulatoryStatus, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	updates, err := checker.Check(ctx, refresh)
	if err != nil {
		return model.RegulatoryStatus{}, err
	}
	return model.NewRegulatoryStatus(updates, time.Now(), model.DefaultStatusLimit), nil
}
