package regulatory

import (
	"context"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"go.uber.org/zap"
)

// UpdateCache is the time-windowed cache of the most recent full result set.
// Storage failures never leave this type: loads degrade to absent, saves are logged.
type UpdateCache struct {
	store  SnapshotStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewUpdateCache creates a cache over store whose snapshots stay valid for ttl.
func NewUpdateCache(store SnapshotStore, ttl time.Duration, logger *zap.Logger) *UpdateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateCache{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// Load returns the stored snapshot. Missing or unreadable storage reports absent.
func (c *UpdateCache) Load(ctx context.Context) (*model.CacheSnapshot, bool) {
	snapshot, err := c.store.LoadSnapshot(ctx)
	if err != nil {
		c.logger.Debug("cache load error", zap.Error(&PersistenceError{Op: "load cache", Err: err}))
		return nil, false
	}
	if snapshot == nil {
		return nil, false
	}
	return snapshot, true
}

// IsValid reports whether less than the TTL has elapsed since the snapshot was taken.
func (c *UpdateCache) IsValid(snapshot *model.CacheSnapshot) bool {
	if snapshot == nil || snapshot.Timestamp.IsZero() {
		return false
	}
	return c.now().Sub(snapshot.Timestamp) < c.ttl
}

// Save replaces the snapshot with updates stamped at the current time.
// Failures are logged and swallowed.
func (c *UpdateCache) Save(ctx context.Context, updates []model.RegulatoryUpdate) {
	snapshot := model.CacheSnapshot{
		Timestamp: c.now(),
		Updates:   append([]model.RegulatoryUpdate{}, updates...),
	}
	if err := c.store.SaveSnapshot(ctx, snapshot); err != nil {
		c.logger.Warn("cache save error", zap.Error(&PersistenceError{Op: "save cache", Err: err}))
	}
}

// TTL returns the configured validity window.
func (c *UpdateCache) TTL() time.Duration { return c.ttl }
