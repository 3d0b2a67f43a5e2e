package regulatory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/qeme/sentinel-lite/internal/metrics"
	"github.com/qeme/sentinel-lite/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Checker runs the regulatory check cycle: cache lookup, fetch, change detection,
// classification, cache write and alerting.
type Checker struct {
	registry  *Registry
	fetcher   Fetcher
	detector  *ChangeDetector
	cache     *UpdateCache
	notifier  Notifier
	publisher Publisher
	workers   int
	logger    *zap.Logger
	now       func() time.Time
	cycles    singleflight.Group
}

// Option customises a Checker.
type Option func(*Checker)

// WithNotifier sets the alert channel for critical updates.
func WithNotifier(n Notifier) Option {
	return func(c *Checker) { c.notifier = n }
}

// WithPublisher sets the downstream publisher for fresh results.
func WithPublisher(p Publisher) Option {
	return func(c *Checker) { c.publisher = p }
}

// WithWorkers bounds the number of sources fetched concurrently.
func WithWorkers(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces the time source of the checker and its cache.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
		c.cache.now = now
	}
}

// NewChecker wires the pipeline components together.
func NewChecker(registry *Registry, fetcher Fetcher, detector *ChangeDetector, cache *UpdateCache, opts ...Option) *Checker {
	c := &Checker{
		registry: registry,
		fetcher:  fetcher,
		detector: detector,
		cache:    cache,
		workers:  DefaultWorkers,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the monitored sources.
func (c *Checker) Registry() *Registry { return c.registry }

// Check returns the current regulatory updates. Unless refresh is set, a valid
// cached snapshot is returned without fetching anything. Source, storage and
// notification failures are contained; only an unexpected internal failure is
// returned as an error. Concurrent uncached calls share one cycle.
func (c *Checker) Check(ctx context.Context, refresh bool) ([]model.RegulatoryUpdate, error) {
	if !refresh {
		if snapshot, ok := c.cache.Load(ctx); ok && c.cache.IsValid(snapshot) {
			c.logger.Debug("using cached regulatory data", zap.Time("timestamp", snapshot.Timestamp))
			metrics.Cycles.WithLabelValues(metrics.ModeCached).Inc()
			return cloneUpdates(snapshot.Updates), nil
		}
	}

	v, err, _ := c.cycles.Do("cycle", func() (interface{}, error) {
		return c.runCycle(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return cloneUpdates(v.([]model.RegulatoryUpdate)), nil
}

func (c *Checker) runCycle(ctx context.Context) (updates []model.RegulatoryUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("regulatory check cycle failed: %v", r)
		}
	}()

	start := time.Now()
	c.logger.Debug("fetching fresh regulatory updates", zap.Int("sources", c.registry.Len()))

	sources := c.registry.Sources()
	slots := make([]*model.RegulatoryUpdate, len(sources))

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, src := range sources {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("source %s: %v", src.Name, r)
				}
			}()
			slots[i] = c.processSource(ctx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("regulatory check cycle failed: %w", err)
	}

	updates = make([]model.RegulatoryUpdate, 0, len(sources))
	for _, u := range slots {
		if u != nil {
			updates = append(updates, *u)
			metrics.Updates.WithLabelValues(string(u.ImpactLevel)).Inc()
		}
	}

	c.cache.Save(ctx, updates)
	c.alert(ctx, updates)
	c.publish(ctx, updates)

	metrics.Cycles.WithLabelValues(metrics.ModeFresh).Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	c.logger.Info("regulatory check complete",
		zap.Int("updates", len(updates)),
		zap.Int("critical", model.CountAtLevel(updates, model.ImpactCritical)),
		zap.Duration("took", time.Since(start)))

	return updates, nil
}

// processSource runs fetch, change detection and classification for one source.
// It returns nil when the source produces no update.
func (c *Checker) processSource(ctx context.Context, src model.Source) *model.RegulatoryUpdate {
	log := c.logger.With(zap.String("source", src.Name))

	content, err := c.fetcher.Fetch(ctx, src)
	if err != nil {
		log.Debug("skip source", zap.Error(err))
		metrics.FetchFailures.WithLabelValues(src.Name).Inc()
		return nil
	}

	changed, fp, err := c.detector.Detect(ctx, src.Name, content)
	if err != nil {
		log.Warn("fingerprint not persisted", zap.Error(err))
	}
	if !changed {
		log.Debug("no changes", zap.String("fingerprint", fp))
		return nil
	}

	impact := Classify(content, src)
	log.Debug("classified change",
		zap.String("level", string(impact.Level)),
		zap.Int("mkb_matches", impact.MKBMatches),
		zap.Int("urgent_matches", impact.UrgentMatches))
	if impact.Level == model.ImpactNone {
		return nil
	}

	u := NewUpdate(src, impact, c.now())
	return &u
}

func (c *Checker) alert(ctx context.Context, updates []model.RegulatoryUpdate) {
	if c.notifier == nil {
		return
	}
	critical := model.FilterLevel(updates, model.ImpactCritical)
	if len(critical) == 0 {
		return
	}
	if err := c.notifier.Notify(ctx, critical); err != nil {
		c.logger.Warn("critical alert failed", zap.Error(err))
		metrics.Alerts.WithLabelValues(metrics.AlertFailed).Inc()
		return
	}
	metrics.Alerts.WithLabelValues(metrics.AlertSent).Inc()
}

func (c *Checker) publish(ctx context.Context, updates []model.RegulatoryUpdate) {
	if c.publisher == nil || len(updates) == 0 {
		return
	}
	if err := c.publisher.Publish(ctx, updates); err != nil {
		c.logger.Warn("publishing updates failed", zap.Error(err))
	}
}

// NewUpdate builds the update record for a classified change of src.
func NewUpdate(src model.Source, impact Impact, detectedAt time.Time) model.RegulatoryUpdate {
	return model.RegulatoryUpdate{
		Source:            src.Name,
		Framework:         src.Framework,
		Title:             "Update detected: " + strings.ToUpper(src.Framework),
		ImpactLevel:       impact.Level,
		DetectedDate:      detectedAt,
		URL:               src.URL,
		Summary:           impact.Summary,
		MKBActionRequired: impact.Level.AtLeast(model.ImpactHigh),
	}
}

func cloneUpdates(in []model.RegulatoryUpdate) []model.RegulatoryUpdate {
	out := make([]model.RegulatoryUpdate, len(in))
	copy(out, in)
	return out
}
