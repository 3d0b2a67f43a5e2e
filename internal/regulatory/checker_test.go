package regulatory

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	criticalText = "Immediate mandatory enforcement before the deadline"
	highText     = "New guidance for every sme and startup"
	mediumText   = "the deadline is near"
	noneText     = "lorem ipsum dolor sit amet"
)

func TestCheckFirstCycleReportsAllChanges(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	f.fetcher.Set("beta", mediumText)
	f.fetcher.Set("gamma", mediumText)

	updates, err := f.checker.Check(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, updates, 3)

	for i, name := range []string{"alpha", "beta", "gamma"} {
		assert.Equal(t, name, updates[i].Source, "registry order is preserved")
		assert.True(t, f.clock.Now().Equal(updates[i].DetectedDate))
	}
	assert.Equal(t, model.ImpactHigh, updates[0].ImpactLevel)
	assert.True(t, updates[0].MKBActionRequired)
	assert.False(t, updates[1].MKBActionRequired)
}

func TestCheckServesFreshCacheWithoutFetching(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	ctx := context.Background()

	first, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	calls := f.fetcher.TotalCalls()

	f.clock.Advance(time.Hour)
	second, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	require.Equal(t, calls, f.fetcher.TotalCalls(), "a fresh cache must not trigger fetches")

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b), "cached results are byte-identical")
}

func TestCheckRefreshBypassesCache(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	ctx := context.Background()

	_, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	calls := f.fetcher.TotalCalls()

	updates, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Equal(t, calls+3, f.fetcher.TotalCalls())
	require.Empty(t, updates, "unchanged content yields no updates")

	snap, err := f.snapshots.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Updates, "the cache is overwritten by the refreshed result")
}

func TestCheckExpiredCacheRefetches(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	ctx := context.Background()

	_, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	calls := f.fetcher.TotalCalls()

	f.clock.Advance(DefaultCacheTTL)
	_, err = f.checker.Check(ctx, false)
	require.NoError(t, err)
	require.Greater(t, f.fetcher.TotalCalls(), calls)
}

func TestCheckUnchangedContentIsIdempotent(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	ctx := context.Background()

	_, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	before, _, err := f.fingerprint.LoadFingerprint(ctx, "alpha")
	require.NoError(t, err)

	updates, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Empty(t, updates)

	after, _, err := f.fingerprint.LoadFingerprint(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, before, after)

	f.fetcher.Set("alpha", highText+" revised")
	updates, err = f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, "alpha", updates[0].Source)
}

func TestCheckIsolatesSourceFailures(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	f.fetcher.Fail("beta", errors.New("connection reset"))
	f.fetcher.Set("gamma", mediumText)

	updates, err := f.checker.Check(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.Equal(t, "alpha", updates[0].Source)
	require.Equal(t, "gamma", updates[1].Source)

	_, ok, err := f.fingerprint.LoadFingerprint(context.Background(), "beta")
	require.NoError(t, err)
	require.False(t, ok, "a failed fetch must not touch the fingerprint")
}

func TestCheckAllSourcesFailing(t *testing.T) {
	f := newCheckerFixture(t)
	for _, name := range []string{"alpha", "beta", "gamma"} {
		f.fetcher.Fail(name, errors.New("offline"))
	}

	updates, err := f.checker.Check(context.Background(), false)
	require.NoError(t, err)
	require.Empty(t, updates)
	require.Zero(t, f.notifier.Calls())
}

func TestCheckNoneLevelPersistsFingerprint(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", noneText)
	ctx := context.Background()

	updates, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Empty(t, updates)

	fp, ok, err := f.fingerprint.LoadFingerprint(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Fingerprint(noneText), fp)
}

func TestCheckAlertsOnlyCriticalUpdates(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	f.fetcher.Set("beta", mediumText)
	ctx := context.Background()

	_, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Zero(t, f.notifier.Calls(), "no alert without critical updates")

	f.fetcher.Set("gamma", criticalText)
	updates, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, 1, f.notifier.Calls())
	require.Len(t, f.notifier.calls[0], 1)
	require.Equal(t, model.ImpactCritical, f.notifier.calls[0][0].ImpactLevel)
}

func TestCheckAlertFailureDoesNotFailCycle(t *testing.T) {
	f := newCheckerFixture(t)
	f.notifier.err = &NotificationError{Channel: "smtp", Err: errors.New("relay down")}
	f.fetcher.Set("alpha", criticalText)

	updates, err := f.checker.Check(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	snap, err := f.snapshots.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Updates, 1)
}

func TestCheckFingerprintFailureStillReportsUpdate(t *testing.T) {
	registry, err := NewRegistry(testSources()[:1])
	require.NoError(t, err)
	fetcher := newStubFetcher()
	fetcher.Set("alpha", highText)

	cache := NewUpdateCache(NewFileSnapshotStore(filepath.Join(t.TempDir(), "c.json")), time.Hour, nil)
	c := NewChecker(registry, fetcher, NewChangeDetector(failingFingerprintStore{}, nil), cache)

	updates, err := c.Check(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, updates, 1)
}

func TestCheckCacheFailureStillReturnsResult(t *testing.T) {
	registry, err := NewRegistry(testSources()[:1])
	require.NoError(t, err)
	fetcher := newStubFetcher()
	fetcher.Set("alpha", highText)

	cache := NewUpdateCache(failingSnapshotStore{}, time.Hour, nil)
	c := NewChecker(registry, fetcher, NewChangeDetector(NewFileFingerprintStore(t.TempDir()), nil), cache)

	updates, err := c.Check(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, updates, 1)
}

func TestCheckPublishesFreshUpdates(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	f.fetcher.Set("beta", criticalText)
	ctx := context.Background()

	_, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	require.Len(t, f.publisher.published, 2)

	_, err = f.checker.Check(ctx, false)
	require.NoError(t, err)
	require.Len(t, f.publisher.published, 2, "cached results are not republished")
}

func TestCheckReturnsIndependentCopies(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	ctx := context.Background()

	first, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := f.checker.Check(ctx, false)
	require.NoError(t, err)
	require.NotEqual(t, "mutated", second[0].Title)
}

func TestCheckConcurrentCallsAreConsistent(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)
	f.fetcher.Set("beta", mediumText)

	var wg sync.WaitGroup
	results := make([][]model.RegulatoryUpdate, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			updates, err := f.checker.Check(context.Background(), false)
			assert.NoError(t, err)
			results[i] = updates
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(f.dir, "regulatory_cache.json"))
	require.NoError(t, err)
	var snap model.CacheSnapshot
	require.NoError(t, json.Unmarshal(data, &snap), "the cache file must always be a complete document")

	// The first cycle sees both changes; any later cycle sees none.
	total := 0
	for _, r := range results {
		total += len(r)
	}
	require.GreaterOrEqual(t, total, 2)
}

func TestCheckSurvivesCallerCancellation(t *testing.T) {
	f := newCheckerFixture(t)
	f.fetcher.Set("alpha", highText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	updates, err := f.checker.Check(ctx, true)
	require.NoError(t, err)
	require.Len(t, updates, 1)
}

type panickingFetcher struct{}

func (panickingFetcher) Fetch(context.Context, model.Source) (string, error) {
	panic("unexpected")
}

func TestCheckRecoversFromPanics(t *testing.T) {
	registry, err := NewRegistry(testSources())
	require.NoError(t, err)
	cache := NewUpdateCache(NewFileSnapshotStore(filepath.Join(t.TempDir(), "c.json")), time.Hour, nil)
	c := NewChecker(registry, panickingFetcher{}, NewChangeDetector(NewFileFingerprintStore(t.TempDir()), nil), cache)

	_, err = c.Check(context.Background(), true)
	require.Error(t, err)
}

func TestCheckIdempotentForSimilarSourceNames(t *testing.T) {
	sources := []model.Source{
		{Name: "GDPR Guidelines", Framework: "gdpr", URL: "https://a.example/", Keywords: []string{"sme"}},
		{Name: "GDPR_Guidelines", Framework: "gdpr", URL: "https://b.example/", Keywords: []string{"sme"}},
		{Name: "规则", Framework: "fintech", URL: "https://c.example/", Keywords: []string{"sme"}},
	}
	registry, err := NewRegistry(sources)
	require.NoError(t, err)

	fetcher := newStubFetcher()
	fetcher.Set("GDPR Guidelines", highText)
	fetcher.Set("GDPR_Guidelines", mediumText)
	fetcher.Set("规则", criticalText)

	dir := t.TempDir()
	cache := NewUpdateCache(NewFileSnapshotStore(filepath.Join(dir, "c.json")), time.Hour, nil)
	c := NewChecker(registry, fetcher, NewChangeDetector(NewFileFingerprintStore(filepath.Join(dir, "hashes")), nil), cache)
	ctx := context.Background()

	counts := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		updates, err := c.Check(ctx, true)
		require.NoError(t, err)
		counts = append(counts, len(updates))
	}
	require.Equal(t, []int{3, 0, 0}, counts)
}
