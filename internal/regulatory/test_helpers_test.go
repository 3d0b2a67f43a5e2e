package regulatory

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/qeme/sentinel-lite/model"
	"github.com/stretchr/testify/require"
)

// stubFetcher serves canned content per source name and counts calls.
type stubFetcher struct {
	mu      sync.Mutex
	content map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		content: make(map[string]string),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *stubFetcher) Set(source, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.content[source] = content
	delete(f.errs, source)
}

func (f *stubFetcher) Fail(source string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[source] = err
}

func (f *stubFetcher) Fetch(_ context.Context, src model.Source) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[src.Name]++
	if err, ok := f.errs[src.Name]; ok {
		return "", &FetchError{Source: src.Name, URL: src.URL, Err: err}
	}
	return f.content[src.Name], nil
}

func (f *stubFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// recordingNotifier records every Notify call.
type recordingNotifier struct {
	mu    sync.Mutex
	calls [][]model.RegulatoryUpdate
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, updates []model.RegulatoryUpdate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, append([]model.RegulatoryUpdate(nil), updates...))
	return n.err
}

func (n *recordingNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// recordingPublisher records every Publish call.
type recordingPublisher struct {
	mu        sync.Mutex
	published []model.RegulatoryUpdate
}

func (p *recordingPublisher) Publish(_ context.Context, updates []model.RegulatoryUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, updates...)
	return nil
}

// failingFingerprintStore fails every operation.
type failingFingerprintStore struct{}

func (failingFingerprintStore) LoadFingerprint(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}

func (failingFingerprintStore) SaveFingerprint(context.Context, string, string) error {
	return errors.New("disk unavailable")
}

// failingSnapshotStore fails every operation.
type failingSnapshotStore struct{}

func (failingSnapshotStore) LoadSnapshot(context.Context) (*model.CacheSnapshot, error) {
	return nil, errors.New("disk unavailable")
}

func (failingSnapshotStore) SaveSnapshot(context.Context, model.CacheSnapshot) error {
	return errors.New("disk unavailable")
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testSources returns three sources with distinct keyword sets.
func testSources() []model.Source {
	return []model.Source{
		{Name: "alpha", Framework: "eu_ai_act", URL: "https://alpha.example/feed", Type: "html", Keywords: []string{"sme", "startup"}},
		{Name: "beta", Framework: "gdpr", URL: "https://beta.example/news", Type: "html", Keywords: []string{"small business", "guidance"}},
		{Name: "gamma", Framework: "fintech", URL: "https://gamma.example/", Type: "html", Keywords: []string{"sandbox"}},
	}
}

type checkerFixture struct {
	checker     *Checker
	fetcher     *stubFetcher
	notifier    *recordingNotifier
	publisher   *recordingPublisher
	clock       *fakeClock
	fingerprint *FileFingerprintStore
	snapshots   *FileSnapshotStore
	dir         string
}

func newCheckerFixture(t *testing.T) *checkerFixture {
	t.Helper()

	dir := t.TempDir()
	registry, err := NewRegistry(testSources())
	require.NoError(t, err)

	f := &checkerFixture{
		fetcher:     newStubFetcher(),
		notifier:    &recordingNotifier{},
		publisher:   &recordingPublisher{},
		clock:       newFakeClock(),
		fingerprint: NewFileFingerprintStore(filepath.Join(dir, "hashes")),
		snapshots:   NewFileSnapshotStore(filepath.Join(dir, "regulatory_cache.json")),
		dir:         dir,
	}
	cache := NewUpdateCache(f.snapshots, DefaultCacheTTL, nil)
	f.checker = NewChecker(registry, f.fetcher, NewChangeDetector(f.fingerprint, nil), cache,
		WithNotifier(f.notifier),
		WithPublisher(f.publisher),
		WithWorkers(2),
		WithClock(f.clock.Now),
	)
	return f
}
