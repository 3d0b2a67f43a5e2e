package database

import (
	"context"
	"fmt"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/qeme/sentinel-lite/model"
	"github.com/qeme/sentinel-lite/util"
)

// snapshotKey is the document key of the single cache snapshot.
const snapshotKey = "latest"

// FingerprintDoc is the stored fingerprint of one source.
type FingerprintDoc struct {
	Key         string `json:"_key"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
	UpdatedAt   string `json:"updated_at"`
}

// SnapshotDoc is the stored cache snapshot.
type SnapshotDoc struct {
	Key       string                   `json:"_key"`
	Timestamp string                   `json:"timestamp"`
	Updates   []model.RegulatoryUpdate `json:"updates"`
}

// FingerprintStore keeps source fingerprints in the fingerprint collection.
type FingerprintStore struct {
	db  arangodb.Database
	now func() time.Time
}

// NewFingerprintStore returns a fingerprint store over db.
func NewFingerprintStore(db DBConnection) *FingerprintStore {
	return &FingerprintStore{db: db.Database, now: time.Now}
}

// LoadFingerprint returns the stored fingerprint of source and whether one exists.
func (s *FingerprintStore) LoadFingerprint(ctx context.Context, source string) (string, bool, error) {
	key, err := documentKey(source)
	if err != nil {
		return "", false, err
	}

	var doc FingerprintDoc
	found, err := readDocument(ctx, s.db, FingerprintCollection, key, &doc)
	if err != nil || !found || doc.Fingerprint == "" {
		return "", false, err
	}
	return doc.Fingerprint, true, nil
}

// SaveFingerprint upserts the fingerprint of source.
func (s *FingerprintStore) SaveFingerprint(ctx context.Context, source, fingerprint string) error {
	key, err := documentKey(source)
	if err != nil {
		return err
	}

	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, source: @source, fingerprint: @fp, updated_at: @time }
		UPDATE { fingerprint: @fp, updated_at: @time }
		IN fingerprint
	`
	bindVars := map[string]interface{}{
		"key":    key,
		"source": source,
		"fp":     fingerprint,
		"time":   s.now().UTC().Format(time.RFC3339),
	}

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return err
	}
	return cursor.Close()
}

// SnapshotStore keeps the cache snapshot as a single document.
type SnapshotStore struct {
	db arangodb.Database
}

// NewSnapshotStore returns a snapshot store over db.
func NewSnapshotStore(db DBConnection) *SnapshotStore {
	return &SnapshotStore{db: db.Database}
}

// LoadSnapshot returns the stored snapshot, or nil when none exists.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context) (*model.CacheSnapshot, error) {
	var doc SnapshotDoc
	found, err := readDocument(ctx, s.db, CacheCollection, snapshotKey, &doc)
	if err != nil || !found || doc.Timestamp == "" {
		return nil, err
	}
	return doc.Snapshot()
}

// SaveSnapshot replaces the stored snapshot.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snapshot model.CacheSnapshot) error {
	doc := NewSnapshotDoc(snapshot)

	query := `
		UPSERT { _key: @key }
		INSERT { _key: @key, timestamp: @ts, updates: @updates }
		REPLACE { _key: @key, timestamp: @ts, updates: @updates }
		IN regulatory_cache
	`
	bindVars := map[string]interface{}{
		"key":     doc.Key,
		"ts":      doc.Timestamp,
		"updates": doc.Updates,
	}

	cursor, err := s.db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return err
	}
	return cursor.Close()
}

// NewSnapshotDoc converts a snapshot to its stored form.
func NewSnapshotDoc(snapshot model.CacheSnapshot) SnapshotDoc {
	updates := snapshot.Updates
	if updates == nil {
		updates = []model.RegulatoryUpdate{}
	}
	return SnapshotDoc{
		Key:       snapshotKey,
		Timestamp: snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
		Updates:   updates,
	}
}

// Snapshot converts the stored form back to a snapshot.
func (d SnapshotDoc) Snapshot() (*model.CacheSnapshot, error) {
	ts, err := time.Parse(time.RFC3339Nano, d.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("corrupt cache document: %w", err)
	}
	updates := d.Updates
	if updates == nil {
		updates = []model.RegulatoryUpdate{}
	}
	return &model.CacheSnapshot{Timestamp: ts, Updates: updates}, nil
}

func documentKey(source string) (string, error) {
	key, err := util.StoreKey(source)
	if err != nil {
		return "", fmt.Errorf("source name %q: %w", source, err)
	}
	return key, nil
}

// readDocument fetches collection/key into out and reports whether it exists.
func readDocument(ctx context.Context, db arangodb.Database, collection, key string, out interface{}) (bool, error) {
	query := `RETURN DOCUMENT(@col, @key)`
	bindVars := map[string]interface{}{"col": collection, "key": key}

	cursor, err := db.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return false, nil
	}
	if _, err := cursor.ReadDocument(ctx, out); err != nil {
		return false, err
	}
	return true, nil
}
