package regulatory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"
)

// Fingerprint returns the hex SHA-256 digest of content. Invalid UTF-8 sequences
// are dropped before hashing.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(strings.ToValidUTF8(content, "")))
	return hex.EncodeToString(sum[:])
}

// ChangeDetector compares content fingerprints against the last persisted one per source.
type ChangeDetector struct {
	store  FingerprintStore
	logger *zap.Logger
}

// NewChangeDetector creates a detector backed by store.
func NewChangeDetector(store FingerprintStore, logger *zap.Logger) *ChangeDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeDetector{store: store, logger: logger}
}

// Detect reports whether content differs from the last fingerprint stored for source.
// A missing or unreadable fingerprint counts as changed. On change the new fingerprint
// is written before returning; a failed write is returned as a *PersistenceError with
// changed still true, so the caller can continue with classification.
func (d *ChangeDetector) Detect(ctx context.Context, source, content string) (bool, string, error) {
	fp := Fingerprint(content)

	last, ok, err := d.store.LoadFingerprint(ctx, source)
	if err != nil {
		d.logger.Debug("fingerprint unreadable, treating as absent",
			zap.String("source", source), zap.Error(err))
		ok = false
	}
	if ok && last == fp {
		return false, fp, nil
	}

	if err := d.store.SaveFingerprint(ctx, source, fp); err != nil {
		return true, fp, &PersistenceError{Op: "save fingerprint", Key: source, Err: err}
	}
	return true, fp, nil
}
