package regulatory

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	// sha256("abc")
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", Fingerprint("abc"))
	require.Len(t, Fingerprint(""), 64)
	require.Equal(t, Fingerprint("abc"), Fingerprint("a\xffbc"), "invalid bytes are dropped before hashing")
}

func TestDetectFirstRunIsChanged(t *testing.T) {
	store := NewFileFingerprintStore(t.TempDir())
	d := NewChangeDetector(store, nil)
	ctx := context.Background()

	changed, fp, err := d.Detect(ctx, "alpha", "content v1")
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, Fingerprint("content v1"), fp)

	stored, ok, err := store.LoadFingerprint(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, fp, stored)
}

func TestDetectUnchangedDoesNotRewrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFileFingerprintStore(dir)
	d := NewChangeDetector(store, nil)
	ctx := context.Background()

	_, _, err := d.Detect(ctx, "alpha", "content v1")
	require.NoError(t, err)

	path, err := store.path("alpha")
	require.NoError(t, err)
	before, err := os.Stat(path)
	require.NoError(t, err)

	changed, _, err := d.Detect(ctx, "alpha", "content v1")
	require.NoError(t, err)
	require.False(t, changed)

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, before.ModTime(), after.ModTime())
	require.True(t, os.SameFile(before, after), "unchanged content must not replace the fingerprint file")
}

func TestDetectChangedOverwrites(t *testing.T) {
	store := NewFileFingerprintStore(t.TempDir())
	d := NewChangeDetector(store, nil)
	ctx := context.Background()

	_, _, err := d.Detect(ctx, "alpha", "content v1")
	require.NoError(t, err)
	changed, fp, err := d.Detect(ctx, "alpha", "content v2")
	require.NoError(t, err)
	require.True(t, changed)

	stored, _, err := store.LoadFingerprint(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, fp, stored)
}

func TestDetectSourcesAreIndependent(t *testing.T) {
	d := NewChangeDetector(NewFileFingerprintStore(t.TempDir()), nil)
	ctx := context.Background()

	changed, _, _ := d.Detect(ctx, "alpha", "same")
	require.True(t, changed)
	changed, _, _ = d.Detect(ctx, "beta", "same")
	require.True(t, changed)
}

func TestDetectPersistenceFailureStillReportsChange(t *testing.T) {
	d := NewChangeDetector(failingFingerprintStore{}, nil)

	changed, fp, err := d.Detect(context.Background(), "alpha", "content")
	require.True(t, changed)
	require.Equal(t, Fingerprint("content"), fp)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPersistence))

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, "alpha", perr.Key)
}
