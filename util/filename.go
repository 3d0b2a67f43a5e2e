package util

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrPathEscape is returned when a resolved path would leave its base directory.
var ErrPathEscape = errors.New("path escapes base directory")

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat, ASCII-only file name.
// Accents are decomposed and dropped, path separators become spaces,
// whitespace runs become underscores and leading/trailing dots and
// underscores are stripped. The result may be empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	ascii := b.String()

	ascii = strings.NewReplacer("/", " ", "\\", " ").Replace(ascii)
	ascii = strings.Join(strings.Fields(ascii), "_")
	ascii = unsafeFilenameChars.ReplaceAllString(ascii, "")
	return strings.Trim(ascii, "._")
}

// SafeJoin joins name onto dir and verifies the absolute result stays inside dir.
func SafeJoin(dir, name string) (string, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(base, name))
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(full, base+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return full, nil
}

// maxKeyPrefix bounds the readable part of a StoreKey.
const maxKeyPrefix = 48

// ErrEmptyKey is returned by StoreKey for blank names.
var ErrEmptyKey = errors.New("cannot derive a key from a blank name")

// StoreKey derives a file name and ArangoDB document key from name. The
// readable prefix is SecureFilename(name); the SHA-256 suffix keeps names
// that sanitize alike apart, and stands alone when nothing readable remains.
func StoreKey(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyKey
	}

	sum := sha256.Sum256([]byte(name))
	digest := hex.EncodeToString(sum[:])

	prefix := SecureFilename(name)
	if len(prefix) > maxKeyPrefix {
		prefix = strings.TrimRight(prefix[:maxKeyPrefix], "._")
	}
	if prefix == "" {
		return digest, nil
	}
	return prefix + "-" + digest, nil
}
