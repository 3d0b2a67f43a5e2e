// Package reports persists compliance scan reports and serves them for download.
package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/qeme/sentinel-lite/util"
)

// ErrInvalidName is returned for file names that sanitise to nothing.
var ErrInvalidName = errors.New("invalid report file name")

const defaultCompany = "Bedrijf"

// Store writes report files into a single directory.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// FileName returns compliance_rapport_<company>_<YYYYmmdd_HHMMSS>.json for company at t.
func FileName(company string, t time.Time) string {
	safe := util.SecureFilename(strings.ReplaceAll(company, " ", "_"))
	if safe == "" {
		safe = defaultCompany
	}
	return fmt.Sprintf("compliance_rapport_%s_%s.json", safe, t.Format("20060102_150405"))
}

// Save writes report as indented JSON and returns the file name.
func (s *Store) Save(company string, report map[string]interface{}) (string, error) {
	name := FileName(company, s.now())
	path, err := util.SafeJoin(s.dir, name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", err
	}

	if err := util.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return name, nil
}

// Path resolves a requested file name to a readable report path.
// It returns os.ErrNotExist when the report does not exist.
func (s *Store) Path(requested string) (string, error) {
	name := util.SecureFilename(requested)
	if name == "" {
		return "", ErrInvalidName
	}
	path, err := util.SafeJoin(s.dir, name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", os.ErrNotExist
	}
	return path, nil
}
