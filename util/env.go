// Package util provides environment, logging, naming and filesystem helpers shared by the service.
//
//revive:disable-next-line:var-naming
package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvDefault is a convenience function for handling env vars
func GetEnvDefault(key, defVal string) string {
	val, ex := os.LookupEnv(key) // get the env var
	if !ex || strings.TrimSpace(val) == "" {
		return defVal
	}
	return strings.TrimSpace(val)
}

// GetEnvInt returns the integer value of key, or defVal when unset.
func GetEnvInt(key string, defVal int) (int, error) {
	raw := GetEnvDefault(key, "")
	if raw == "" {
		return defVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, raw)
	}
	return v, nil
}

// GetEnvInt64 returns the 64-bit integer value of key, or defVal when unset.
func GetEnvInt64(key string, defVal int64) (int64, error) {
	raw := GetEnvDefault(key, "")
	if raw == "" {
		return defVal, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q", key, raw)
	}
	return v, nil
}

// GetEnvDuration parses key as a Go duration ("30s", "5m").
// A bare integer is read as seconds.
func GetEnvDuration(key string, defVal time.Duration) (time.Duration, error) {
	raw := GetEnvDefault(key, "")
	if raw == "" {
		return defVal, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q", key, raw)
	}
	return d, nil
}

// SplitList splits a comma separated value, dropping empty entries.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
