package regulatory

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes of a check cycle. Each one is
// contained at the component that raised it.
var (
	ErrFetch        = errors.New("fetch failed")
	ErrPersistence  = errors.New("persistence failed")
	ErrNotification = errors.New("notification failed")
)

// FetchError reports a network, timeout or HTTP status failure for one source.
type FetchError struct {
	Source     string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (%s): unexpected status %d", e.Source, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrFetch) match any FetchError.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// PersistenceError reports a cache or fingerprint I/O failure.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match any PersistenceError.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NotificationError reports a mail relay or event publishing failure.
type NotificationError struct {
	Channel string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify via %s: %v", e.Channel, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotification) match any NotificationError.
func (e *NotificationError) Is(target error) bool { return target == ErrNotification }
