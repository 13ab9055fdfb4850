package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Well-known keys used by the session guard.
const (
	KeySessionExpiry   = "sessionExpiry"
	KeyLastActivity    = "lastActivity"
	KeyUserPreferences = "userPreferences"
)

// ErrUnavailable indicates the storage backend is unreachable.
var ErrUnavailable = errors.New("storage backend unavailable")

// Store is the persistence contract for security-relevant values. Values
// are small strings: RFC 3339 timestamps or compact JSON blobs.
type Store interface {
	Store(ctx context.Context, key, value string) error
	Retrieve(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
}

// Preferences is the non-security user echo persisted under
// [KeyUserPreferences]. Display and audit only.
type Preferences struct {
	Email     string    `json:"email"`
	LastLogin time.Time `json:"lastLogin"`
}

// EncodePreferences serializes prefs as compact JSON.
func EncodePreferences(prefs Preferences) (string, error) {
	data, err := json.Marshal(prefs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodePreferences parses a value written by [EncodePreferences].
func DecodePreferences(value string) (Preferences, error) {
	var prefs Preferences
	if err := json.Unmarshal([]byte(value), &prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// FormatTime renders a timestamp in the on-disk format.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime parses a value written by [FormatTime].
func ParseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
