package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Store(ctx, KeySessionExpiry, "2025-06-01T12:00:00Z"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	value, ok, err := store.Retrieve(ctx, KeySessionExpiry)
	if err != nil || !ok {
		t.Fatalf("Retrieve = (%q, %v, %v), want present", value, ok, err)
	}
	if value != "2025-06-01T12:00:00Z" {
		t.Fatalf("value = %q", value)
	}

	if err := store.Remove(ctx, KeySessionExpiry); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("value still present after Remove")
	}
}

func TestMemoryStoreClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Store(ctx, KeySessionExpiry, "a")
	_ = store.Store(ctx, KeyLastActivity, "b")

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	for _, key := range []string{KeySessionExpiry, KeyLastActivity} {
		if _, ok, _ := store.Retrieve(ctx, key); ok {
			t.Fatalf("key %q survived ClearAll", key)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	parsed, err := ParseTime(FormatTime(now))
	if err != nil {
		t.Fatalf("ParseTime failed: %v", err)
	}
	if !parsed.Equal(now) {
		t.Fatalf("round trip = %v, want %v", parsed, now)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	prefs := Preferences{
		Email:     "alice@example.com",
		LastLogin: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	encoded, err := EncodePreferences(prefs)
	if err != nil {
		t.Fatalf("EncodePreferences failed: %v", err)
	}

	decoded, err := DecodePreferences(encoded)
	if err != nil {
		t.Fatalf("DecodePreferences failed: %v", err)
	}
	if decoded.Email != prefs.Email || !decoded.LastLogin.Equal(prefs.LastLogin) {
		t.Fatalf("decoded = %+v, want %+v", decoded, prefs)
	}
}
