package storage

import (
	"context"
	"testing"
)

func TestSignedStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSignedStore(NewMemoryStore(), []byte("test-secret"))

	if err := store.Store(ctx, KeySessionExpiry, "2025-06-01T12:00:00Z"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	value, ok, err := store.Retrieve(ctx, KeySessionExpiry)
	if err != nil || !ok || value != "2025-06-01T12:00:00Z" {
		t.Fatalf("Retrieve = (%q, %v, %v)", value, ok, err)
	}
}

func TestSignedStoreRejectsTamperedValue(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewSignedStore(inner, []byte("test-secret"))

	_ = store.Store(ctx, KeySessionExpiry, "2025-06-01T12:00:00Z")

	// Edit the raw value behind the wrapper's back.
	raw, _, _ := inner.Retrieve(ctx, KeySessionExpiry)
	_ = inner.Store(ctx, KeySessionExpiry, "2099-01-01T00:00:00Z"+raw[len(raw)-65:])

	if _, ok, _ := store.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("tampered value was accepted")
	}
	// The tampered value must also have been evicted.
	if _, ok, _ := inner.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("tampered value left in place")
	}
}

func TestSignedStoreRejectsKeySwap(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewSignedStore(inner, []byte("test-secret"))

	_ = store.Store(ctx, KeySessionExpiry, "2099-01-01T00:00:00Z")

	// Replay the expiry value under the activity key.
	raw, _, _ := inner.Retrieve(ctx, KeySessionExpiry)
	_ = inner.Store(ctx, KeyLastActivity, raw)

	if _, ok, _ := store.Retrieve(ctx, KeyLastActivity); ok {
		t.Fatal("value replayed under a different key was accepted")
	}
}

func TestSignedStoreRejectsMissingTag(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewSignedStore(inner, []byte("test-secret"))

	_ = inner.Store(ctx, KeySessionExpiry, "no-tag-here")

	if _, ok, _ := store.Retrieve(ctx, KeySessionExpiry); ok {
		t.Fatal("untagged value was accepted")
	}
}
