package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignedStore wraps another [Store] and appends an HMAC-SHA256 tag to every
// value. A retrieved value whose tag does not verify — edited at rest, or
// copied under a different key — is treated as absent and removed.
//
// The tag covers the key name as well as the value, so a valid value cannot
// be replayed under another key.
type SignedStore struct {
	inner Store
	key   []byte
}

// NewSignedStore wraps inner with tamper detection using the given secret.
func NewSignedStore(inner Store, secret []byte) *SignedStore {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &SignedStore{inner: inner, key: key}
}

func (s *SignedStore) tag(key, value string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(key))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *SignedStore) Store(ctx context.Context, key, value string) error {
	return s.inner.Store(ctx, key, value+"."+s.tag(key, value))
}

func (s *SignedStore) Retrieve(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.inner.Retrieve(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}

	idx := strings.LastIndexByte(raw, '.')
	if idx < 0 {
		_ = s.inner.Remove(ctx, key)
		return "", false, nil
	}

	value, tag := raw[:idx], raw[idx+1:]
	if !hmac.Equal([]byte(tag), []byte(s.tag(key, value))) {
		_ = s.inner.Remove(ctx, key)
		return "", false, nil
	}

	return value, true, nil
}

func (s *SignedStore) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *SignedStore) ClearAll(ctx context.Context) error {
	return s.inner.ClearAll(ctx)
}
