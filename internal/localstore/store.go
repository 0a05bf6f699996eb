// Package localstore is the persisted key-value cache used as the last
// fallback tier and as a mirror of data served by the other tiers.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "socialdash/internal/errors"
)

// Well-known keys.
const (
	KeyUserID      = "userId"
	KeyAuthToken   = "authToken"
	KeyProfiles    = "socialProfiles"
	KeySuggestions = "contentSuggestions"
	KeyMetrics     = "socialMetrics"
)

// Store is a string key-value store. GetItem reports a missing key with
// ok == false rather than an error.
type Store interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// GetJSON decodes the value at key into v. It returns false when the key is
// missing.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (bool, error) {
	raw, ok, err := s.GetItem(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("%w: cached %s: %v", apperrors.ErrParse, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetItem(ctx, key, string(raw))
}
