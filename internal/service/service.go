// Package service holds the entity services. Each one converts between the
// storage documents in package model and the shapes in package domain with a
// single toX/fromX pair, and builds its queries on repository.Store.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "socialdash/internal/errors"
)

// Clock returns the current time. Services take one so date windows can be
// tested deterministically.
type Clock func() time.Time

func orNow(now Clock) Clock {
	if now == nil {
		return time.Now
	}
	return now
}

func parseID(field, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", apperrors.ErrInvalidID, field, id)
	}
	return parsed, nil
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
