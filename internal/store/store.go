// Package store provides the persistence ports and their SQLite and in-memory implementations.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/signal-memory/internal/model"
)

// ErrNotFound is returned by KV.Get for a missing key.
var ErrNotFound = errors.New("not found")

// KV is a minimal durable key-value port.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Journal keeps a bounded, ordered log of interactions.
type Journal interface {
	// Append adds rec and drops the oldest entries beyond keep (keep <= 0 keeps all).
	Append(ctx context.Context, rec model.InteractionRecord, keep int) error

	// Recent returns up to limit of the newest entries, oldest first.
	Recent(ctx context.Context, limit int) ([]model.InteractionRecord, error)
}
