// Package kv defines the durable key-value handle the document registry runs
// against, plus the concrete backends. The contract is deliberately small:
// get/put by key, durability across restarts (memory excepted), and no
// multi-key transactions — the registry's dual-write protocol is the same
// against every backend.
package kv

import (
	"context"
	"errors"
)

//go:generate mockgen -source=kv.go -destination=mocks/mocks.go -package=mocks Store

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is the registry's storage handle.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes value under key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
