package securestore

import (
	"context"
	"errors"
)

var (
	// ErrKeyNotFound is an exported constant or variable used by the secure store layer.
	ErrKeyNotFound = errors.New("secure store key not found")
	// ErrUnavailable is an exported constant or variable used by the secure store layer.
	ErrUnavailable = errors.New("secure store backend unavailable")
	// ErrSealFailed is an exported constant or variable used by the secure store layer.
	ErrSealFailed = errors.New("secure store seal failed")
	// ErrOpenFailed is an exported constant or variable used by the secure store layer.
	ErrOpenFailed = errors.New("secure store open failed")
)

// Store defines a public type used by linkAuth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
