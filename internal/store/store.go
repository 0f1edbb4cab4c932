// Package store persists the gatekeeper Brain in a versioned storage slot.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/gatekeeper/internal/model"
)

// DefaultKey is the storage slot for the current Brain schema. A schema
// change gets a new key; old slots are never migrated.
const DefaultKey = "gatekeeper_brain_v2"

var (
	// ErrNotFound means the slot holds no Brain yet.
	ErrNotFound = errors.New("brain not found")
	// ErrCorrupt means the stored record could not be decoded.
	ErrCorrupt = errors.New("brain record corrupt")
)

// Version describes one saved copy of a slot.
type Version struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Version   int       `json:"version"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the Brain persistence interface.
type Store interface {
	// Load returns the latest Brain saved under key.
	// Returns ErrNotFound for an empty slot and ErrCorrupt for an unreadable one.
	Load(ctx context.Context, key string) (*model.Brain, error)

	// Save writes b as the new latest version of key. Implementations may
	// return the latest version unchanged when b encodes to the same bytes.
	Save(ctx context.Context, key string, b *model.Brain) (*Version, error)

	// Close closes the store.
	Close() error
}
