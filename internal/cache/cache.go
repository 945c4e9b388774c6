// Package cache provides change-detection storage for chunk digests.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Store maps chunk IDs to content digests. Implementations must allow
// concurrent Lookup/Record calls for different chunk IDs; updates to the
// same ID are serialized with last-writer-wins, which is enough because a
// single run touches each chunk at most once.
type Store interface {
	// Lookup returns the recorded digest for chunkID, with found=false
	// when nothing was recorded.
	Lookup(ctx context.Context, chunkID string) (digest string, found bool, err error)

	// Record stores the digest for chunkID, replacing any previous one.
	Record(ctx context.Context, chunkID, digest string) error

	// Forget drops every recorded digest whose chunk ID starts with
	// prefix. Used to force reprocessing of a file's chunks.
	Forget(ctx context.Context, prefix string) error

	Close() error
}

// Hash returns the hex SHA-256 digest of content. Collision resistance
// only has to prevent false "unchanged" verdicts.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Changed reports whether a chunk needs reprocessing: an absent entry or
// a digest mismatch both count as changed.
func Changed(ctx context.Context, store Store, chunkID, digest string) (bool, error) {
	recorded, found, err := store.Lookup(ctx, chunkID)
	if err != nil {
		return false, err
	}
	return !found || recorded != digest, nil
}
