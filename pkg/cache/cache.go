// Package cache stores rendered export artifacts keyed by record content.
//
// Exports are deterministic for a given record, image set, section
// selection and format, so an artifact can be served again until the
// record changes. The CLI uses a [FileCache] under the XDG cache
// directory; the API server can share a [RedisCache] across instances.
// [NullCache] disables caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// Default time-to-live values.
const (
	TTLArtifact = 24 * time.Hour
	TTLRecord   = 5 * time.Minute
)

// =============================================================================
// Keys
// =============================================================================

// Keyer builds cache keys.
type Keyer interface {
	// RecordKey is the key of a loaded assessment record.
	RecordKey(id string) string
	// ArtifactKey is the key of a rendered export of a record whose
	// content hashes to recordHash.
	ArtifactKey(recordHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the inputs besides the record that change an export.
type ArtifactKeyOpts struct {
	Format     string `json:"format"`
	Sections   string `json:"sections"`
	ImagesHash string `json:"images_hash,omitempty"`
}

// DefaultKeyer produces "record:<id>" and "artifact:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RecordKey implements [Keyer].
func (DefaultKeyer) RecordKey(id string) string { return "record:" + id }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(recordHash string, opts ArtifactKeyOpts) string {
	return artifactKey("artifact", recordHash, opts)
}
