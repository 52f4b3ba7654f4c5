package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis database:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "secassess:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RecordKey generates a prefixed record key.
func (k *ScopedKeyer) RecordKey(id string) string {
	return k.prefix + k.inner.RecordKey(id)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(recordHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(recordHash, opts)
}
