package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The API
// server uses it to claim its own keyspace on shared Redis or MongoDB
// backends; the same mechanism works for per-tenant isolation:
//
//	// One namespace per tenant on a shared instance
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
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

// SolveKey generates a prefixed key for a solve result.
func (k *ScopedKeyer) SolveKey(modelHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(modelHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(solveKey string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(solveKey, opts)
}
