package cache

// SolveKeyOpts are the solve options that affect the result and therefore
// participate in the cache key. Anything that changes the returned solution
// or statistics must be included here.
type SolveKeyOpts struct {
	Tolerance    float64 `json:"tolerance"`
	PruneByBound bool    `json:"prune_by_bound"`
	Brancher     string  `json:"brancher"`
}

// ArtifactKeyOpts identify one rendered artifact of a solve.
type ArtifactKeyOpts struct {
	Format string `json:"format"` // dot, svg, png
}

// Keyer generates cache keys for the two cached value classes.
//
// modelHash is the content hash of the canonical model encoding, so two
// textually different files describing the same model share cache entries.
type Keyer interface {
	// SolveKey generates a key for a solve result.
	SolveKey(modelHash string, opts SolveKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, derived from the
	// solve key so artifacts are invalidated together with their solve.
	ArtifactKey(solveKey string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generation strategy: a class prefix plus
// a SHA-256 hash over the identifying parts.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SolveKey generates a key for a solve result.
func (k *DefaultKeyer) SolveKey(modelHash string, opts SolveKeyOpts) string {
	return hashKey("solve", modelHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(solveKey string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", solveKey, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
