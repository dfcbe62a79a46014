package domain

import "time"

// KeyPrefix namespaces every key shoprec writes to the shared cache.
const KeyPrefix = "shoprec:"

// RecommendConfig holds engine tuning knobs, not exposed to clients.
type RecommendConfig struct {
	// DefaultLimit is used when the caller does not ask for a specific size.
	DefaultLimit int
	// MaxLimit caps any requested size.
	MaxLimit int
	// NeighborhoodSize is how many of the most similar users feed the candidate
	// weighting.
	NeighborhoodSize int
	// Timeout bounds one computation when the caller has no deadline of its own.
	Timeout time.Duration
}

// DefaultRecommendConfig returns the engine defaults.
func DefaultRecommendConfig() RecommendConfig {
	return RecommendConfig{
		DefaultLimit:     5,
		MaxLimit:         50,
		NeighborhoodSize: 3,
		Timeout:          2 * time.Second,
	}
}
