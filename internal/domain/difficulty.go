package domain

import "time"

// DefaultTierThresholds are the upper bounds (inclusive) of tiers 1..3; anything past the
// last threshold is tier 4.
var DefaultTierThresholds = []time.Duration{30 * time.Second, 60 * time.Second, 90 * time.Second}

// TierFor maps elapsed race time to a difficulty tier. A threshold belongs to the lower
// tier: with the defaults 30s is tier 1 and 30.1s is tier 2.
func TierFor(elapsed time.Duration, thresholds []time.Duration) int {
	if len(thresholds) == 0 {
		thresholds = DefaultTierThresholds
	}
	for i, limit := range thresholds {
		if elapsed <= limit {
			return i + 1
		}
	}
	return len(thresholds) + 1
}
