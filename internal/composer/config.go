// internal/composer/config.go
package composer

import "time"

// Config holds every hand-tuned threshold the discovery heuristics use.
// The literal numbers were calibrated against a live host page and are
// defaults subject to recalibration, not constants with intrinsic meaning;
// they are all overridable through the injector config section.
type Config struct {
	// MinComposeWidth/Height reject zero-size and placeholder surfaces.
	MinComposeWidth  float64
	MinComposeHeight float64
	// OpacityFloor tolerates near-invisible-but-interactive elements while
	// rejecting fully transparent ones.
	OpacityFloor float64
	// ViewportSlack expands the viewport on every edge so elements sliding
	// in from just off-screen still qualify.
	ViewportSlack float64
	// HighConfidence is the SelectionScore a recently-mutated candidate must
	// clear to be returned without considering the rest of the page.
	HighConfidence float64

	// Recent-candidate set tuning.
	MaxRecent     int
	RecentTTL     time.Duration
	SweepInterval time.Duration

	Weights ScoreWeights
}

// ScoreWeights ranks simultaneously valid compose areas. Only relative
// ordering matters within one locate call.
type ScoreWeights struct {
	// Size contributes with diminishing returns: each axis is capped at
	// SizeCapPx before multiplying by SizePerPx.
	SizeCapPx float64
	SizePerPx float64
	// InViewport rewards candidates fully inside the visible viewport.
	InViewport float64
	// InModal rewards candidates inside a dialog/modal container.
	InModal float64
	// Focused is the single largest bonus: holding focus, or containing the
	// focused descendant, is the strongest signal of user intent.
	Focused float64
	// DisabledPenalty punishes disabled or pointer-events:none candidates.
	DisabledPenalty float64
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		MinComposeWidth:  50,
		MinComposeHeight: 20,
		OpacityFloor:     0.05,
		ViewportSlack:    100,
		HighConfidence:   50,
		MaxRecent:        32,
		RecentTTL:        45 * time.Second,
		SweepInterval:    30 * time.Second,
		Weights: ScoreWeights{
			SizeCapPx:       600,
			SizePerPx:       0.05,
			InViewport:      30,
			InModal:         40,
			Focused:         60,
			DisabledPenalty: -100,
		},
	}
}
