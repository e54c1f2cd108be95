package combat

import "time"

// Option applies a configuration option to the InMemoryValidator.
type Option func(*InMemoryValidator)

// WithMaxShotsPerSecond sets the fire rate limit.
func WithMaxShotsPerSecond(n int) Option {
	return func(v *InMemoryValidator) {
		if n > 0 {
			v.maxShotsPerSecond = n
		}
	}
}

// WithMaxTrajectoryDistance sets the maximum plausible bullet travel.
func WithMaxTrajectoryDistance(d float64) Option {
	return func(v *InMemoryValidator) {
		if d > 0 {
			v.maxTrajectoryDistance = d
		}
	}
}

// WithMaxSpeed sets the maximum player speed in units per second used by
// teleport detection.
func WithMaxSpeed(s float64) Option {
	return func(v *InMemoryValidator) {
		if s > 0 {
			v.maxSpeed = s
		}
	}
}

// WithRetention sets the heuristics history horizon.
func WithRetention(d time.Duration) Option {
	return func(v *InMemoryValidator) {
		if d > 0 {
			v.retention = d
		}
	}
}

// WithHeadshotFlagThreshold sets the shot count above which a 100% hit rate
// raises a flag.
func WithHeadshotFlagThreshold(n int) Option {
	return func(v *InMemoryValidator) {
		if n > 0 {
			v.headshotMinShots = n
		}
	}
}

// WithClock overrides the time source used by Sweep. Deterministic clocks
// keep the sweep tests stable.
func WithClock(now func() int64) Option {
	return func(v *InMemoryValidator) {
		if now != nil {
			v.now = now
		}
	}
}
