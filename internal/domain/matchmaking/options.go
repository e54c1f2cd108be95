package matchmaking

import "github.com/vityaz/arena/pkg/logger"

// Option applies a configuration option to the InMemoryFinder.
type Option func(*InMemoryFinder)

// WithModes sets the game modes queues are opened for.
func WithModes(modes []string) Option {
	return func(f *InMemoryFinder) {
		if len(modes) > 0 {
			f.modes = modes
		}
	}
}

// WithBaseRating sets the rating seeded for new players.
func WithBaseRating(r float64) Option {
	return func(f *InMemoryFinder) {
		if r > 0 {
			f.baseRating = r
		}
	}
}

// WithKFactor sets the rating update K factor.
func WithKFactor(k float64) Option {
	return func(f *InMemoryFinder) {
		if k > 0 {
			f.kFactor = k
		}
	}
}

// WithMaxWaitTime sets the default wait after which a player's search
// range is fully widened, in milliseconds.
func WithMaxWaitTime(ms int64) Option {
	return func(f *InMemoryFinder) {
		if ms > 0 {
			f.maxWaitTime = ms
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(log logger.Logger) Option {
	return func(f *InMemoryFinder) {
		if log != nil {
			f.log = log
		}
	}
}

// WithClock overrides the time source. Deterministic clocks keep the
// wait-range tests stable.
func WithClock(now func() int64) Option {
	return func(f *InMemoryFinder) {
		if now != nil {
			f.now = now
		}
	}
}
