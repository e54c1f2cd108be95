package lagcomp

// Option applies a configuration option to the InMemoryCompensator.
type Option func(*InMemoryCompensator)

// WithHistoryCapacity sets the per-player movement sample cap.
func WithHistoryCapacity(n int) Option {
	return func(c *InMemoryCompensator) {
		if n > 0 {
			c.historyCapacity = n
		}
	}
}

// WithPingWindowSize sets the trailing ping window length.
func WithPingWindowSize(n int) Option {
	return func(c *InMemoryCompensator) {
		if n > 0 {
			c.pingWindowSize = n
		}
	}
}

// WithInterpolationDelay sets the render-behind delay in milliseconds.
// Deployments with high average RTT want a larger value.
func WithInterpolationDelay(ms int64) Option {
	return func(c *InMemoryCompensator) {
		if ms >= 0 {
			c.interpolationDelay = ms
		}
	}
}

// WithSnapThreshold sets the prediction error above which reconcile snaps
// to server truth instead of blending.
func WithSnapThreshold(d float64) Option {
	return func(c *InMemoryCompensator) {
		if d > 0 {
			c.snapThreshold = d
		}
	}
}

// WithMaxCorrectionSpeed sets the per-frame pull-in speed for small
// prediction errors.
func WithMaxCorrectionSpeed(s float64) Option {
	return func(c *InMemoryCompensator) {
		if s > 0 {
			c.maxCorrectionSpeed = s
		}
	}
}

// WithFrameTime sets the frame duration in seconds used by reconcile.
func WithFrameTime(s float64) Option {
	return func(c *InMemoryCompensator) {
		if s > 0 {
			c.frameTime = s
		}
	}
}
