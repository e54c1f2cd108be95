// Package series provides a bounded, time-ordered sample buffer. It is the
// shared foundation for shot history and movement history: both are
// per-player sequences of timestamped payloads with a rolling retention
// horizon.
package series

// Sample pairs a payload with its timestamp in milliseconds. Timestamps are
// expected to be server receipt time, monotonic per source.
type Sample[T any] struct {
	At  int64
	Val T
}

// Series is a capacity-bounded buffer of samples kept in non-decreasing
// timestamp order. Late arrivals are corrected by a bounded backward shift
// into place rather than rejected; with server-receipt stamping the shift is
// almost always zero. Series is not safe for concurrent use; the owning
// shard or handler must serialize access.
type Series[T any] struct {
	samples  []Sample[T]
	capacity int
}

// New creates a series holding at most capacity samples; the oldest sample
// is evicted first once full. A capacity of zero or less means unbounded.
func New[T any](capacity int) *Series[T] {
	return &Series[T]{capacity: capacity}
}

// Append inserts a sample, keeping timestamp order. When the buffer is at
// capacity the oldest sample is dropped.
func (s *Series[T]) Append(at int64, val T) {
	if s.capacity > 0 && len(s.samples) >= s.capacity {
		s.samples = s.samples[1:]
	}
	smp := Sample[T]{At: at, Val: val}
	// Fast path: arrival order matches time order.
	if n := len(s.samples); n == 0 || s.samples[n-1].At <= at {
		s.samples = append(s.samples, smp)
		return
	}
	// Out-of-order arrival: shift backward into place.
	i := len(s.samples)
	s.samples = append(s.samples, Sample[T]{})
	for i > 0 && s.samples[i-1].At > at {
		s.samples[i] = s.samples[i-1]
		i--
	}
	s.samples[i] = smp
}

// Len returns the number of stored samples.
func (s *Series[T]) Len() int {
	return len(s.samples)
}

// At returns the i-th sample, oldest first. The caller must keep i in range.
func (s *Series[T]) At(i int) Sample[T] {
	return s.samples[i]
}

// Update replaces the payload of the i-th sample, preserving its timestamp.
func (s *Series[T]) Update(i int, val T) {
	s.samples[i].Val = val
}

// Oldest returns the earliest sample, if any.
func (s *Series[T]) Oldest() (Sample[T], bool) {
	if len(s.samples) == 0 {
		return Sample[T]{}, false
	}
	return s.samples[0], true
}

// Newest returns the latest sample, if any.
func (s *Series[T]) Newest() (Sample[T], bool) {
	if len(s.samples) == 0 {
		return Sample[T]{}, false
	}
	return s.samples[len(s.samples)-1], true
}

// Nearest returns the sample whose timestamp is closest to ts, ties broken
// by the earlier sample. The scan short-circuits once the delta starts
// growing; timestamps are ordered, so the minimum is unimodal.
func (s *Series[T]) Nearest(ts int64) (Sample[T], bool) {
	if len(s.samples) == 0 {
		return Sample[T]{}, false
	}
	best := s.samples[0]
	minDiff := absDelta(ts, best.At)
	for _, smp := range s.samples[1:] {
		diff := absDelta(ts, smp.At)
		if diff < minDiff {
			minDiff = diff
			best = smp
		} else if diff > minDiff {
			break
		}
	}
	return best, true
}

// Bracket returns the samples straddling ts: before is the latest sample
// with At <= ts, after is the earliest with At > ts. Either side may be
// absent near the edges of the buffer.
func (s *Series[T]) Bracket(ts int64) (before, after Sample[T], hasBefore, hasAfter bool) {
	for _, smp := range s.samples {
		if smp.At <= ts {
			before = smp
			hasBefore = true
			continue
		}
		after = smp
		hasAfter = true
		break
	}
	return before, after, hasBefore, hasAfter
}

// CountSince returns the number of samples with At > cutoff.
func (s *Series[T]) CountSince(cutoff int64) int {
	n := 0
	for i := len(s.samples) - 1; i >= 0; i-- {
		if s.samples[i].At <= cutoff {
			break
		}
		n++
	}
	return n
}

// EvictBefore drops samples with At < cutoff and returns how many were
// removed. Amortized O(1) per insert when called on every append.
func (s *Series[T]) EvictBefore(cutoff int64) int {
	i := 0
	for i < len(s.samples) && s.samples[i].At < cutoff {
		i++
	}
	if i > 0 {
		s.samples = s.samples[i:]
	}
	return i
}

// Tail returns copies of the n most recent samples, oldest first.
func (s *Series[T]) Tail(n int) []Sample[T] {
	if n <= 0 || len(s.samples) == 0 {
		return nil
	}
	if n > len(s.samples) {
		n = len(s.samples)
	}
	out := make([]Sample[T], n)
	copy(out, s.samples[len(s.samples)-n:])
	return out
}

// Clear drops all samples.
func (s *Series[T]) Clear() {
	s.samples = nil
}

func absDelta(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
