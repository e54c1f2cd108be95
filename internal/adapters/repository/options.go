package repository

import "time"

// Option applies a configuration option to the ShardedStore.
type Option func(*ShardedStore)

// WithShardCount sets the number of record shards.
func WithShardCount(n int) Option {
	return func(s *ShardedStore) {
		if n > 0 {
			s.setShardCount(n)
		}
	}
}

// WithSnapshotInterval sets how often the snapshot publisher runs.
func WithSnapshotInterval(interval time.Duration) Option {
	return func(s *ShardedStore) {
		if interval > 0 {
			s.snapshotInterval = interval
		}
	}
}
