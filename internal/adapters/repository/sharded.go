package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount       = 16
	defaultSnapshotInterval = 1 * time.Second
)

// Snapshot is an immutable, rating-ordered view of every record, rebuilt
// periodically so broadcast consumers never contend with writers.
type Snapshot struct {
	Records   []model.RatingRecord
	CreatedAt time.Time
}

type shard struct {
	mu   sync.RWMutex
	recs map[string]model.RatingRecord
}

// ShardedStore implements Store with per-shard locks and an atomically
// published snapshot.
type ShardedStore struct {
	shards []*shard

	snapshotInterval time.Duration
	snapshot         atomic.Pointer[Snapshot]

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewShardedStore creates a store and starts the periodic snapshot
// publisher. Close releases the background goroutine.
func NewShardedStore(ctx context.Context, opts ...Option) *ShardedStore {
	s := &ShardedStore{
		snapshotInterval: defaultSnapshotInterval,
		stopCh:           make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if len(s.shards) == 0 {
		s.setShardCount(defaultShardCount)
	}

	s.snapshot.Store(&Snapshot{CreatedAt: time.Now()})
	metrics.UpdateRepositoryShardCount(len(s.shards))
	s.startPeriodicSnapshots(ctx)
	return s
}

func (s *ShardedStore) setShardCount(n int) {
	s.shards = make([]*shard, n)
	for i := range s.shards {
		s.shards[i] = &shard{recs: make(map[string]model.RatingRecord)}
	}
}

func (s *ShardedStore) shardFor(playerID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return s.shards[int(h.Sum32())%len(s.shards)]
}

// Get returns the record for a player.
func (s *ShardedStore) Get(ctx context.Context, playerID string) (model.RatingRecord, bool) {
	sh := s.shardFor(playerID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	rec, ok := sh.recs[playerID]
	return rec, ok
}

// Seed creates a record if absent and returns the current record.
func (s *ShardedStore) Seed(ctx context.Context, playerID string, rating float64) model.RatingRecord {
	sh := s.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if rec, ok := sh.recs[playerID]; ok {
		return rec
	}
	rec := model.RatingRecord{PlayerID: playerID, Rating: rating}
	sh.recs[playerID] = rec
	return rec
}

// Put stores a record, replacing any existing one.
func (s *ShardedStore) Put(ctx context.Context, rec model.RatingRecord) {
	start := time.Now()
	sh := s.shardFor(rec.PlayerID)
	sh.mu.Lock()
	sh.recs[rec.PlayerID] = rec
	sh.mu.Unlock()
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
}

// TopN returns up to n records ordered by rating desc. Reads are computed
// live from the shards; the periodic snapshot serves broadcast fan-out,
// not point queries.
func (s *ShardedStore) TopN(ctx context.Context, n int) []model.RatingRecord {
	if n <= 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	all := s.collect()
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// Rank returns the 1-based rank for a player, ties sharing the best rank.
func (s *ShardedStore) Rank(ctx context.Context, playerID string) (int, model.RatingRecord, error) {
	rec, ok := s.Get(ctx, playerID)
	if !ok {
		return 0, model.RatingRecord{}, ErrNotFound
	}

	higher := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, other := range sh.recs {
			if other.Rating > rec.Rating {
				higher++
			}
		}
		sh.mu.RUnlock()
	}
	return higher + 1, rec, nil
}

// Count returns the number of tracked players.
func (s *ShardedStore) Count(ctx context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += len(sh.recs)
		sh.mu.RUnlock()
	}
	return n
}

// LatestSnapshot returns the most recently published snapshot.
func (s *ShardedStore) LatestSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// PublishSnapshot rebuilds and publishes a snapshot immediately.
func (s *ShardedStore) PublishSnapshot() *Snapshot {
	start := time.Now()
	snap := &Snapshot{Records: s.collect(), CreatedAt: time.Now()}
	s.snapshot.Store(snap)
	metrics.RecordRepositorySnapshot(float64(time.Since(start).Microseconds()) / 1000.0)
	metrics.UpdateRatingRecords(len(snap.Records))
	return snap
}

// Close stops the periodic snapshot publisher.
func (s *ShardedStore) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *ShardedStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.PublishSnapshot()
			}
		}
	}()
}

// collect gathers every record ordered rating DESC, playerID ASC.
func (s *ShardedStore) collect() []model.RatingRecord {
	var all []model.RatingRecord
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, rec := range sh.recs {
			all = append(all, rec)
		}
		sh.mu.RUnlock()
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Rating != all[j].Rating {
			return all[i].Rating > all[j].Rating
		}
		return all[i].PlayerID < all[j].PlayerID
	})
	return all
}
