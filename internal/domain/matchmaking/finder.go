// Package matchmaking pairs waiting players into balanced matches and
// maintains skill ratings updated after each result.
package matchmaking

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/pkg/logger"
	"github.com/vityaz/arena/pkg/metrics"
)

// Default matchmaking configuration constants.
const (
	defaultBaseRating     = 1000.0
	defaultKFactor        = 32.0
	defaultBaseRange      = 100.0
	defaultRangeGrowth    = 200.0
	defaultMaxWaitTime    = 30_000 // milliseconds
	defaultMinWaitEst     = 1000   // milliseconds
	defaultWaitPerBatch   = 2000   // milliseconds per ten queued players
	defaultBatchSize      = 10
	defaultLeaderboardCap = 100
)

// DefaultModes are the queues opened when none are configured.
var DefaultModes = []string{"deathmatch", "team_deathmatch"}

// RatingStore is the read/write interface match ratings live behind. A
// durable implementation satisfies restart survival without the finder
// knowing.
type RatingStore interface {
	// Get returns the record for a player, false if none exists.
	Get(ctx context.Context, playerID string) (model.RatingRecord, bool)

	// Seed creates a record at the given rating if absent and returns the
	// current record either way.
	Seed(ctx context.Context, playerID string, rating float64) model.RatingRecord

	// Put stores a record, replacing any existing one.
	Put(ctx context.Context, rec model.RatingRecord)

	// TopN returns up to n records sorted by rating descending.
	TopN(ctx context.Context, n int) []model.RatingRecord

	// Count returns the number of stored records.
	Count(ctx context.Context) int
}

// Entry is one player waiting in a mode queue.
type Entry struct {
	PlayerID       string
	Mode           string
	QueuedAt       int64
	MaxWaitTime    int64
	EstimatedSkill float64
}

// Match is an emitted pairing of two queued players.
type Match struct {
	MatchID   string `json:"match_id"`
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
	Mode      string `json:"mode"`
	MatchTime int64  `json:"match_time"`
}

// ResultUpdate carries the post-match ratings back to the caller.
type ResultUpdate struct {
	WinnerNewRating float64 `json:"winner_new_rating"`
	LoserNewRating  float64 `json:"loser_new_rating"`
}

// Finder manages per-mode player queues, pairing, and rating updates.
type Finder interface {
	// Enqueue adds a player to a mode queue. A duplicate join is a warned
	// no-op. The player's rating is seeded if absent.
	Enqueue(ctx context.Context, playerID, mode string, maxWaitTime int64) error

	// Dequeue removes a player from one mode queue, or from all queues
	// when mode is empty.
	Dequeue(ctx context.Context, playerID, mode string) error

	// FindMatches greedily pairs queued players oldest-first, widening
	// each player's rating search range with time waited.
	FindMatches(ctx context.Context, mode string) ([]Match, error)

	// RecordResult applies the rating update for a finished match.
	RecordResult(ctx context.Context, winnerID, loserID string) (ResultUpdate, error)

	// QueueStatus reports queue depth and wait estimates for a mode.
	QueueStatus(ctx context.Context, mode string) (model.QueueStatus, error)

	// Leaderboard returns the top rated players.
	Leaderboard(ctx context.Context, limit int) []model.RatingRecord

	// PlayerStats returns a player's rating record, false if unknown.
	PlayerStats(ctx context.Context, playerID string) (model.RatingRecord, bool)

	// Clear removes a player from every queue (disconnect). Ratings are
	// kept; skill outlives a session.
	Clear(ctx context.Context, playerID string)

	// Modes lists the configured game modes.
	Modes() []string
}

// modeQueue holds one mode's waiting players behind a coarse lock. Queues
// are small, so finer sharding buys nothing here.
type modeQueue struct {
	mu      sync.Mutex
	entries []*Entry
}

// InMemoryFinder implements Finder over per-mode queues and a RatingStore.
type InMemoryFinder struct {
	queues  map[string]*modeQueue
	modes   []string
	ratings RatingStore
	log     logger.Logger

	baseRating  float64
	kFactor     float64
	baseRange   float64
	rangeGrowth float64
	maxWaitTime int64
	now         func() int64
}

// NewInMemoryFinder creates a finder backed by the given rating store.
func NewInMemoryFinder(ratings RatingStore, opts ...Option) *InMemoryFinder {
	f := &InMemoryFinder{
		ratings:     ratings,
		modes:       DefaultModes,
		log:         logger.Named("matchmaking"),
		baseRating:  defaultBaseRating,
		kFactor:     defaultKFactor,
		baseRange:   defaultBaseRange,
		rangeGrowth: defaultRangeGrowth,
		maxWaitTime: defaultMaxWaitTime,
		now:         func() int64 { return time.Now().UnixMilli() },
	}

	for _, opt := range opts {
		opt(f)
	}

	f.queues = make(map[string]*modeQueue, len(f.modes))
	for _, mode := range f.modes {
		f.queues[mode] = &modeQueue{}
	}

	return f
}

// Enqueue adds a player to a mode queue, seeding a rating if absent.
func (f *InMemoryFinder) Enqueue(ctx context.Context, playerID, mode string, maxWaitTime int64) error {
	q, ok := f.queues[mode]
	if !ok {
		return ErrUnknownMode
	}
	if maxWaitTime <= 0 {
		maxWaitTime = f.maxWaitTime
	}

	rec := f.ratings.Seed(ctx, playerID, f.baseRating)

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.PlayerID == playerID {
			f.log.Warn(ctx, "duplicate queue join ignored",
				logger.String("player_id", playerID),
				logger.String("mode", mode))
			return nil
		}
	}

	q.entries = append(q.entries, &Entry{
		PlayerID:       playerID,
		Mode:           mode,
		QueuedAt:       f.now(),
		MaxWaitTime:    maxWaitTime,
		EstimatedSkill: rec.Rating,
	})

	metrics.RecordQueueJoin()
	metrics.UpdateQueueDepth(mode, len(q.entries))
	return nil
}

// Dequeue removes a player from one or all mode queues.
func (f *InMemoryFinder) Dequeue(ctx context.Context, playerID, mode string) error {
	if mode == "" {
		f.Clear(ctx, playerID)
		return nil
	}
	q, ok := f.queues[mode]
	if !ok {
		return ErrUnknownMode
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if f.removeLocked(q, playerID) {
		metrics.RecordQueueLeave()
		metrics.UpdateQueueDepth(mode, len(q.entries))
	}
	return nil
}

// FindMatches pairs queued players oldest-first. For each unmatched
// player the rating search range widens linearly with time waited, capped
// at baseRange plus rangeGrowth; the closest-rated later candidate inside
// the range wins, ties broken by queue order.
func (f *InMemoryFinder) FindMatches(ctx context.Context, mode string) ([]Match, error) {
	q, ok := f.queues[mode]
	if !ok {
		return nil, ErrUnknownMode
	}

	start := time.Now()
	defer func() {
		metrics.RecordMatchScanLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	q.mu.Lock()
	defer q.mu.Unlock()

	now := f.now()
	sort.SliceStable(q.entries, func(i, j int) bool {
		return q.entries[i].QueuedAt < q.entries[j].QueuedAt
	})

	matched := make([]bool, len(q.entries))
	var matches []Match

	for i, p := range q.entries {
		if matched[i] {
			continue
		}
		waited := float64(now - p.QueuedAt)
		searchRange := f.baseRange + math.Min(waited/float64(p.MaxWaitTime), 1)*f.rangeGrowth

		best := -1
		bestDelta := math.Inf(1)
		for j := i + 1; j < len(q.entries); j++ {
			if matched[j] {
				continue
			}
			delta := math.Abs(q.entries[j].EstimatedSkill - p.EstimatedSkill)
			if delta <= searchRange && delta < bestDelta {
				best = j
				bestDelta = delta
			}
		}
		if best < 0 {
			continue
		}

		matched[i] = true
		matched[best] = true
		matches = append(matches, Match{
			MatchID:   uuid.NewString(),
			Player1ID: p.PlayerID,
			Player2ID: q.entries[best].PlayerID,
			Mode:      mode,
			MatchTime: now,
		})
		metrics.RecordMatchFound(mode)
	}

	if len(matches) > 0 {
		remaining := q.entries[:0]
		for i, e := range q.entries {
			if !matched[i] {
				remaining = append(remaining, e)
			}
		}
		q.entries = remaining
		metrics.UpdateQueueDepth(mode, len(q.entries))
	}

	return matches, nil
}

// RecordResult applies the logistic rating update and refreshes win/loss
// bookkeeping for both players.
func (f *InMemoryFinder) RecordResult(ctx context.Context, winnerID, loserID string) (ResultUpdate, error) {
	if winnerID == loserID {
		return ResultUpdate{}, ErrSelfMatch
	}

	winner := f.ratings.Seed(ctx, winnerID, f.baseRating)
	loser := f.ratings.Seed(ctx, loserID, f.baseRating)

	newWinner, newLoser := eloUpdate(winner.Rating, loser.Rating, f.kFactor)
	now := f.now()

	winner.Rating = newWinner
	winner.Wins++
	winner.TotalMatches++
	winner.WinRate = float64(winner.Wins) / float64(winner.TotalMatches) * 100
	winner.LastMatchTime = now

	loser.Rating = newLoser
	loser.Losses++
	loser.TotalMatches++
	loser.WinRate = float64(loser.Wins) / float64(loser.TotalMatches) * 100
	loser.LastMatchTime = now

	f.ratings.Put(ctx, winner)
	f.ratings.Put(ctx, loser)
	metrics.RecordRatingUpdate()

	return ResultUpdate{WinnerNewRating: newWinner, LoserNewRating: newLoser}, nil
}

// QueueStatus reports queue depth and coarse wait estimates.
func (f *InMemoryFinder) QueueStatus(ctx context.Context, mode string) (model.QueueStatus, error) {
	q, ok := f.queues[mode]
	if !ok {
		return model.QueueStatus{}, ErrUnknownMode
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := f.now()
	var totalWait int64
	for _, e := range q.entries {
		totalWait += now - e.QueuedAt
	}
	avgWait := int64(0)
	if len(q.entries) > 0 {
		avgWait = totalWait / int64(len(q.entries))
	}

	batches := int64(math.Ceil(float64(len(q.entries)) / defaultBatchSize))
	estimated := batches * defaultWaitPerBatch
	if estimated < defaultMinWaitEst {
		estimated = defaultMinWaitEst
	}

	return model.QueueStatus{
		Mode:              mode,
		PlayersWaiting:    len(q.entries),
		AverageWaitTime:   avgWait,
		EstimatedWaitTime: estimated,
	}, nil
}

// Leaderboard returns up to limit players sorted by rating descending.
func (f *InMemoryFinder) Leaderboard(ctx context.Context, limit int) []model.RatingRecord {
	if limit <= 0 || limit > defaultLeaderboardCap {
		limit = defaultLeaderboardCap
	}
	return f.ratings.TopN(ctx, limit)
}

// PlayerStats returns the player's rating record.
func (f *InMemoryFinder) PlayerStats(ctx context.Context, playerID string) (model.RatingRecord, bool) {
	return f.ratings.Get(ctx, playerID)
}

// Clear removes the player from every mode queue.
func (f *InMemoryFinder) Clear(ctx context.Context, playerID string) {
	for mode, q := range f.queues {
		q.mu.Lock()
		if f.removeLocked(q, playerID) {
			metrics.RecordQueueLeave()
			metrics.UpdateQueueDepth(mode, len(q.entries))
		}
		q.mu.Unlock()
	}
}

// Modes lists the configured game modes.
func (f *InMemoryFinder) Modes() []string {
	out := make([]string, len(f.modes))
	copy(out, f.modes)
	return out
}

func (f *InMemoryFinder) removeLocked(q *modeQueue, playerID string) bool {
	for i, e := range q.entries {
		if e.PlayerID == playerID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}
