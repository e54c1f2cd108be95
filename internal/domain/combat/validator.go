// Package combat implements server-authoritative shot validation and the
// advisory cheat heuristics that share its shot history.
package combat

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/internal/domain/series"
	"github.com/vityaz/arena/pkg/metrics"
)

// Default validation configuration constants.
const (
	defaultMaxShotsPerSecond     = 15
	defaultMaxTrajectoryDistance = 1000.0 // world units
	defaultMaxSpeed              = 500.0  // units per second
	defaultRateWindow            = 1000 * time.Millisecond
	defaultRetention             = 60 * time.Second
	defaultShardCount            = 8
	defaultHistoryCapacity       = 2048 // per-player cap, well above retention needs
)

// Reason identifies why a shot attempt was rejected.
type Reason string

// Rejection reasons surfaced to the caller. None are fatal; repeated
// rejections feed the heuristics, never an automatic ban.
const (
	ReasonRateExceeded         Reason = "rate_exceeded"
	ReasonImpossibleTrajectory Reason = "impossible_trajectory"
	ReasonPositionTeleport     Reason = "position_teleport"
	ReasonMalformedInput       Reason = "malformed_input"
)

// Verdict is the outcome of validating one shot attempt.
type Verdict struct {
	Accepted bool
	Reason   Reason
}

// ShotRecord is an accepted shot stored in the player's history. Timestamp
// is server receipt time; HitPlayerIDs is appended later by hit resolution.
type ShotRecord struct {
	PlayerID     string
	Position     model.Vec2
	Trajectory   model.Trajectory
	Timestamp    int64
	HitPlayerIDs []string
}

// Validator decides whether client-reported shots are physically plausible
// and keeps the rolling shot history the heuristics scan.
type Validator interface {
	// Validate applies the rate, trajectory, and teleport checks in order;
	// the first failure wins. now is server receipt time in milliseconds.
	Validate(ctx context.Context, playerID string, pos model.Vec2, traj model.Trajectory, now int64) Verdict

	// RecordHits appends resolved hit ids to the accepted shot with the
	// given timestamp. Returns false if no such shot remains in history.
	RecordHits(ctx context.Context, playerID string, shotAt int64, hitIDs ...string) bool

	// Scan runs the cheat heuristics over the player's recent window.
	Scan(ctx context.Context, playerID string) []Flag

	// Sweep drops records older than the retention horizon and removes
	// players whose history emptied. Returns dropped records and removed
	// players.
	Sweep(ctx context.Context) (int, int)

	// Clear removes all history for a player (disconnect).
	Clear(ctx context.Context, playerID string)

	// TrackedPlayers returns the number of players with live shot history.
	TrackedPlayers(ctx context.Context) int

	// PlayerIDs returns the ids of players with live shot history, so a
	// periodic scan can visit every retained window.
	PlayerIDs(ctx context.Context) []string
}

// shard holds the shot history for a subset of players behind its own lock,
// so a cross-player sweep never serializes all handlers on one mutex.
type shard struct {
	mu      sync.Mutex
	players map[string]*series.Series[ShotRecord]
}

// InMemoryValidator implements Validator with sharded per-player histories.
type InMemoryValidator struct {
	shards []*shard

	maxShotsPerSecond     int
	maxTrajectoryDistance float64
	maxSpeed              float64
	rateWindow            time.Duration
	retention             time.Duration
	headshotMinShots      int
	aimPatternSampleSize  int
	aimPatternTolerance   float64
	now                   func() int64
}

// NewInMemoryValidator creates a validator with configuration options.
func NewInMemoryValidator(opts ...Option) *InMemoryValidator {
	v := &InMemoryValidator{
		maxShotsPerSecond:     defaultMaxShotsPerSecond,
		maxTrajectoryDistance: defaultMaxTrajectoryDistance,
		maxSpeed:              defaultMaxSpeed,
		rateWindow:            defaultRateWindow,
		retention:             defaultRetention,
		headshotMinShots:      defaultHeadshotMinShots,
		aimPatternSampleSize:  defaultAimPatternSampleSize,
		aimPatternTolerance:   defaultAimPatternTolerance,
		now:                   func() int64 { return time.Now().UnixMilli() },
	}

	for _, opt := range opts {
		opt(v)
	}

	shardCount := defaultShardCount
	v.shards = make([]*shard, shardCount)
	for i := range v.shards {
		v.shards[i] = &shard{players: make(map[string]*series.Series[ShotRecord])}
	}

	return v
}

// shardFor hashes a player id onto its shard.
func (v *InMemoryValidator) shardFor(playerID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return v.shards[int(h.Sum32())%len(v.shards)]
}

// Validate applies the checks in order; the first failure wins.
func (v *InMemoryValidator) Validate(ctx context.Context, playerID string, pos model.Vec2, traj model.Trajectory, now int64) Verdict {
	start := time.Now()
	defer func() {
		metrics.RecordShotValidationLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if playerID == "" || now < 0 || !pos.Finite() || !traj.Finite() {
		return v.reject(ReasonMalformedInput)
	}

	sh := v.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	history, ok := sh.players[playerID]
	if !ok {
		history = series.New[ShotRecord](defaultHistoryCapacity)
		sh.players[playerID] = history
	}

	// Rate limit over the rolling window.
	if history.CountSince(now-v.rateWindow.Milliseconds()) >= v.maxShotsPerSecond {
		return v.reject(ReasonRateExceeded)
	}

	// Trajectory plausibility.
	if length := traj.Length(); length < 0 || length > v.maxTrajectoryDistance {
		return v.reject(ReasonImpossibleTrajectory)
	}

	// Teleport detection against the last accepted shot position.
	if last, ok := history.Newest(); ok {
		elapsed := float64(now-last.At) / 1000.0
		if pos.Dist(last.Val.Position) > elapsed*v.maxSpeed {
			return v.reject(ReasonPositionTeleport)
		}
	}

	history.Append(now, ShotRecord{
		PlayerID:   playerID,
		Position:   pos,
		Trajectory: traj,
		Timestamp:  now,
	})
	// Amortized cleanup: keep the history inside the heuristics horizon.
	history.EvictBefore(now - v.retention.Milliseconds())

	metrics.RecordShotAccepted()
	return Verdict{Accepted: true}
}

func (v *InMemoryValidator) reject(reason Reason) Verdict {
	metrics.RecordShotRejected(string(reason))
	return Verdict{Accepted: false, Reason: reason}
}

// RecordHits appends resolved hits to the matching shot, newest first.
func (v *InMemoryValidator) RecordHits(ctx context.Context, playerID string, shotAt int64, hitIDs ...string) bool {
	if len(hitIDs) == 0 {
		return false
	}
	sh := v.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	history, ok := sh.players[playerID]
	if !ok {
		return false
	}
	for i := history.Len() - 1; i >= 0; i-- {
		smp := history.At(i)
		if smp.At != shotAt {
			continue
		}
		rec := smp.Val
		for _, id := range hitIDs {
			if !containsID(rec.HitPlayerIDs, id) {
				rec.HitPlayerIDs = append(rec.HitPlayerIDs, id)
			}
		}
		history.Update(i, rec)
		return true
	}
	return false
}

// Sweep drops expired records and removes empty players, bounding memory
// under churn. Intended to run on a periodic ticker, never on the
// validation hot path.
func (v *InMemoryValidator) Sweep(ctx context.Context) (int, int) {
	cutoff := v.now() - v.retention.Milliseconds()
	dropped := 0
	removed := 0
	for _, sh := range v.shards {
		sh.mu.Lock()
		for id, history := range sh.players {
			dropped += history.EvictBefore(cutoff)
			if history.Len() == 0 {
				delete(sh.players, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return dropped, removed
}

// Clear removes all history for a player.
func (v *InMemoryValidator) Clear(ctx context.Context, playerID string) {
	sh := v.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.players, playerID)
}

// TrackedPlayers returns the number of players with live shot history.
func (v *InMemoryValidator) TrackedPlayers(ctx context.Context) int {
	n := 0
	for _, sh := range v.shards {
		sh.mu.Lock()
		n += len(sh.players)
		sh.mu.Unlock()
	}
	return n
}

// PlayerIDs returns the ids of players with live shot history.
func (v *InMemoryValidator) PlayerIDs(ctx context.Context) []string {
	var ids []string
	for _, sh := range v.shards {
		sh.mu.Lock()
		for id := range sh.players {
			ids = append(ids, id)
		}
		sh.mu.Unlock()
	}
	return ids
}

// ShotCount returns the number of stored shots for a player.
func (v *InMemoryValidator) ShotCount(ctx context.Context, playerID string) int {
	sh := v.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if history, ok := sh.players[playerID]; ok {
		return history.Len()
	}
	return 0
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
