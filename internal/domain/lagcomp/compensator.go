// Package lagcomp reconstructs past player state for fair hit resolution
// and smooths client prediction against server truth.
package lagcomp

import (
	"context"
	"hash/fnv"
	"math"
	"sync"

	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/internal/domain/series"
	"github.com/vityaz/arena/pkg/metrics"
)

// Default compensation configuration constants.
const (
	defaultHistoryCapacity    = 1000 // movement samples per player
	defaultPingWindowSize     = 10
	defaultInterpolationDelay = 100 // milliseconds
	defaultSnapThreshold      = 5.0 // world units
	defaultMaxCorrectionSpeed = 10.0
	defaultFrameTime          = 0.016 // seconds, one 60Hz frame
	defaultShardCount         = 8
)

// Compensator answers "what was this player's state at time T" and keeps
// the smoothed ping estimate used to pick T.
type Compensator interface {
	// Record appends a movement sample to the player's bounded history.
	Record(ctx context.Context, state model.MovementState)

	// StateAt returns the stored sample nearest to the timestamp, without
	// interpolation. The second return is false when no history exists.
	StateAt(ctx context.Context, playerID string, timestamp int64) (model.MovementState, bool)

	// InterpolatedState reconstructs the player's state at now minus the
	// interpolation delay, blending the bracketing samples.
	InterpolatedState(ctx context.Context, playerID string, now int64) (model.MovementState, bool)

	// UpdatePing pushes a ping sample into the trailing window and returns
	// the smoothed average.
	UpdatePing(ctx context.Context, playerID string, ping int) int

	// AveragePing returns the current smoothed ping, zero if unknown.
	AveragePing(ctx context.Context, playerID string) int

	// Clear drops all history and ping samples for a player (disconnect).
	Clear(ctx context.Context, playerID string)

	// TrackedPlayers returns the number of players with live history.
	TrackedPlayers(ctx context.Context) int
}

// playerState is one player's movement history and ping window. The history
// series is allocated on the first movement sample; a ping-only entry keeps
// history nil and does not count as a tracked player.
type playerState struct {
	history *series.Series[model.MovementState]
	pings   []int
}

type shard struct {
	mu      sync.Mutex
	players map[string]*playerState
}

// InMemoryCompensator implements Compensator with sharded per-player
// histories.
type InMemoryCompensator struct {
	shards []*shard

	historyCapacity    int
	pingWindowSize     int
	interpolationDelay int64
	snapThreshold      float64
	maxCorrectionSpeed float64
	frameTime          float64
}

// NewInMemoryCompensator creates a compensator with configuration options.
func NewInMemoryCompensator(opts ...Option) *InMemoryCompensator {
	c := &InMemoryCompensator{
		historyCapacity:    defaultHistoryCapacity,
		pingWindowSize:     defaultPingWindowSize,
		interpolationDelay: defaultInterpolationDelay,
		snapThreshold:      defaultSnapThreshold,
		maxCorrectionSpeed: defaultMaxCorrectionSpeed,
		frameTime:          defaultFrameTime,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.shards = make([]*shard, defaultShardCount)
	for i := range c.shards {
		c.shards[i] = &shard{players: make(map[string]*playerState)}
	}

	return c
}

func (c *InMemoryCompensator) shardFor(playerID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return c.shards[int(h.Sum32())%len(c.shards)]
}

// Record appends a movement sample to the player's bounded history.
func (c *InMemoryCompensator) Record(ctx context.Context, state model.MovementState) {
	if state.PlayerID == "" {
		return
	}
	sh := c.shardFor(state.PlayerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ps, ok := sh.players[state.PlayerID]
	if !ok {
		ps = &playerState{}
		sh.players[state.PlayerID] = ps
	}
	if ps.history == nil {
		ps.history = series.New[model.MovementState](c.historyCapacity)
	}
	ps.history.Append(state.Timestamp, state)
	metrics.RecordMovementSample()
}

// StateAt returns the sample nearest to the timestamp.
func (c *InMemoryCompensator) StateAt(ctx context.Context, playerID string, timestamp int64) (model.MovementState, bool) {
	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ps, ok := sh.players[playerID]
	if !ok || ps.history == nil {
		return model.MovementState{}, false
	}
	smp, ok := ps.history.Nearest(timestamp)
	if !ok {
		return model.MovementState{}, false
	}
	return smp.Val, true
}

// InterpolatedState reconstructs state at now minus the interpolation
// delay. With only one side of the bracket available it returns that
// sample verbatim.
func (c *InMemoryCompensator) InterpolatedState(ctx context.Context, playerID string, now int64) (model.MovementState, bool) {
	metrics.RecordInterpolationRequest()
	target := now - c.interpolationDelay

	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ps, ok := sh.players[playerID]
	if !ok || ps.history == nil {
		return model.MovementState{}, false
	}

	before, after, hasBefore, hasAfter := ps.history.Bracket(target)
	switch {
	case !hasBefore && !hasAfter:
		return model.MovementState{}, false
	case !hasAfter:
		return before.Val, true
	case !hasBefore:
		return after.Val, true
	}

	span := after.At - before.At
	t := 0.0
	if span > 0 {
		t = clamp(float64(target-before.At)/float64(span), 0, 1)
	}

	a, b := before.Val, after.Val
	return model.MovementState{
		PlayerID:  playerID,
		Position:  lerpVec(a.Position, b.Position, t),
		Rotation:  lerpAngles(a.Rotation, b.Rotation, t),
		Velocity:  lerpVec(a.Velocity, b.Velocity, t),
		Timestamp: target,
		Ping:      a.Ping,
	}, true
}

// PredictPosition dead-reckons a position dtMs into the future.
func PredictPosition(state model.MovementState, dtMs int64) model.Vec3 {
	dt := float64(dtMs) / 1000.0
	return model.Vec3{
		X: state.Position.X + state.Velocity.X*dt,
		Y: state.Position.Y + state.Velocity.Y*dt,
		Z: state.Position.Z + state.Velocity.Z*dt,
	}
}

// UpdatePing pushes a ping sample and returns the window average.
func (c *InMemoryCompensator) UpdatePing(ctx context.Context, playerID string, ping int) int {
	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	ps, ok := sh.players[playerID]
	if !ok {
		ps = &playerState{}
		sh.players[playerID] = ps
	}
	ps.pings = append(ps.pings, ping)
	if len(ps.pings) > c.pingWindowSize {
		ps.pings = ps.pings[len(ps.pings)-c.pingWindowSize:]
	}
	return meanPing(ps.pings)
}

// AveragePing returns the smoothed ping, zero if no samples exist.
func (c *InMemoryCompensator) AveragePing(ctx context.Context, playerID string) int {
	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if ps, ok := sh.players[playerID]; ok {
		return meanPing(ps.pings)
	}
	return 0
}

// Reconcile pulls a client-predicted state toward server truth. Large
// errors snap to truth outright; small ones blend per-axis so the client
// sees a smooth correction instead of a jump. Rotation and velocity always
// come from the server.
func (c *InMemoryCompensator) Reconcile(predicted, truth model.MovementState) model.MovementState {
	distance := predicted.Position.Dist(truth.Position)
	if distance > c.snapThreshold || distance == 0 {
		if distance > c.snapThreshold {
			metrics.RecordReconcileSnap()
		}
		return truth
	}

	factor := math.Min(1, c.maxCorrectionSpeed*c.frameTime/distance)
	out := truth
	out.Position = model.Vec3{
		X: predicted.Position.X + (truth.Position.X-predicted.Position.X)*factor,
		Y: predicted.Position.Y + (truth.Position.Y-predicted.Position.Y)*factor,
		Z: predicted.Position.Z + (truth.Position.Z-predicted.Position.Z)*factor,
	}
	return out
}

// Clear drops all state for a player.
func (c *InMemoryCompensator) Clear(ctx context.Context, playerID string) {
	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.players, playerID)
}

// TrackedPlayers returns the number of players with movement history.
// Ping-only entries do not count.
func (c *InMemoryCompensator) TrackedPlayers(ctx context.Context) int {
	n := 0
	for _, sh := range c.shards {
		sh.mu.Lock()
		for _, ps := range sh.players {
			if ps.history != nil {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}

// SampleCount returns the number of stored movement samples for a player.
func (c *InMemoryCompensator) SampleCount(ctx context.Context, playerID string) int {
	sh := c.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if ps, ok := sh.players[playerID]; ok && ps.history != nil {
		return ps.history.Len()
	}
	return 0
}

func lerpVec(a, b model.Vec3, t float64) model.Vec3 {
	return model.Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// lerpAngles blends each rotation axis along the shortest arc, wrapping
// the difference into (-pi, pi] before scaling.
func lerpAngles(a, b model.Vec3, t float64) model.Vec3 {
	return model.Vec3{
		X: lerpAngle(a.X, b.X, t),
		Y: lerpAngle(a.Y, b.Y, t),
		Z: lerpAngle(a.Z, b.Z, t),
	}
}

func lerpAngle(a, b, t float64) float64 {
	diff := b - a
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff <= -math.Pi {
		diff += 2 * math.Pi
	}
	return a + diff*t
}

func meanPing(pings []int) int {
	if len(pings) == 0 {
		return 0
	}
	sum := 0
	for _, p := range pings {
		sum += p
	}
	return int(math.Round(float64(sum) / float64(len(pings))))
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
