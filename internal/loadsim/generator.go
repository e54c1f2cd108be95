package loadsim

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/vityaz/arena/internal/domain/model"
)

// Traffic mix ratios. Position updates dominate real gameplay traffic,
// shots come second, queue churn is rare.
const (
	shotWeight     = 30
	movementWeight = 60
	queueWeight    = 8
	resultWeight   = 2
	totalWeight    = shotWeight + movementWeight + queueWeight + resultWeight
)

// World bounds for generated coordinates.
const (
	worldExtent  = 2000.0
	maxShotReach = 900.0
	maxSpeed     = 400.0
	maxPing      = 180
)

// Generator produces a plausible stream of inbound events for a roster of
// synthetic players.
type Generator struct {
	players []string
	mode    string
	rng     *rand.Rand

	// last generated position per player keeps movement continuous, so
	// teleport rejections stay rare and intentional.
	positions map[string]model.Vec2
}

// NewGenerator creates a generator for n synthetic players.
func NewGenerator(n int, mode string, seed int64) *Generator {
	players := make([]string, n)
	for i := range players {
		players[i] = uuid.NewString()
	}
	return &Generator{
		players:   players,
		mode:      mode,
		rng:       rand.New(rand.NewSource(seed)),
		positions: make(map[string]model.Vec2, n),
	}
}

// Players returns the roster of synthetic player ids.
func (g *Generator) Players() []string {
	out := make([]string, len(g.players))
	copy(out, g.players)
	return out
}

// Next produces one event envelope.
func (g *Generator) Next() model.Envelope {
	playerID := g.players[g.rng.Intn(len(g.players))]
	roll := g.rng.Intn(totalWeight)

	switch {
	case roll < shotWeight:
		return g.shot(playerID)
	case roll < shotWeight+movementWeight:
		return g.movement(playerID)
	case roll < shotWeight+movementWeight+queueWeight:
		return g.queueJoin(playerID)
	default:
		return g.matchResult(playerID)
	}
}

func (g *Generator) shot(playerID string) model.Envelope {
	pos := g.walk(playerID)
	angle := g.rng.Float64() * 2 * math.Pi
	reach := g.rng.Float64() * maxShotReach
	return model.Envelope{
		EventID:  uuid.NewString(),
		Kind:     model.KindShotAttempt,
		PlayerID: playerID,
		Shot: &model.ShotAttempt{
			Position: pos,
			Trajectory: model.Trajectory{
				StartX: pos.X,
				StartY: pos.Y,
				EndX:   pos.X + reach*math.Cos(angle),
				EndY:   pos.Y + reach*math.Sin(angle),
			},
		},
	}
}

func (g *Generator) movement(playerID string) model.Envelope {
	pos := g.walk(playerID)
	return model.Envelope{
		EventID:  uuid.NewString(),
		Kind:     model.KindPositionUpdate,
		PlayerID: playerID,
		Movement: &model.PositionUpdate{
			Position: model.Vec3{X: pos.X, Y: pos.Y},
			Rotation: model.Vec3{Z: g.rng.Float64()*2*math.Pi - math.Pi},
			Velocity: model.Vec3{
				X: g.rng.Float64()*2*maxSpeed - maxSpeed,
				Y: g.rng.Float64()*2*maxSpeed - maxSpeed,
			},
			Ping: g.rng.Intn(maxPing),
		},
	}
}

func (g *Generator) queueJoin(playerID string) model.Envelope {
	return model.Envelope{
		EventID:   uuid.NewString(),
		Kind:      model.KindQueueJoin,
		PlayerID:  playerID,
		QueueJoin: &model.QueueJoin{Mode: g.mode},
	}
}

func (g *Generator) matchResult(playerID string) model.Envelope {
	other := g.players[g.rng.Intn(len(g.players))]
	for other == playerID {
		other = g.players[g.rng.Intn(len(g.players))]
	}
	return model.Envelope{
		EventID: uuid.NewString(),
		Kind:    model.KindMatchResult,
		MatchResult: &model.MatchResult{
			WinnerID: playerID,
			LoserID:  other,
		},
	}
}

// walk advances a player's position by a small step inside world bounds.
func (g *Generator) walk(playerID string) model.Vec2 {
	pos, ok := g.positions[playerID]
	if !ok {
		pos = model.Vec2{
			X: g.rng.Float64()*2*worldExtent - worldExtent,
			Y: g.rng.Float64()*2*worldExtent - worldExtent,
		}
	} else {
		pos.X += g.rng.Float64()*20 - 10
		pos.Y += g.rng.Float64()*20 - 10
	}
	g.positions[playerID] = pos
	return pos
}

