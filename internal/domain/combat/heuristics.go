package combat

import (
	"context"
	"fmt"
	"math"

	"github.com/vityaz/arena/pkg/metrics"
)

// Heuristic configuration constants. The headshot flag needs a body of
// evidence before it fires; short streaks are legitimate skill.
const (
	defaultHeadshotMinShots     = 24
	defaultAimPatternSampleSize = 5
	defaultAimPatternTolerance  = 0.1 // radians
)

// FlagKind identifies a heuristic anomaly.
type FlagKind string

// Advisory flag kinds. Flags are telemetry for moderation; they never block
// or reject a shot.
const (
	FlagSuspiciousHeadshotRate FlagKind = "suspicious_headshot_rate"
	FlagSuspiciousAimPattern   FlagKind = "suspicious_aim_pattern"
)

// Flag is one heuristic finding for a player.
type Flag struct {
	Kind     FlagKind
	PlayerID string
	Detail   string
}

// Scan runs the batch heuristics over the player's retained shot window.
// It holds only the player's shard lock and does no blocking work.
func (v *InMemoryValidator) Scan(ctx context.Context, playerID string) []Flag {
	sh := v.shardFor(playerID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	history, ok := sh.players[playerID]
	if !ok || history.Len() == 0 {
		return nil
	}

	var flags []Flag

	// Perfect hit rate over a meaningful sample size.
	hits := 0
	for i := 0; i < history.Len(); i++ {
		if len(history.At(i).Val.HitPlayerIDs) > 0 {
			hits++
		}
	}
	if hits > v.headshotMinShots && hits == history.Len() {
		flags = append(flags, Flag{
			Kind:     FlagSuspiciousHeadshotRate,
			PlayerID: playerID,
			Detail:   fmt.Sprintf("%d/%d shots landed hits", hits, history.Len()),
		})
	}

	// Aim assistance leaves near-identical trajectory angles. Fewer samples
	// than the window is not evidence either way.
	if history.Len() >= v.aimPatternSampleSize {
		recent := history.Tail(v.aimPatternSampleSize)
		consistent := true
		for i := 1; i < len(recent); i++ {
			prev := recent[i-1].Val.Trajectory.Angle()
			curr := recent[i].Val.Trajectory.Angle()
			if math.Abs(wrapAngle(curr-prev)) >= v.aimPatternTolerance {
				consistent = false
				break
			}
		}
		if consistent {
			flags = append(flags, Flag{
				Kind:     FlagSuspiciousAimPattern,
				PlayerID: playerID,
				Detail:   fmt.Sprintf("last %d trajectories within %.2f rad", v.aimPatternSampleSize, v.aimPatternTolerance),
			})
		}
	}

	for _, f := range flags {
		metrics.RecordCheatFlag(string(f.Kind))
	}
	return flags
}

// wrapAngle folds an angle difference into (-pi, pi].
func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
