// Package model contains domain models passed between layers.
package model

import "fmt"

// Kind tags an inbound event envelope.
type Kind string

// Inbound event kinds delivered by the network/room layer.
const (
	KindShotAttempt    Kind = "shot_attempt"
	KindPositionUpdate Kind = "position_update"
	KindQueueJoin      Kind = "queue_join"
	KindQueueLeave     Kind = "queue_leave"
	KindMatchResult    Kind = "match_result"
	KindDisconnect     Kind = "player_disconnect"
)

// ShotAttempt is a client-reported shot awaiting validation.
// ClientTS is the client-claimed fire time; it is untrusted telemetry
// and never used for ordering or rate limiting.
type ShotAttempt struct {
	Position   Vec2       `json:"position"`
	Trajectory Trajectory `json:"trajectory"`
	ClientTS   int64      `json:"client_ts,omitempty"`
}

// PositionUpdate carries a movement state sample plus the latest ping.
type PositionUpdate struct {
	Position Vec3 `json:"position"`
	Rotation Vec3 `json:"rotation"`
	Velocity Vec3 `json:"velocity"`
	Ping     int  `json:"ping"`
}

// QueueJoin asks matchmaking to enqueue the player.
type QueueJoin struct {
	Mode        string `json:"mode"`
	MaxWaitTime int64  `json:"max_wait_time_ms,omitempty"`
}

// QueueLeave removes the player from one mode queue, or all when Mode is empty.
type QueueLeave struct {
	Mode string `json:"mode,omitempty"`
}

// MatchResult reports a finished match for rating updates.
type MatchResult struct {
	WinnerID string `json:"winner_id"`
	LoserID  string `json:"loser_id"`
}

// Envelope is the tagged variant for all inbound events. Exactly one payload
// pointer matching Kind must be set; Validate enforces this at the boundary
// so malformed events never reach the core.
type Envelope struct {
	EventID    string `json:"event_id"`
	Kind       Kind   `json:"kind"`
	PlayerID   string `json:"player_id"`
	ReceivedAt int64  `json:"-"` // server receipt time, ms; stamped by the ingest layer

	Shot        *ShotAttempt    `json:"shot,omitempty"`
	Movement    *PositionUpdate `json:"movement,omitempty"`
	QueueJoin   *QueueJoin      `json:"queue_join,omitempty"`
	QueueLeave  *QueueLeave     `json:"queue_leave,omitempty"`
	MatchResult *MatchResult    `json:"match_result,omitempty"`
}

// Validate checks the envelope shape and payload numerics.
func (e *Envelope) Validate() error {
	if e.PlayerID == "" && e.Kind != KindMatchResult {
		return fmt.Errorf("%w: missing player_id", ErrMalformedEvent)
	}
	switch e.Kind {
	case KindShotAttempt:
		if e.Shot == nil {
			return fmt.Errorf("%w: %s requires shot payload", ErrMissingPayload, e.Kind)
		}
		if !e.Shot.Position.Finite() || !e.Shot.Trajectory.Finite() {
			return fmt.Errorf("%w: non-finite shot coordinates", ErrMalformedEvent)
		}
		if e.Shot.ClientTS < 0 {
			return fmt.Errorf("%w: negative client timestamp", ErrMalformedEvent)
		}
	case KindPositionUpdate:
		if e.Movement == nil {
			return fmt.Errorf("%w: %s requires movement payload", ErrMissingPayload, e.Kind)
		}
		m := e.Movement
		if !m.Position.Finite() || !m.Rotation.Finite() || !m.Velocity.Finite() {
			return fmt.Errorf("%w: non-finite movement coordinates", ErrMalformedEvent)
		}
		if m.Ping < 0 {
			return fmt.Errorf("%w: negative ping", ErrMalformedEvent)
		}
	case KindQueueJoin:
		if e.QueueJoin == nil {
			return fmt.Errorf("%w: %s requires queue_join payload", ErrMissingPayload, e.Kind)
		}
		if e.QueueJoin.Mode == "" {
			return fmt.Errorf("%w: missing queue mode", ErrMalformedEvent)
		}
		if e.QueueJoin.MaxWaitTime < 0 {
			return fmt.Errorf("%w: negative max wait time", ErrMalformedEvent)
		}
	case KindQueueLeave:
		if e.QueueLeave == nil {
			return fmt.Errorf("%w: %s requires queue_leave payload", ErrMissingPayload, e.Kind)
		}
	case KindMatchResult:
		if e.MatchResult == nil {
			return fmt.Errorf("%w: %s requires match_result payload", ErrMissingPayload, e.Kind)
		}
		if e.MatchResult.WinnerID == "" || e.MatchResult.LoserID == "" {
			return fmt.Errorf("%w: match result requires both player ids", ErrMalformedEvent)
		}
		if e.MatchResult.WinnerID == e.MatchResult.LoserID {
			return fmt.Errorf("%w: winner and loser must differ", ErrMalformedEvent)
		}
	case KindDisconnect:
		// No payload beyond PlayerID.
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return nil
}

// MovementState is a server-stamped movement sample stored for lag
// compensation. Timestamp is server receipt time in milliseconds; samples
// are read-only once written.
type MovementState struct {
	PlayerID  string `json:"player_id"`
	Position  Vec3   `json:"position"`
	Rotation  Vec3   `json:"rotation"`
	Velocity  Vec3   `json:"velocity"`
	Timestamp int64  `json:"timestamp"`
	Ping      int    `json:"ping"`
}
