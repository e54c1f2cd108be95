package model

// OutboundKind tags an event produced for the room-management collaborator.
type OutboundKind string

// Outbound event kinds.
const (
	OutShotResult    OutboundKind = "shot_result"
	OutMatchFound    OutboundKind = "match_found"
	OutQueueStatus   OutboundKind = "queue_status"
	OutRatingsUpdate OutboundKind = "ratings_update"
	OutCheatAlert    OutboundKind = "cheat_alert"
)

// ShotResult reflects a validation decision back to the originating client.
// Rejections are not broadcast to other clients.
type ShotResult struct {
	PlayerID string `json:"player_id"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// MatchFound announces a paired match to room management.
type MatchFound struct {
	MatchID   string `json:"match_id"`
	Player1ID string `json:"player1_id"`
	Player2ID string `json:"player2_id"`
	Mode      string `json:"mode"`
	MatchTime int64  `json:"match_time"`
}

// QueueStatus summarizes one mode's matchmaking queue.
type QueueStatus struct {
	Mode              string `json:"mode"`
	PlayersWaiting    int    `json:"players_waiting"`
	AverageWaitTime   int64  `json:"average_wait_time_ms"`
	EstimatedWaitTime int64  `json:"estimated_wait_time_ms"`
}

// CheatAlert surfaces an advisory heuristic finding to moderation. Alerts
// never block or reject play on their own.
type CheatAlert struct {
	PlayerID string `json:"player_id"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail"`
}

// RatingsUpdate carries post-match rating deltas for the reward collaborator.
type RatingsUpdate struct {
	WinnerID        string `json:"winner_id"`
	LoserID         string `json:"loser_id"`
	WinnerNewRating int    `json:"winner_new_rating"`
	LoserNewRating  int    `json:"loser_new_rating"`
}

// Outbound is the tagged variant for all events emitted by the core.
type Outbound struct {
	Kind          OutboundKind   `json:"kind"`
	ShotResult    *ShotResult    `json:"shot_result,omitempty"`
	MatchFound    *MatchFound    `json:"match_found,omitempty"`
	QueueStatus   *QueueStatus   `json:"queue_status,omitempty"`
	RatingsUpdate *RatingsUpdate `json:"ratings_update,omitempty"`
	CheatAlert    *CheatAlert    `json:"cheat_alert,omitempty"`
}
