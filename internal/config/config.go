// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults and Load to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of event dispatch workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the event deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the rating store.
	ShardCount int `koanf:"shard_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxShotsPerSecond bounds each player's fire rate.
	MaxShotsPerSecond int `koanf:"max_shots_per_second"`

	// MaxTrajectoryDistance bounds plausible bullet travel in world units.
	MaxTrajectoryDistance float64 `koanf:"max_trajectory_distance"`

	// MaxPlayerSpeed bounds movement between shots, units per second.
	MaxPlayerSpeed float64 `koanf:"max_player_speed"`

	// MovementHistorySize caps stored movement samples per player.
	MovementHistorySize int `koanf:"movement_history_size"`

	// PingWindowSize sets the trailing ping sample window.
	PingWindowSize int `koanf:"ping_window_size"`

	// InterpolationDelayMS sets the render-behind delay.
	InterpolationDelayMS int64 `koanf:"interpolation_delay_ms"`

	// CheatSweepIntervalMS sets how often the heuristics sweep runs.
	CheatSweepIntervalMS int64 `koanf:"cheat_sweep_interval_ms"`

	// MatchIntervalMS sets how often each mode queue is scanned.
	MatchIntervalMS int64 `koanf:"match_interval_ms"`

	// BaseRating is seeded for players without a rating record.
	BaseRating float64 `koanf:"base_rating"`

	// EloKFactor scales rating movement per match.
	EloKFactor float64 `koanf:"elo_k_factor"`

	// MaxQueueWaitMS sets the wait after which the matchmaking search
	// range stops widening.
	MaxQueueWaitMS int64 `koanf:"max_queue_wait_ms"`

	// GameModes lists the modes queues are opened for.
	GameModes []string `koanf:"game_modes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		EventQueueSize:        100_000,
		WorkerCount:           runtime.NumCPU() * 4,
		DedupeSize:            500_000,
		ShardCount:            16,
		MaxLeaderboardLimit:   100,
		MaxShotsPerSecond:     15,
		MaxTrajectoryDistance: 1000,
		MaxPlayerSpeed:        500,
		MovementHistorySize:   1000,
		PingWindowSize:        10,
		InterpolationDelayMS:  100,
		CheatSweepIntervalMS:  60_000,
		MatchIntervalMS:       2_000,
		BaseRating:            1000,
		EloKFactor:            32,
		MaxQueueWaitMS:        30_000,
		GameModes:             []string{"deathmatch", "team_deathmatch"},
	}
}
