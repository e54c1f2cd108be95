package service

import (
	"time"

	"github.com/vityaz/arena/internal/config"
	"github.com/vityaz/arena/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig applies every relevant knob from a loaded Config.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		if cfg.WorkerCount > 0 {
			s.workerCount = cfg.WorkerCount
		}
		if cfg.EventQueueSize > 0 {
			s.queueSize = cfg.EventQueueSize
		}
		if cfg.DedupeSize > 0 {
			s.dedupeSize = cfg.DedupeSize
		}
		if cfg.ShardCount > 0 {
			s.shardCount = cfg.ShardCount
		}
		if cfg.MaxShotsPerSecond > 0 {
			s.maxShotsPerSecond = cfg.MaxShotsPerSecond
		}
		if cfg.MaxTrajectoryDistance > 0 {
			s.maxTrajectoryDist = cfg.MaxTrajectoryDistance
		}
		if cfg.MaxPlayerSpeed > 0 {
			s.maxPlayerSpeed = cfg.MaxPlayerSpeed
		}
		if cfg.MovementHistorySize > 0 {
			s.movementHistory = cfg.MovementHistorySize
		}
		if cfg.PingWindowSize > 0 {
			s.pingWindow = cfg.PingWindowSize
		}
		if cfg.InterpolationDelayMS >= 0 {
			s.interpolationDelay = cfg.InterpolationDelayMS
		}
		if cfg.CheatSweepIntervalMS > 0 {
			s.sweepInterval = time.Duration(cfg.CheatSweepIntervalMS) * time.Millisecond
		}
		if cfg.MatchIntervalMS > 0 {
			s.matchInterval = time.Duration(cfg.MatchIntervalMS) * time.Millisecond
		}
		if cfg.BaseRating > 0 {
			s.baseRating = cfg.BaseRating
		}
		if cfg.EloKFactor > 0 {
			s.kFactor = cfg.EloKFactor
		}
		if cfg.MaxQueueWaitMS > 0 {
			s.maxQueueWait = cfg.MaxQueueWaitMS
		}
		if len(cfg.GameModes) > 0 {
			s.modes = cfg.GameModes
		}
	}
}

// WithWorkerCount sets the number of dispatch workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSweepInterval sets the cheat heuristics sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// WithMatchInterval sets the matchmaking scan cadence.
func WithMatchInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.matchInterval = d
		}
	}
}

// WithBroadcaster sets the outbound event sink.
func WithBroadcaster(b Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithClock overrides the receipt-time source.
func WithClock(now func() int64) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
