// Package service wires the combat, lag compensation, and matchmaking
// components behind the dependencies the HTTP API needs.
package service

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/vityaz/arena/internal/adapters/mq/queue"
	workerpool "github.com/vityaz/arena/internal/adapters/mq/worker"
	"github.com/vityaz/arena/internal/adapters/repository"
	"github.com/vityaz/arena/internal/domain/combat"
	"github.com/vityaz/arena/internal/domain/dedupe"
	"github.com/vityaz/arena/internal/domain/lagcomp"
	"github.com/vityaz/arena/internal/domain/matchmaking"
	"github.com/vityaz/arena/internal/domain/model"
	"github.com/vityaz/arena/pkg/logger"
	"github.com/vityaz/arena/pkg/metrics"
)

// Broadcaster delivers outbound events to the room-management layer.
type Broadcaster interface {
	Broadcast(ctx context.Context, out model.Outbound)
}

// logBroadcaster is the default sink when no room layer is attached.
type logBroadcaster struct {
	log logger.Logger
}

func (b *logBroadcaster) Broadcast(ctx context.Context, out model.Outbound) {
	b.log.Debug(ctx, "outbound event", logger.String("kind", string(out.Kind)), logger.Any("event", out))
}

// Service implements the API dependencies for the arena core.
type Service struct {
	mu sync.RWMutex

	// Core components
	validator   combat.Validator
	compensator lagcomp.Compensator
	finder      matchmaking.Finder
	ratings     *repository.ShardedStore
	deduper     dedupe.Deduper
	eventQueue  eventqueue.Queue
	workers     []*workerpool.InMemoryWorker
	broadcaster Broadcaster

	// Configuration
	workerCount        int
	queueSize          int
	dedupeSize         int
	shardCount         int
	maxShotsPerSecond  int
	maxTrajectoryDist  float64
	maxPlayerSpeed     float64
	movementHistory    int
	pingWindow         int
	interpolationDelay int64
	sweepInterval      time.Duration
	matchInterval      time.Duration
	baseRating         float64
	kFactor            float64
	maxQueueWait       int64
	modes              []string

	// State
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	logger logger.Logger
	now    func() int64
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU() * 4,
		queueSize:          100_000,
		dedupeSize:         500_000,
		shardCount:         16,
		maxShotsPerSecond:  15,
		maxTrajectoryDist:  1000,
		maxPlayerSpeed:     500,
		movementHistory:    1000,
		pingWindow:         10,
		interpolationDelay: 100,
		sweepInterval:      60 * time.Second,
		matchInterval:      2 * time.Second,
		baseRating:         1000,
		kFactor:            32,
		maxQueueWait:       30_000,
		modes:              matchmaking.DefaultModes,
		stopCh:             make(chan struct{}),
		now:                func() int64 { return time.Now().UnixMilli() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.broadcaster == nil {
		s.broadcaster = &logBroadcaster{log: s.logger.Named("broadcast")}
	}

	s.logger.Info(ctx, "starting arena core...")

	s.ratings = repository.NewShardedStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewRing(s.dedupeSize)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.validator = combat.NewInMemoryValidator(
		combat.WithMaxShotsPerSecond(s.maxShotsPerSecond),
		combat.WithMaxTrajectoryDistance(s.maxTrajectoryDist),
		combat.WithMaxSpeed(s.maxPlayerSpeed),
	)
	s.compensator = lagcomp.NewInMemoryCompensator(
		lagcomp.WithHistoryCapacity(s.movementHistory),
		lagcomp.WithPingWindowSize(s.pingWindow),
		lagcomp.WithInterpolationDelay(s.interpolationDelay),
	)
	s.finder = matchmaking.NewInMemoryFinder(s.ratings,
		matchmaking.WithModes(s.modes),
		matchmaking.WithBaseRating(s.baseRating),
		matchmaking.WithKFactor(s.kFactor),
		matchmaking.WithMaxWaitTime(s.maxQueueWait),
	)

	s.workers = make([]*workerpool.InMemoryWorker, 0, s.workerCount)
	for i := 0; i < s.workerCount; i++ {
		w := workerpool.NewInMemoryWorker(s.eventQueue, s)
		s.workers = append(s.workers, w)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.Run(ctx)
		}()
	}
	metrics.UpdateWorkerActiveCount(s.workerCount)

	s.startSweepLoop(ctx)
	s.startMatchLoop(ctx)

	s.started = true
	s.logger.Info(ctx, "arena core started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Any("modes", s.modes),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping arena core...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, w := range s.workers {
		_ = w.Shutdown(shutdownCtx)
	}
	s.wg.Wait()

	if s.ratings != nil {
		s.ratings.Close()
	}

	s.started = false
	s.logger.Info(ctx, "arena core stopped")
}

// Ingest validates, deduplicates, stamps, and enqueues one inbound event.
// It reports whether the event was accepted for processing; duplicates
// are accepted silently.
func (s *Service) Ingest(ctx context.Context, e model.Envelope) (bool, error) {
	if err := e.Validate(); err != nil {
		metrics.RecordEventRejected()
		return false, err
	}
	if s.deduper.SeenAndRecord(e.EventID) {
		metrics.RecordEventDuplicate()
		s.logger.Debug(ctx, "duplicate event skipped", logger.String("event_id", e.EventID))
		return true, nil
	}
	e.ReceivedAt = s.now()
	return s.eventQueue.Enqueue(ctx, e), nil
}

// Dispatch routes one validated event to the owning component. It is the
// worker.Dispatcher implementation.
func (s *Service) Dispatch(ctx context.Context, e model.Envelope) error {
	switch e.Kind {
	case model.KindShotAttempt:
		verdict := s.validator.Validate(ctx, e.PlayerID, e.Shot.Position, e.Shot.Trajectory, e.ReceivedAt)
		s.broadcaster.Broadcast(ctx, model.Outbound{
			Kind: model.OutShotResult,
			ShotResult: &model.ShotResult{
				PlayerID: e.PlayerID,
				Accepted: verdict.Accepted,
				Reason:   string(verdict.Reason),
			},
		})
		return nil

	case model.KindPositionUpdate:
		m := e.Movement
		s.compensator.Record(ctx, model.MovementState{
			PlayerID:  e.PlayerID,
			Position:  m.Position,
			Rotation:  m.Rotation,
			Velocity:  m.Velocity,
			Timestamp: e.ReceivedAt,
			Ping:      m.Ping,
		})
		s.compensator.UpdatePing(ctx, e.PlayerID, m.Ping)
		return nil

	case model.KindQueueJoin:
		return s.finder.Enqueue(ctx, e.PlayerID, e.QueueJoin.Mode, e.QueueJoin.MaxWaitTime)

	case model.KindQueueLeave:
		return s.finder.Dequeue(ctx, e.PlayerID, e.QueueLeave.Mode)

	case model.KindMatchResult:
		upd, err := s.finder.RecordResult(ctx, e.MatchResult.WinnerID, e.MatchResult.LoserID)
		if err != nil {
			return err
		}
		s.broadcaster.Broadcast(ctx, model.Outbound{
			Kind: model.OutRatingsUpdate,
			RatingsUpdate: &model.RatingsUpdate{
				WinnerID:        e.MatchResult.WinnerID,
				LoserID:         e.MatchResult.LoserID,
				WinnerNewRating: int(math.Round(upd.WinnerNewRating)),
				LoserNewRating:  int(math.Round(upd.LoserNewRating)),
			},
		})
		return nil

	case model.KindDisconnect:
		s.validator.Clear(ctx, e.PlayerID)
		s.compensator.Clear(ctx, e.PlayerID)
		s.finder.Clear(ctx, e.PlayerID)
		return nil

	default:
		return model.ErrUnknownKind
	}
}

// startSweepLoop runs the periodic cheat heuristics sweep: expired shot
// history is evicted first, then every surviving window is scanned and
// findings are surfaced to moderation.
func (s *Service) startSweepLoop(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				dropped, removed := s.validator.Sweep(ctx)
				metrics.UpdateTrackedPlayers(s.validator.TrackedPlayers(ctx))
				if dropped > 0 || removed > 0 {
					s.logger.Debug(ctx, "shot history sweep",
						logger.Int("dropped", dropped),
						logger.Int("removed", removed))
				}
				s.scanHeuristics(ctx)
			}
		}
	}()
}

// scanHeuristics runs the advisory cheat heuristics over every player with
// retained shot history and broadcasts findings as cheat alerts.
func (s *Service) scanHeuristics(ctx context.Context) {
	for _, id := range s.validator.PlayerIDs(ctx) {
		for _, f := range s.validator.Scan(ctx, id) {
			s.logger.Warn(ctx, "cheat heuristic flagged player",
				logger.String("player_id", f.PlayerID),
				logger.String("kind", string(f.Kind)),
				logger.String("detail", f.Detail))
			s.broadcaster.Broadcast(ctx, model.Outbound{
				Kind: model.OutCheatAlert,
				CheatAlert: &model.CheatAlert{
					PlayerID: f.PlayerID,
					Kind:     string(f.Kind),
					Detail:   f.Detail,
				},
			})
		}
	}
}

// startMatchLoop scans every mode queue on a fixed cadence and broadcasts
// found matches and queue status.
func (s *Service) startMatchLoop(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.matchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.scanQueues(ctx)
			}
		}
	}()
}

func (s *Service) scanQueues(ctx context.Context) {
	for _, mode := range s.finder.Modes() {
		matches, err := s.finder.FindMatches(ctx, mode)
		if err != nil {
			s.logger.Error(ctx, "match scan failed", logger.String("mode", mode), logger.Error(err))
			continue
		}
		for _, m := range matches {
			s.broadcaster.Broadcast(ctx, model.Outbound{
				Kind: model.OutMatchFound,
				MatchFound: &model.MatchFound{
					MatchID:   m.MatchID,
					Player1ID: m.Player1ID,
					Player2ID: m.Player2ID,
					Mode:      m.Mode,
					MatchTime: m.MatchTime,
				},
			})
		}
		if status, err := s.finder.QueueStatus(ctx, mode); err == nil {
			s.broadcaster.Broadcast(ctx, model.Outbound{
				Kind:        model.OutQueueStatus,
				QueueStatus: &status,
			})
		}
	}
}

// Leaderboard returns the top rated players.
func (s *Service) Leaderboard(ctx context.Context, limit int) []model.RatingRecord {
	return s.finder.Leaderboard(ctx, limit)
}

// Rank returns a player's leaderboard rank and record.
func (s *Service) Rank(ctx context.Context, playerID string) (int, model.RatingRecord, error) {
	return s.ratings.Rank(ctx, playerID)
}

// QueueStatus reports queue depth and wait estimates for a mode.
func (s *Service) QueueStatus(ctx context.Context, mode string) (model.QueueStatus, error) {
	return s.finder.QueueStatus(ctx, mode)
}

// PlayerStats returns a player's rating record.
func (s *Service) PlayerStats(ctx context.Context, playerID string) (model.RatingRecord, bool) {
	return s.finder.PlayerStats(ctx, playerID)
}

// Modes lists the configured game modes.
func (s *Service) Modes() []string {
	return s.finder.Modes()
}

// GetStats returns operational counters for the stats endpoint.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"tracked_players": s.validator.TrackedPlayers(ctx),
		"moving_players":  s.compensator.TrackedPlayers(ctx),
		"rated_players":   s.ratings.Count(ctx),
		"queue_len":       s.eventQueue.Len(ctx),
		"worker_count":    s.workerCount,
		"modes":           s.Modes(),
	}
}
