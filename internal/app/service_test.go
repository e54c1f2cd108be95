package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/vityaz/arena/internal/app"
	"github.com/vityaz/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// recordingBroadcaster captures outbound events for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []model.Outbound
}

func (b *recordingBroadcaster) Broadcast(ctx context.Context, out model.Outbound) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, out)
}

func (b *recordingBroadcaster) byKind(kind model.OutboundKind) []model.Outbound {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.Outbound
	for _, e := range b.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func startService(t *testing.T, opts ...service.Option) (*service.Service, *recordingBroadcaster) {
	t.Helper()
	b := &recordingBroadcaster{}
	opts = append(opts,
		service.WithWorkerCount(2),
		service.WithBroadcaster(b),
	)
	s := service.New(opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(s.Stop)
	return s, b
}

func shotEnvelope(id, playerID string, endX float64) model.Envelope {
	return model.Envelope{
		EventID:  id,
		Kind:     model.KindShotAttempt,
		PlayerID: playerID,
		Shot: &model.ShotAttempt{
			Trajectory: model.Trajectory{EndX: endX},
		},
	}
}

func TestDispatch(t *testing.T) {
	Convey("Given a running service", t, func() {
		s, b := startService(t)
		ctx := context.Background()

		Convey("A shot attempt produces a shot result broadcast", func() {
			e := shotEnvelope("e1", "p1", 50)
			e.ReceivedAt = 1000
			So(s.Dispatch(ctx, e), ShouldBeNil)

			results := b.byKind(model.OutShotResult)
			So(results, ShouldHaveLength, 1)
			So(results[0].ShotResult.PlayerID, ShouldEqual, "p1")
			So(results[0].ShotResult.Accepted, ShouldBeTrue)
		})

		Convey("An implausible shot is rejected in the result", func() {
			e := shotEnvelope("e1", "p1", 5000)
			e.ReceivedAt = 1000
			So(s.Dispatch(ctx, e), ShouldBeNil)

			results := b.byKind(model.OutShotResult)
			So(results, ShouldHaveLength, 1)
			So(results[0].ShotResult.Accepted, ShouldBeFalse)
			So(results[0].ShotResult.Reason, ShouldEqual, "impossible_trajectory")
		})

		Convey("A position update lands in the movement history", func() {
			e := model.Envelope{
				EventID:  "e1",
				Kind:     model.KindPositionUpdate,
				PlayerID: "p1",
				Movement: &model.PositionUpdate{
					Position: model.Vec3{X: 10},
					Ping:     40,
				},
				ReceivedAt: 1000,
			}
			So(s.Dispatch(ctx, e), ShouldBeNil)
			stats := s.GetStats(ctx)
			So(stats["moving_players"], ShouldEqual, 1)
		})

		Convey("A match result broadcasts updated ratings", func() {
			e := model.Envelope{
				EventID: "e1",
				Kind:    model.KindMatchResult,
				MatchResult: &model.MatchResult{
					WinnerID: "w",
					LoserID:  "l",
				},
			}
			So(s.Dispatch(ctx, e), ShouldBeNil)

			updates := b.byKind(model.OutRatingsUpdate)
			So(updates, ShouldHaveLength, 1)
			So(updates[0].RatingsUpdate.WinnerNewRating, ShouldEqual, 1016)
			So(updates[0].RatingsUpdate.LoserNewRating, ShouldEqual, 984)
		})

		Convey("A disconnect clears every per-player store", func() {
			shot := shotEnvelope("e1", "p1", 50)
			shot.ReceivedAt = 1000
			So(s.Dispatch(ctx, shot), ShouldBeNil)

			disconnect := model.Envelope{
				EventID:  "e2",
				Kind:     model.KindDisconnect,
				PlayerID: "p1",
			}
			So(s.Dispatch(ctx, disconnect), ShouldBeNil)
			stats := s.GetStats(ctx)
			So(stats["tracked_players"], ShouldEqual, 0)
		})

		Convey("A join for an unknown mode surfaces a hard error", func() {
			e := model.Envelope{
				EventID:   "e1",
				Kind:      model.KindQueueJoin,
				PlayerID:  "p1",
				QueueJoin: &model.QueueJoin{Mode: "battle_royale"},
			}
			So(s.Dispatch(ctx, e), ShouldNotBeNil)
		})
	})
}

func TestIngest(t *testing.T) {
	Convey("Given a running service", t, func() {
		s, _ := startService(t)
		ctx := context.Background()

		Convey("A malformed envelope is rejected at the boundary", func() {
			e := model.Envelope{EventID: "e1", Kind: model.KindShotAttempt, PlayerID: "p1"}
			ok, err := s.Ingest(ctx, e)
			So(ok, ShouldBeFalse)
			So(err, ShouldNotBeNil)
		})

		Convey("A duplicate event id is swallowed", func() {
			e := model.Envelope{EventID: "e1", Kind: model.KindDisconnect, PlayerID: "p1"}
			ok, err := s.Ingest(ctx, e)
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)

			ok, err = s.Ingest(ctx, e)
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)
		})
	})
}

func TestMatchLoop(t *testing.T) {
	Convey("Given a service scanning queues frequently", t, func() {
		s, b := startService(t, service.WithMatchInterval(20*time.Millisecond))
		ctx := context.Background()

		Convey("Two queued players get matched and broadcast", func() {
			for _, id := range []string{"p1", "p2"} {
				e := model.Envelope{
					EventID:   "join-" + id,
					Kind:      model.KindQueueJoin,
					PlayerID:  id,
					QueueJoin: &model.QueueJoin{Mode: "deathmatch"},
				}
				So(s.Dispatch(ctx, e), ShouldBeNil)
			}

			deadline := time.Now().Add(2 * time.Second)
			for len(b.byKind(model.OutMatchFound)) == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}

			matches := b.byKind(model.OutMatchFound)
			So(matches, ShouldNotBeEmpty)
			found := matches[0].MatchFound
			So(found.Mode, ShouldEqual, "deathmatch")
			So(found.Player1ID, ShouldNotEqual, found.Player2ID)
		})

		Convey("Queue status is broadcast on the same cadence", func() {
			deadline := time.Now().Add(2 * time.Second)
			for len(b.byKind(model.OutQueueStatus)) == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			So(b.byKind(model.OutQueueStatus), ShouldNotBeEmpty)
		})
	})
}

func TestSweepLoop(t *testing.T) {
	Convey("Given a service sweeping frequently", t, func() {
		s, b := startService(t, service.WithSweepInterval(20*time.Millisecond))
		ctx := context.Background()

		Convey("A repetitive aim pattern surfaces as a cheat alert", func() {
			// Five shots with identical trajectories, spaced inside the
			// retention horizon.
			now := time.Now().UnixMilli()
			for i := 0; i < 5; i++ {
				e := shotEnvelope(fmt.Sprintf("aim-%d", i), "p1", 50)
				e.ReceivedAt = now + int64(i)*100
				So(s.Dispatch(ctx, e), ShouldBeNil)
			}

			deadline := time.Now().Add(2 * time.Second)
			for len(b.byKind(model.OutCheatAlert)) == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}

			alerts := b.byKind(model.OutCheatAlert)
			So(alerts, ShouldNotBeEmpty)
			So(alerts[0].CheatAlert.PlayerID, ShouldEqual, "p1")
			So(alerts[0].CheatAlert.Kind, ShouldEqual, "suspicious_aim_pattern")
			So(alerts[0].CheatAlert.Detail, ShouldNotBeEmpty)
		})

		Convey("Varied fire raises no alert", func() {
			now := time.Now().UnixMilli()
			for i := 0; i < 5; i++ {
				e := shotEnvelope(fmt.Sprintf("ok-%d", i), "p2", 50)
				// Alternate the trajectory so consecutive angles diverge.
				if i%2 == 0 {
					e.Shot.Trajectory.EndY = 100
				} else {
					e.Shot.Trajectory.EndY = -100
				}
				e.ReceivedAt = now + int64(i)*100
				So(s.Dispatch(ctx, e), ShouldBeNil)
			}

			time.Sleep(100 * time.Millisecond)
			So(b.byKind(model.OutCheatAlert), ShouldBeEmpty)
		})
	})
}

func TestEndToEnd(t *testing.T) {
	Convey("Given a running service", t, func() {
		s, b := startService(t)
		ctx := context.Background()

		Convey("An ingested shot flows through the queue to a broadcast", func() {
			ok, err := s.Ingest(ctx, shotEnvelope("e2e-1", "p1", 50))
			So(ok, ShouldBeTrue)
			So(err, ShouldBeNil)

			deadline := time.Now().Add(2 * time.Second)
			for len(b.byKind(model.OutShotResult)) == 0 && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}
			results := b.byKind(model.OutShotResult)
			So(results, ShouldHaveLength, 1)
			So(results[0].ShotResult.Accepted, ShouldBeTrue)
		})
	})
}
