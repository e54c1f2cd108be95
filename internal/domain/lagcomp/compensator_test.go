package lagcomp_test

import (
	"context"
	"math"
	"testing"

	"github.com/vityaz/arena/internal/domain/lagcomp"
	"github.com/vityaz/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleAt(playerID string, ts int64, x float64) model.MovementState {
	return model.MovementState{
		PlayerID:  playerID,
		Position:  model.Vec3{X: x},
		Timestamp: ts,
	}
}

func TestStateAt(t *testing.T) {
	Convey("Given a compensator with three movement samples", t, func() {
		c := lagcomp.NewInMemoryCompensator()
		ctx := context.Background()
		c.Record(ctx, sampleAt("p1", 100, 1))
		c.Record(ctx, sampleAt("p1", 200, 2))
		c.Record(ctx, sampleAt("p1", 300, 3))

		Convey("An exact timestamp returns that sample", func() {
			st, ok := c.StateAt(ctx, "p1", 200)
			So(ok, ShouldBeTrue)
			So(st.Position.X, ShouldEqual, 2)
		})

		Convey("A timestamp between samples returns the nearest", func() {
			st, ok := c.StateAt(ctx, "p1", 230)
			So(ok, ShouldBeTrue)
			So(st.Position.X, ShouldEqual, 2)
		})

		Convey("An equidistant timestamp prefers the earlier sample", func() {
			st, ok := c.StateAt(ctx, "p1", 250)
			So(ok, ShouldBeTrue)
			So(st.Position.X, ShouldEqual, 2)
		})

		Convey("Timestamps outside the window clamp to the edges", func() {
			st, _ := c.StateAt(ctx, "p1", 0)
			So(st.Position.X, ShouldEqual, 1)
			st, _ = c.StateAt(ctx, "p1", 9999)
			So(st.Position.X, ShouldEqual, 3)
		})

		Convey("An unknown player returns no state", func() {
			_, ok := c.StateAt(ctx, "ghost", 200)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestInterpolatedState(t *testing.T) {
	Convey("Given a compensator with a zero interpolation delay", t, func() {
		c := lagcomp.NewInMemoryCompensator(lagcomp.WithInterpolationDelay(0))
		ctx := context.Background()
		before := model.MovementState{
			PlayerID:  "p1",
			Position:  model.Vec3{X: 0, Y: 10},
			Rotation:  model.Vec3{Z: 1.0},
			Velocity:  model.Vec3{X: 5},
			Timestamp: 1000,
		}
		after := model.MovementState{
			PlayerID:  "p1",
			Position:  model.Vec3{X: 100, Y: 30},
			Rotation:  model.Vec3{Z: 2.0},
			Velocity:  model.Vec3{X: 15},
			Timestamp: 2000,
		}
		c.Record(ctx, before)
		c.Record(ctx, after)

		Convey("At the earlier sample's timestamp it returns that sample", func() {
			st, ok := c.InterpolatedState(ctx, "p1", 1000)
			So(ok, ShouldBeTrue)
			So(st.Position, ShouldResemble, before.Position)
			So(st.Rotation, ShouldResemble, before.Rotation)
		})

		Convey("At the later sample's timestamp it returns that sample", func() {
			st, ok := c.InterpolatedState(ctx, "p1", 2000)
			So(ok, ShouldBeTrue)
			So(st.Position, ShouldResemble, after.Position)
		})

		Convey("At the midpoint the position is the arithmetic mean", func() {
			st, ok := c.InterpolatedState(ctx, "p1", 1500)
			So(ok, ShouldBeTrue)
			So(st.Position.X, ShouldAlmostEqual, 50)
			So(st.Position.Y, ShouldAlmostEqual, 20)
			So(st.Velocity.X, ShouldAlmostEqual, 10)
			So(st.Timestamp, ShouldEqual, 1500)
		})

		Convey("Before all samples it returns the oldest verbatim", func() {
			st, ok := c.InterpolatedState(ctx, "p1", 500)
			So(ok, ShouldBeTrue)
			So(st.Position, ShouldResemble, before.Position)
		})

		Convey("With no history it returns nothing", func() {
			_, ok := c.InterpolatedState(ctx, "ghost", 1500)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given the default 100ms interpolation delay", t, func() {
		c := lagcomp.NewInMemoryCompensator()
		ctx := context.Background()
		c.Record(ctx, sampleAt("p1", 1000, 0))
		c.Record(ctx, sampleAt("p1", 1200, 100))

		Convey("The lookup target is shifted back by the delay", func() {
			// now=1200 targets t=1100, halfway between the samples.
			st, ok := c.InterpolatedState(ctx, "p1", 1200)
			So(ok, ShouldBeTrue)
			So(st.Position.X, ShouldAlmostEqual, 50)
		})
	})
}

func TestRotationWrap(t *testing.T) {
	Convey("Given samples whose rotation crosses the pi boundary", t, func() {
		c := lagcomp.NewInMemoryCompensator(lagcomp.WithInterpolationDelay(0))
		ctx := context.Background()
		c.Record(ctx, model.MovementState{PlayerID: "p1", Rotation: model.Vec3{Z: 3.0}, Timestamp: 0})
		c.Record(ctx, model.MovementState{PlayerID: "p1", Rotation: model.Vec3{Z: -3.0}, Timestamp: 1000})

		Convey("Interpolation at the midpoint takes the short arc", func() {
			st, ok := c.InterpolatedState(ctx, "p1", 500)
			So(ok, ShouldBeTrue)
			// Short path from 3.0 to -3.0 passes through +/-pi, not zero.
			So(math.Abs(st.Rotation.Z), ShouldAlmostEqual, math.Pi, 1e-9)
		})
	})
}

func TestPredictPosition(t *testing.T) {
	Convey("Given a moving state", t, func() {
		st := model.MovementState{
			Position: model.Vec3{X: 10, Y: 20, Z: 30},
			Velocity: model.Vec3{X: 100, Y: -50, Z: 0},
		}

		Convey("Dead reckoning advances position by velocity", func() {
			pos := lagcomp.PredictPosition(st, 500)
			So(pos.X, ShouldAlmostEqual, 60)
			So(pos.Y, ShouldAlmostEqual, -5)
			So(pos.Z, ShouldAlmostEqual, 30)
		})

		Convey("A zero delta returns the position unchanged", func() {
			So(lagcomp.PredictPosition(st, 0), ShouldResemble, st.Position)
		})
	})
}

func TestPingWindow(t *testing.T) {
	Convey("Given a compensator tracking ping", t, func() {
		c := lagcomp.NewInMemoryCompensator()
		ctx := context.Background()

		Convey("The average is the mean of the window, rounded", func() {
			So(c.UpdatePing(ctx, "p1", 50), ShouldEqual, 50)
			So(c.UpdatePing(ctx, "p1", 60), ShouldEqual, 55)
			So(c.UpdatePing(ctx, "p1", 65), ShouldEqual, 58)
		})

		Convey("The window holds only the trailing ten samples", func() {
			for i := 0; i < 10; i++ {
				c.UpdatePing(ctx, "p1", 100)
			}
			// An eleventh sample evicts one of the 100s.
			So(c.UpdatePing(ctx, "p1", 0), ShouldEqual, 90)
		})

		Convey("An unknown player averages to zero", func() {
			So(c.AveragePing(ctx, "ghost"), ShouldEqual, 0)
		})
	})
}

func TestReconcile(t *testing.T) {
	Convey("Given a compensator with the default snap threshold", t, func() {
		c := lagcomp.NewInMemoryCompensator()
		truth := model.MovementState{
			Position: model.Vec3{X: 100},
			Rotation: model.Vec3{Z: 1.5},
			Velocity: model.Vec3{X: 10},
		}

		Convey("A large prediction error snaps to server truth", func() {
			predicted := model.MovementState{Position: model.Vec3{X: 110}}
			So(c.Reconcile(predicted, truth), ShouldResemble, truth)
		})

		Convey("A small error blends strictly between the positions", func() {
			predicted := model.MovementState{Position: model.Vec3{X: 96}}
			out := c.Reconcile(predicted, truth)
			So(out.Position.X, ShouldBeGreaterThan, 96)
			So(out.Position.X, ShouldBeLessThan, 100)

			Convey("And server rotation and velocity are preserved", func() {
				So(out.Rotation, ShouldResemble, truth.Rotation)
				So(out.Velocity, ShouldResemble, truth.Velocity)
			})
		})

		Convey("A perfect prediction returns truth unchanged", func() {
			predicted := model.MovementState{Position: model.Vec3{X: 100}}
			So(c.Reconcile(predicted, truth), ShouldResemble, truth)
		})
	})

	Convey("Given a larger frame time", t, func() {
		c := lagcomp.NewInMemoryCompensator(lagcomp.WithFrameTime(0.1))
		truth := model.MovementState{Position: model.Vec3{X: 100}}

		Convey("The blend factor scales with frame time", func() {
			// distance 4, factor = 10 * 0.1 / 4 = 0.25
			predicted := model.MovementState{Position: model.Vec3{X: 96}}
			out := c.Reconcile(predicted, truth)
			So(out.Position.X, ShouldAlmostEqual, 97)
		})
	})
}

func TestClearAndTracking(t *testing.T) {
	Convey("Given a compensator with two tracked players", t, func() {
		c := lagcomp.NewInMemoryCompensator()
		ctx := context.Background()
		c.Record(ctx, sampleAt("p1", 100, 1))
		c.Record(ctx, sampleAt("p2", 100, 1))
		So(c.TrackedPlayers(ctx), ShouldEqual, 2)

		Convey("Clearing a player drops history and ping samples", func() {
			c.UpdatePing(ctx, "p1", 50)
			c.Clear(ctx, "p1")
			So(c.TrackedPlayers(ctx), ShouldEqual, 1)
			So(c.SampleCount(ctx, "p1"), ShouldEqual, 0)
			So(c.AveragePing(ctx, "p1"), ShouldEqual, 0)
		})

		Convey("A ping-only player is not counted as tracked", func() {
			c.UpdatePing(ctx, "spectator", 40)
			So(c.TrackedPlayers(ctx), ShouldEqual, 2)
			So(c.SampleCount(ctx, "spectator"), ShouldEqual, 0)
			_, ok := c.StateAt(ctx, "spectator", 100)
			So(ok, ShouldBeFalse)
			_, ok = c.InterpolatedState(ctx, "spectator", 100)
			So(ok, ShouldBeFalse)

			Convey("Until a movement sample arrives", func() {
				c.Record(ctx, sampleAt("spectator", 100, 1))
				So(c.TrackedPlayers(ctx), ShouldEqual, 3)
				So(c.AveragePing(ctx, "spectator"), ShouldEqual, 40)
			})
		})

		Convey("History is bounded by the configured capacity", func() {
			small := lagcomp.NewInMemoryCompensator(lagcomp.WithHistoryCapacity(3))
			for i := 0; i < 10; i++ {
				small.Record(ctx, sampleAt("p1", int64(i), float64(i)))
			}
			So(small.SampleCount(ctx, "p1"), ShouldEqual, 3)
			st, _ := small.StateAt(ctx, "p1", 0)
			So(st.Position.X, ShouldEqual, 7)
		})
	})
}
