package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vityaz/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEnvelopeValidate(t *testing.T) {
	Convey("Given inbound event envelopes", t, func() {
		Convey("When validating a well-formed shot attempt", func() {
			env := &model.Envelope{
				EventID:  "e1",
				Kind:     model.KindShotAttempt,
				PlayerID: "p1",
				Shot: &model.ShotAttempt{
					Position:   model.Vec2{X: 1, Y: 2},
					Trajectory: model.Trajectory{StartX: 0, StartY: 0, EndX: 10, EndY: 0},
				},
			}
			So(env.Validate(), ShouldBeNil)
		})

		Convey("When the payload is missing", func() {
			env := &model.Envelope{Kind: model.KindShotAttempt, PlayerID: "p1"}
			err := env.Validate()
			So(errors.Is(err, model.ErrMissingPayload), ShouldBeTrue)
		})

		Convey("When coordinates are not finite", func() {
			env := &model.Envelope{
				Kind:     model.KindShotAttempt,
				PlayerID: "p1",
				Shot: &model.ShotAttempt{
					Position:   model.Vec2{X: math.NaN(), Y: 0},
					Trajectory: model.Trajectory{EndX: 1},
				},
			}
			err := env.Validate()
			So(errors.Is(err, model.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When the client timestamp is negative", func() {
			env := &model.Envelope{
				Kind:     model.KindShotAttempt,
				PlayerID: "p1",
				Shot: &model.ShotAttempt{
					Position: model.Vec2{},
					ClientTS: -5,
				},
			}
			So(errors.Is(env.Validate(), model.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When a movement update carries infinite velocity", func() {
			env := &model.Envelope{
				Kind:     model.KindPositionUpdate,
				PlayerID: "p1",
				Movement: &model.PositionUpdate{
					Velocity: model.Vec3{X: math.Inf(1)},
				},
			}
			So(errors.Is(env.Validate(), model.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When a queue join has no mode", func() {
			env := &model.Envelope{
				Kind:      model.KindQueueJoin,
				PlayerID:  "p1",
				QueueJoin: &model.QueueJoin{},
			}
			So(errors.Is(env.Validate(), model.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When a match result pairs a player with themselves", func() {
			env := &model.Envelope{
				Kind:        model.KindMatchResult,
				MatchResult: &model.MatchResult{WinnerID: "p1", LoserID: "p1"},
			}
			So(errors.Is(env.Validate(), model.ErrMalformedEvent), ShouldBeTrue)
		})

		Convey("When the kind is unknown", func() {
			env := &model.Envelope{Kind: "teleport_request", PlayerID: "p1"}
			So(errors.Is(env.Validate(), model.ErrUnknownKind), ShouldBeTrue)
		})

		Convey("When a disconnect has only a player id", func() {
			env := &model.Envelope{Kind: model.KindDisconnect, PlayerID: "p1"}
			So(env.Validate(), ShouldBeNil)
		})
	})
}

func TestTrajectoryMath(t *testing.T) {
	Convey("Given a trajectory", t, func() {
		traj := model.Trajectory{StartX: 0, StartY: 0, EndX: 3, EndY: 4}

		Convey("Then length is the Euclidean endpoint distance", func() {
			So(traj.Length(), ShouldAlmostEqual, 5.0, 1e-9)
		})

		Convey("Then angle follows atan2 of the delta", func() {
			So(traj.Angle(), ShouldAlmostEqual, math.Atan2(4, 3), 1e-9)
		})
	})
}

func TestVecMath(t *testing.T) {
	Convey("Given vectors", t, func() {
		Convey("Then Vec2 distance is planar Euclidean", func() {
			a := model.Vec2{X: 1, Y: 1}
			b := model.Vec2{X: 4, Y: 5}
			So(a.Dist(b), ShouldAlmostEqual, 5.0, 1e-9)
		})

		Convey("Then Vec3 distance covers all axes", func() {
			a := model.Vec3{}
			b := model.Vec3{X: 2, Y: 3, Z: 6}
			So(a.Dist(b), ShouldAlmostEqual, 7.0, 1e-9)
		})

		Convey("Then finiteness checks catch NaN and Inf", func() {
			So(model.Vec3{X: math.NaN()}.Finite(), ShouldBeFalse)
			So(model.Vec2{Y: math.Inf(-1)}.Finite(), ShouldBeFalse)
			So(model.Vec3{X: 1, Y: 2, Z: 3}.Finite(), ShouldBeTrue)
		})
	})
}
