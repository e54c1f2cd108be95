package series_test

import (
	"testing"

	"github.com/vityaz/arena/internal/domain/series"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAppendOrdering(t *testing.T) {
	Convey("Given a series", t, func() {
		s := series.New[string](0)

		Convey("When samples arrive in time order", func() {
			s.Append(10, "a")
			s.Append(20, "b")
			s.Append(30, "c")

			Convey("Then they are stored oldest first", func() {
				So(s.Len(), ShouldEqual, 3)
				So(s.At(0).Val, ShouldEqual, "a")
				So(s.At(2).Val, ShouldEqual, "c")
			})
		})

		Convey("When a sample arrives out of order", func() {
			s.Append(10, "a")
			s.Append(30, "c")
			s.Append(20, "b")

			Convey("Then it is shifted into timestamp order", func() {
				So(s.At(0).At, ShouldEqual, 10)
				So(s.At(1).At, ShouldEqual, 20)
				So(s.At(1).Val, ShouldEqual, "b")
				So(s.At(2).At, ShouldEqual, 30)
			})
		})

		Convey("When timestamps are equal", func() {
			s.Append(10, "a")
			s.Append(10, "b")

			Convey("Then insertion order is preserved", func() {
				So(s.At(0).Val, ShouldEqual, "a")
				So(s.At(1).Val, ShouldEqual, "b")
			})
		})
	})
}

func TestCapacityEviction(t *testing.T) {
	Convey("Given a bounded series", t, func() {
		s := series.New[int](3)

		Convey("When appending beyond capacity", func() {
			for i := 0; i < 5; i++ {
				s.Append(int64(i*10), i)
			}

			Convey("Then the oldest samples are evicted first", func() {
				So(s.Len(), ShouldEqual, 3)
				oldest, ok := s.Oldest()
				So(ok, ShouldBeTrue)
				So(oldest.At, ShouldEqual, 20)
				newest, ok := s.Newest()
				So(ok, ShouldBeTrue)
				So(newest.At, ShouldEqual, 40)
			})
		})
	})
}

func TestNearest(t *testing.T) {
	Convey("Given a series with spaced samples", t, func() {
		s := series.New[string](0)
		s.Append(100, "a")
		s.Append(200, "b")
		s.Append(300, "c")

		Convey("Then an exact timestamp matches its sample", func() {
			smp, ok := s.Nearest(200)
			So(ok, ShouldBeTrue)
			So(smp.Val, ShouldEqual, "b")
		})

		Convey("Then a timestamp between samples picks the closer one", func() {
			smp, _ := s.Nearest(260)
			So(smp.Val, ShouldEqual, "c")
		})

		Convey("Then an equidistant timestamp picks the earlier sample", func() {
			smp, _ := s.Nearest(150)
			So(smp.Val, ShouldEqual, "a")
		})

		Convey("Then timestamps outside the range clamp to the edges", func() {
			smp, _ := s.Nearest(0)
			So(smp.Val, ShouldEqual, "a")
			smp, _ = s.Nearest(10_000)
			So(smp.Val, ShouldEqual, "c")
		})

		Convey("And an empty series reports no sample", func() {
			empty := series.New[string](0)
			_, ok := empty.Nearest(100)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestBracket(t *testing.T) {
	Convey("Given a series with spaced samples", t, func() {
		s := series.New[string](0)
		s.Append(100, "a")
		s.Append(200, "b")

		Convey("Then a target inside the range has both sides", func() {
			before, after, hasBefore, hasAfter := s.Bracket(150)
			So(hasBefore, ShouldBeTrue)
			So(hasAfter, ShouldBeTrue)
			So(before.Val, ShouldEqual, "a")
			So(after.Val, ShouldEqual, "b")
		})

		Convey("Then a target before the first sample has only after", func() {
			_, after, hasBefore, hasAfter := s.Bracket(50)
			So(hasBefore, ShouldBeFalse)
			So(hasAfter, ShouldBeTrue)
			So(after.Val, ShouldEqual, "a")
		})

		Convey("Then a target past the last sample has only before", func() {
			before, _, hasBefore, hasAfter := s.Bracket(500)
			So(hasBefore, ShouldBeTrue)
			So(hasAfter, ShouldBeFalse)
			So(before.Val, ShouldEqual, "b")
		})

		Convey("Then a target equal to a sample keeps it on the before side", func() {
			before, _, hasBefore, _ := s.Bracket(200)
			So(hasBefore, ShouldBeTrue)
			So(before.Val, ShouldEqual, "b")
		})
	})
}

func TestEvictionAndCounting(t *testing.T) {
	Convey("Given a series with a spread of timestamps", t, func() {
		s := series.New[int](0)
		for i := 0; i < 10; i++ {
			s.Append(int64(i*100), i)
		}

		Convey("When evicting before a cutoff", func() {
			removed := s.EvictBefore(500)

			Convey("Then older samples are gone", func() {
				So(removed, ShouldEqual, 5)
				So(s.Len(), ShouldEqual, 5)
				oldest, _ := s.Oldest()
				So(oldest.At, ShouldEqual, 500)
			})
		})

		Convey("When counting since a cutoff", func() {
			So(s.CountSince(600), ShouldEqual, 3)
			So(s.CountSince(-1), ShouldEqual, 10)
			So(s.CountSince(900), ShouldEqual, 0)
		})

		Convey("When taking the tail", func() {
			tail := s.Tail(3)
			So(len(tail), ShouldEqual, 3)
			So(tail[0].At, ShouldEqual, 700)
			So(tail[2].At, ShouldEqual, 900)
			So(len(s.Tail(100)), ShouldEqual, 10)
			So(s.Tail(0), ShouldBeNil)
		})

		Convey("When clearing", func() {
			s.Clear()
			So(s.Len(), ShouldEqual, 0)
		})
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given a series", t, func() {
		s := series.New[[]string](0)
		s.Append(100, nil)

		Convey("When updating a payload in place", func() {
			s.Update(0, []string{"p2"})

			Convey("Then the payload changes and the timestamp does not", func() {
				So(s.At(0).Val, ShouldResemble, []string{"p2"})
				So(s.At(0).At, ShouldEqual, 100)
			})
		})
	})
}
