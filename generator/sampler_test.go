package generator

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func Test_NewWeightedChoice(t *testing.T) {
	Convey("NewWeightedChoice()", t, func() {
		Convey("builds the cumulative table", func() {
			wc, err := NewWeightedChoice(Levels, LevelWeights)
			So(err, ShouldBeNil)
			So(wc.cumulative, ShouldResemble, []int{12, 15, 16})
			So(wc.total, ShouldEqual, 16)
		})

		Convey("rejects mismatched lengths", func() {
			_, err := NewWeightedChoice([]string{"a", "b"}, []int{1})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "2 choices but 1 weights")
		})

		Convey("rejects negative weights", func() {
			_, err := NewWeightedChoice([]string{"a", "b"}, []int{1, -1})
			So(err, ShouldNotBeNil)
		})

		Convey("rejects an all zero table", func() {
			_, err := NewWeightedChoice([]string{"a", "b"}, []int{0, 0})
			So(err, ShouldNotBeNil)
		})

		Convey("rejects an empty table", func() {
			_, err := NewWeightedChoice(nil, nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func Test_Pick(t *testing.T) {
	Convey("Pick()", t, func() {
		rnd := rand.New(rand.NewSource(99))

		Convey("never selects a zero weight choice", func() {
			wc, err := NewWeightedChoice([]string{"never", "always", "also-never"}, []int{0, 5, 0})
			So(err, ShouldBeNil)

			for i := 0; i < 500; i++ {
				So(wc.Pick(rnd), ShouldEqual, "always")
			}
		})

		Convey("follows the weights", func() {
			wc, err := NewWeightedChoice(Levels, LevelWeights)
			So(err, ShouldBeNil)

			counts := map[string]int{}
			const n = 32000
			for i := 0; i < n; i++ {
				counts[wc.Pick(rnd)]++
			}

			So(float64(counts[LevelInfo])/n, ShouldAlmostEqual, 0.75, 0.02)
			So(float64(counts[LevelWarn])/n, ShouldAlmostEqual, 0.1875, 0.02)
			So(float64(counts[LevelError])/n, ShouldAlmostEqual, 0.0625, 0.01)
		})
	})
}

func Test_Probability(t *testing.T) {
	Convey("Probability() normalizes the weights", t, func() {
		wc, err := NewWeightedChoice(Levels, LevelWeights)
		So(err, ShouldBeNil)

		So(wc.Probability(LevelInfo), ShouldEqual, 12.0/16.0)
		So(wc.Probability(LevelWarn), ShouldEqual, 3.0/16.0)
		So(wc.Probability(LevelError), ShouldEqual, 1.0/16.0)
		So(wc.Probability("fatal"), ShouldEqual, 0.0)
	})
}
