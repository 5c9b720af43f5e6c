package standings_test

import (
	"testing"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRank(t *testing.T) {
	Convey("Given unsorted entries with ties", t, func() {
		entries := []types.Entry{
			{TeamID: "dan", Points: 80},
			{TeamID: "amy", Points: 120},
			{TeamID: "cat", Points: 95},
			{TeamID: "bea", Points: 95},
			{TeamID: "eve", Points: 80},
			{TeamID: "fay", Points: 10},
		}

		Convey("When ranked", func() {
			standings.Rank(entries)

			Convey("Then equal totals share a rank and the next rank skips", func() {
				got := make([]int, len(entries))
				ids := make([]string, len(entries))
				for i, e := range entries {
					got[i] = e.Rank
					ids[i] = e.TeamID
				}
				So(ids, ShouldResemble, []string{"amy", "bea", "cat", "dan", "eve", "fay"})
				So(got, ShouldResemble, []int{1, 2, 2, 4, 4, 6})
			})

			Convey("And rank order is monotonic in points", func() {
				for i := 1; i < len(entries); i++ {
					prev, cur := entries[i-1], entries[i]
					So(cur.Rank, ShouldBeGreaterThanOrEqualTo, prev.Rank)
					if prev.Points == cur.Points {
						So(cur.Rank, ShouldEqual, prev.Rank)
					} else {
						So(cur.Rank, ShouldBeGreaterThan, prev.Rank)
					}
				}
			})
		})

		Convey("When every entry ties", func() {
			all := []types.Entry{{TeamID: "x", Points: 5}, {TeamID: "y", Points: 5}, {TeamID: "z", Points: 5}}
			standings.Rank(all)

			Convey("Then everyone is first", func() {
				for _, e := range all {
					So(e.Rank, ShouldEqual, 1)
				}
			})
		})

		Convey("When the list is empty", func() {
			var none []types.Entry

			Convey("Then ranking is a no-op", func() {
				So(func() { standings.Rank(none) }, ShouldNotPanic)
			})
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given race scores and a late-joiner handicap", t, func() {
		scores := []model.Score{
			{RaceID: "Bahrain-Grand-Prix", OwnerID: "amy", TotalPoints: 30},
			{RaceID: "Saudi-Arabian-Grand-Prix", OwnerID: "amy", TotalPoints: 12},
			{RaceID: "Bahrain-Grand-Prix", OwnerID: "bea", TotalPoints: 20},
			{RaceID: model.LateJoinerRaceID, OwnerID: "bea", TotalPoints: 22},
			{RaceID: "Bahrain-Grand-Prix", OwnerID: "cat", TotalPoints: 46},
			{RaceID: model.LateJoinerRaceID, OwnerID: "dan", TotalPoints: -5},
		}

		Convey("When standings are computed", func() {
			table := standings.Compute(scores)

			Convey("Then handicaps count toward totals and ties share a rank", func() {
				So(table, ShouldResemble, []types.Entry{
					{Rank: 1, TeamID: "cat", Points: 46},
					{Rank: 2, TeamID: "amy", Points: 42},
					{Rank: 2, TeamID: "bea", Points: 42},
					{Rank: 4, TeamID: "dan", Points: -5},
				})
			})
		})
	})
}
