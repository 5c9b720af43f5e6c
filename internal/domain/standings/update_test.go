package standings_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/standings"
	. "github.com/smartystreets/goconvey/convey"
)

var drivers = []model.Driver{
	{ID: "ver", Name: "Verstappen"}, {ID: "ham", Name: "Hamilton"}, {ID: "lec", Name: "Leclerc"},
	{ID: "nor", Name: "Norris"}, {ID: "rus", Name: "Russell"}, {ID: "pia", Name: "Piastri"},
	{ID: "alo", Name: "Alonso"},
}

var top6 = []string{"ver", "ham", "lec", "nor", "rus", "pia"}

func TestUpdateRaceScores(t *testing.T) {
	Convey("Given a season with earlier scores", t, func() {
		calc := scoring.NewCalculator(scoring.DefaultTable(), drivers)
		when := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		predictions := []model.Prediction{
			{OwnerID: "amy", RaceID: "Japanese-Grand-Prix", DriverIDs: top6, SubmittedAt: when},
			{OwnerID: "bea", RaceID: "Japanese-Grand-Prix", DriverIDs: []string{"alo", "ham", "lec", "nor", "rus", "pia"}, SubmittedAt: when},
		}
		prior := []model.Score{
			{RaceID: "Australian-Grand-Prix", OwnerID: "amy", TotalPoints: 10, Breakdown: "x"},
			{RaceID: "Australian-Grand-Prix", OwnerID: "bea", TotalPoints: 16, Breakdown: "x"},
			{RaceID: "Japanese Grand Prix - GP", OwnerID: "amy", TotalPoints: 1, Breakdown: "stale"},
			{RaceID: model.LateJoinerRaceID, OwnerID: "cat", TotalPoints: 20},
		}
		result := model.RaceResult{RaceID: "Japanese Grand Prix", DriverIDs: top6}

		Convey("When the race is scored", func() {
			upd, err := standings.UpdateRaceScores(calc, result, predictions, prior)

			Convey("Then stale scores for the race are overwritten by document id", func() {
				So(err, ShouldBeNil)
				So(upd.Scores, ShouldHaveLength, 5)
				for _, s := range upd.Scores {
					So(s.Breakdown, ShouldNotEqual, "stale")
				}
				So(upd.Race, ShouldHaveLength, 2)
			})

			Convey("And standings include every race and the handicap", func() {
				So(upd.Standings[0].TeamID, ShouldEqual, "amy")
				So(upd.Standings[0].Points, ShouldEqual, 56)
				So(upd.Standings[1].TeamID, ShouldEqual, "bea")
				So(upd.Standings[1].Points, ShouldEqual, 16+30)
				So(upd.Standings[2].TeamID, ShouldEqual, "cat")
				So(upd.Standings[2].Rank, ShouldEqual, 3)
			})

			Convey("And running it again changes nothing", func() {
				again, err := standings.UpdateRaceScores(calc, result, predictions, upd.Scores)
				So(err, ShouldBeNil)
				So(again.Scores, ShouldResemble, upd.Scores)
				So(again.Standings, ShouldResemble, upd.Standings)
			})
		})

		Convey("When the race is scored again under a lower-case label", func() {
			upd, err := standings.UpdateRaceScores(calc, result, predictions, prior)
			So(err, ShouldBeNil)
			lower := model.RaceResult{RaceID: "japanese grand prix", DriverIDs: top6}
			again, err := standings.UpdateRaceScores(calc, lower, predictions, upd.Scores)

			Convey("Then the earlier scores are replaced, not added to", func() {
				So(err, ShouldBeNil)
				So(again.Scores, ShouldHaveLength, 5)
				So(again.Standings, ShouldResemble, upd.Standings)
			})
		})

		Convey("When the result is corrupt", func() {
			bad := model.RaceResult{RaceID: "Japanese Grand Prix", DriverIDs: []string{"ver", "ver", "lec", "nor", "rus", "pia"}}
			_, err := standings.UpdateRaceScores(calc, bad, predictions, prior)

			Convey("Then the error is raised and nothing is produced", func() {
				So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
			})
		})
	})
}

func TestMerge(t *testing.T) {
	Convey("Given scores stored under differently cased race ids", t, func() {
		prior := []model.Score{
			{RaceID: "Bahrain-Grand-Prix", OwnerID: "amy", TotalPoints: 46},
			{RaceID: "Bahrain-Grand-Prix", OwnerID: "Amy", TotalPoints: 10},
		}
		next := []model.Score{{RaceID: "bahrain-grand-prix", OwnerID: "amy", TotalPoints: 30}}

		Convey("When they are merged", func() {
			merged := standings.Merge(prior, next)

			Convey("Then the race matches regardless of case and owners stay distinct", func() {
				So(merged, ShouldHaveLength, 2)
				totals := standings.Totals(merged)
				So(totals["amy"], ShouldEqual, 30)
				So(totals["Amy"], ShouldEqual, 10)
			})
		})
	})
}
