package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/prixsix/internal/app"
	repository "github.com/okian/prixsix/internal/adapters/repository"
	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/types"
	"github.com/okian/prixsix/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newService(snap consistency.Snapshot, opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithStore(repository.NewMemoryStore(snap)),
		service.WithLogger(logger.Nop()),
		service.WithWorkerCount(2),
		service.WithClock(func() time.Time { return afterSeason }),
	}, opts...)
	return service.New(opts...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("Then it starts from an empty season", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["teams"], ShouldEqual, 0)
		})
	})

	Convey("Given a service with an invalid point table", t, func() {
		svc := newService(season(), service.WithTable(scoring.Table{Exact: 1, OneOff: 4, TwoOff: 3, ThreePlus: 2, Bonus: 10}))

		Convey("When starting it", func() {
			err := svc.Start(context.Background())

			Convey("Then the table is rejected", func() {
				So(errors.Is(err, scoring.ErrInvalidTable), ShouldBeTrue)
			})
		})

		Convey("When processing a result", func() {
			_, err := svc.ProcessResult(context.Background(), result("Bahrain Grand Prix", bahrainTop6))

			Convey("Then nothing is scored", func() {
				So(errors.Is(err, scoring.ErrInvalidTable), ShouldBeTrue)
			})
		})
	})
}

func TestService_ProcessResult(t *testing.T) {
	Convey("Given a season with two predicting teams", t, func() {
		svc := newService(season())
		ctx := context.Background()

		Convey("When the Bahrain result is processed", func() {
			upd, err := svc.ProcessResult(ctx, result("Bahrain Grand Prix", bahrainTop6))
			So(err, ShouldBeNil)

			Convey("Then both teams are scored", func() {
				So(upd.Race, ShouldHaveLength, 2)
				So(upd.Race[0].OwnerID, ShouldEqual, "alice")
				So(upd.Race[0].TotalPoints, ShouldEqual, 46)
				So(upd.Race[1].OwnerID, ShouldEqual, "bob")
				So(upd.Race[1].TotalPoints, ShouldEqual, 34)
			})

			Convey("Then the standings index is updated", func() {
				top, err := svc.Standings(ctx, 10)
				So(err, ShouldBeNil)
				So(top, ShouldResemble, []types.Entry{
					{Rank: 1, TeamID: "alice", Points: 46},
					{Rank: 2, TeamID: "bob", Points: 34},
				})

				bob, err := svc.Rank(ctx, "bob")
				So(err, ShouldBeNil)
				So(bob.Rank, ShouldEqual, 2)
			})

			Convey("Then the result, scores and standings are stored", func() {
				snap, err := svc.Season(ctx)
				So(err, ShouldBeNil)
				So(snap.Results, ShouldHaveLength, 1)
				So(snap.Scores, ShouldHaveLength, 2)
				So(snap.Standings, ShouldHaveLength, 2)
			})

			Convey("And the same result is processed again", func() {
				_, err := svc.ProcessResult(ctx, result("Bahrain Grand Prix - GP", bahrainTop6))
				So(err, ShouldBeNil)

				Convey("Then scores are overwritten, not duplicated", func() {
					snap, err := svc.Season(ctx)
					So(err, ShouldBeNil)
					So(snap.Results, ShouldHaveLength, 1)
					So(snap.Scores, ShouldHaveLength, 2)

					alice, err := svc.Rank(ctx, "alice")
					So(err, ShouldBeNil)
					So(alice.Points, ShouldEqual, 46)
				})
			})

			Convey("And the same race is processed under a lower-case label", func() {
				_, err := svc.ProcessResult(ctx, result("bahrain grand prix", bahrainTop6))
				So(err, ShouldBeNil)

				Convey("Then the scores keep the scheduled race id and are not doubled", func() {
					snap, err := svc.Season(ctx)
					So(err, ShouldBeNil)
					So(snap.Scores, ShouldHaveLength, 2)
					for _, sc := range snap.Scores {
						So(sc.RaceID, ShouldEqual, "Bahrain-Grand-Prix")
					}

					alice, err := svc.Rank(ctx, "alice")
					So(err, ShouldBeNil)
					So(alice.Points, ShouldEqual, 46)
					bob, err := svc.Rank(ctx, "bob")
					So(err, ShouldBeNil)
					So(bob.Points, ShouldEqual, 34)
				})
			})

			Convey("And a race without predictions is processed", func() {
				upd, err := svc.ProcessResult(ctx, result("Saudi Arabian Grand Prix", bahrainTop6))
				So(err, ShouldBeNil)

				Convey("Then every team is scored from its carried-forward pick", func() {
					So(upd.Race, ShouldHaveLength, 2)
					for _, d := range upd.Race {
						So(d.CarriedForward, ShouldBeTrue)
						So(d.SourceRaceID, ShouldEqual, "Bahrain-Grand-Prix")
					}
					So(upd.Standings[0], ShouldResemble, types.Entry{Rank: 1, TeamID: "alice", Points: 92})
					So(upd.Standings[1], ShouldResemble, types.Entry{Rank: 2, TeamID: "bob", Points: 68})
				})
			})
		})

		Convey("When an invalid result is processed", func() {
			bad := result("Bahrain Grand Prix", bahrainTop6)
			bad.DriverIDs[5] = "verstappen"
			_, err := svc.ProcessResult(ctx, bad)

			Convey("Then it is rejected and nothing is stored", func() {
				So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
				snap, err := svc.Season(ctx)
				So(err, ShouldBeNil)
				So(snap.Results, ShouldBeEmpty)
				So(snap.Scores, ShouldBeEmpty)
			})
		})

		Convey("When a team is unknown to the index", func() {
			_, err := svc.Rank(ctx, "nobody")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_RescoreSeason(t *testing.T) {
	Convey("Given a season with stored results but no scores", t, func() {
		snap := season()
		snap.Results = append(snap.Results,
			result("Bahrain Grand Prix", bahrainTop6),
			result("Saudi Arabian Grand Prix", bahrainTop6),
		)
		svc := newService(snap)
		ctx := context.Background()

		Convey("When the season is rescored", func() {
			upd, err := svc.RescoreSeason(ctx)
			So(err, ShouldBeNil)

			Convey("Then every race is scored", func() {
				So(upd.Race, ShouldHaveLength, 4)
				So(upd.Scores, ShouldHaveLength, 4)
				So(upd.Standings, ShouldResemble, []types.Entry{
					{Rank: 1, TeamID: "alice", Points: 92},
					{Rank: 2, TeamID: "bob", Points: 68},
				})
			})

			Convey("Then a second rescore changes nothing", func() {
				again, err := svc.RescoreSeason(ctx)
				So(err, ShouldBeNil)
				So(again.Scores, ShouldResemble, upd.Scores)
				So(again.Standings, ShouldResemble, upd.Standings)
			})
		})
	})

	Convey("Given a season containing an invalid result", t, func() {
		snap := season()
		bad := result("Saudi Arabian Grand Prix", bahrainTop6)
		bad.DriverIDs[0] = "unknown-driver"
		snap.Results = append(snap.Results, result("Bahrain Grand Prix", bahrainTop6), bad)
		svc := newService(snap)
		ctx := context.Background()

		Convey("When the season is rescored", func() {
			_, err := svc.RescoreSeason(ctx)

			Convey("Then the rescore fails and nothing is written", func() {
				So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
				stored, err := svc.Season(ctx)
				So(err, ShouldBeNil)
				So(stored.Scores, ShouldBeEmpty)
			})
		})
	})
}

func TestService_Check(t *testing.T) {
	Convey("Given a scored season", t, func() {
		svc := newService(season())
		ctx := context.Background()
		_, err := svc.ProcessResult(ctx, result("Bahrain Grand Prix", bahrainTop6))
		So(err, ShouldBeNil)

		Convey("When the checker runs", func() {
			sum, err := svc.Check(ctx)
			So(err, ShouldBeNil)

			Convey("Then every category is reported", func() {
				So(sum.CorrelationID, ShouldNotBeEmpty)
				So(sum.Results, ShouldHaveLength, len(consistency.Categories()))
			})

			Convey("Then scores and standings agree with the engine", func() {
				scores, ok := sum.Result(consistency.CategoryScores)
				So(ok, ShouldBeTrue)
				So(scores.Status, ShouldEqual, consistency.StatusPass)
				So(scores.Valid, ShouldEqual, 2)

				st, ok := sum.Result(consistency.CategoryStandings)
				So(ok, ShouldBeTrue)
				So(st.Status, ShouldEqual, consistency.StatusPass)
			})
		})
	})

	Convey("Given a season with a tampered score", t, func() {
		snap := season()
		snap.Results = append(snap.Results, result("Bahrain Grand Prix", bahrainTop6))
		svc := newService(snap)
		ctx := context.Background()
		upd, err := svc.RescoreSeason(ctx)
		So(err, ShouldBeNil)

		tampered := season()
		tampered.Results = snap.Results
		tampered.Scores = upd.Scores
		tampered.Scores[0].TotalPoints = 40
		tampered.Standings = upd.Standings
		checked := newService(tampered)

		Convey("When the checker runs", func() {
			sum, err := checked.Check(ctx)
			So(err, ShouldBeNil)

			Convey("Then the scores category errors", func() {
				scores, _ := sum.Result(consistency.CategoryScores)
				So(scores.Status, ShouldEqual, consistency.StatusError)
				So(sum.Status(), ShouldEqual, consistency.StatusError)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(season())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("Then a second stop is harmless", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService(season())
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then queue and worker counters are reported", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["processed"], ShouldEqual, int64(0))
		})
	})
}
