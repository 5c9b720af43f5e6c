package consistency_test

import (
	"strings"
	"time"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/standings"
)

var roster = []model.Driver{
	{ID: "verstappen", Name: "Verstappen", Number: 1, Team: "Red Bull"},
	{ID: "hamilton", Name: "Hamilton", Number: 44, Team: "Ferrari"},
	{ID: "leclerc", Name: "Leclerc", Number: 16, Team: "Ferrari"},
	{ID: "norris", Name: "Norris", Number: 4, Team: "McLaren"},
	{ID: "russell", Name: "Russell", Number: 63, Team: "Mercedes"},
	{ID: "piastri", Name: "Piastri", Number: 81, Team: "McLaren"},
	{ID: "alonso", Name: "Alonso", Number: 14, Team: "Aston Martin"},
	{ID: "sainz", Name: "Sainz", Number: 55, Team: "Williams"},
}

func officialTop6() []string {
	return []string{"verstappen", "hamilton", "leclerc", "norris", "russell", "piastri"}
}

func bobLatest() []string {
	return []string{"hamilton", "verstappen", "leclerc", "norris", "russell", "alonso"}
}

var (
	seasonStart = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	checkedAt   = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
)

func day(n int) time.Time {
	return seasonStart.Add(time.Duration(n) * 24 * time.Hour)
}

// season builds a consistent snapshot: alice and bob predicted Australia
// directly, bob-secondary only predicted the earlier Sakhir round and is
// carried forward, carol joined late with a handicap and has not predicted.
func season() consistency.Snapshot {
	s := consistency.Snapshot{
		Drivers: append([]model.Driver(nil), roster...),
		Races: []model.RaceDefinition{
			{
				Name:           "Sakhir Grand Prix",
				QualifyingTime: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC),
				RaceTime:       time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC),
			},
			{
				Name:           "Australian Grand Prix",
				QualifyingTime: time.Date(2025, 3, 15, 5, 0, 0, 0, time.UTC),
				RaceTime:       time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC),
			},
			{
				Name:           "Chinese Grand Prix",
				QualifyingTime: time.Date(2025, 3, 22, 7, 0, 0, 0, time.UTC),
				RaceTime:       time.Date(2025, 3, 23, 7, 0, 0, 0, time.UTC),
				HasSprint:      true,
			},
		},
		Users: []model.User{
			{ID: "alice", Email: "alice@example.com", TeamName: "Alice Racing"},
			{ID: "bob", Email: "bob@example.com", TeamName: "Bob Motorsport", SecondaryTeamName: "Bob B-Team"},
			{ID: "carol", Email: "carol@example.com", TeamName: "Carol GP"},
		},
		Predictions: []model.Prediction{
			{OwnerID: "alice", RaceID: "Australian-Grand-Prix", DriverIDs: officialTop6(), SubmittedAt: day(0)},
			{OwnerID: "bob", RaceID: "Australian-Grand-Prix", DriverIDs: officialTop6(), SubmittedAt: day(0)},
			{OwnerID: "bob", RaceID: "Australian-Grand-Prix", DriverIDs: bobLatest(), SubmittedAt: day(1)},
			{OwnerID: "bob-secondary", RaceID: "Sakhir-Grand-Prix", DriverIDs: officialTop6(), SubmittedAt: day(-10)},
		},
		Results: []model.RaceResult{
			{RaceID: "Australian Grand Prix - GP", DriverIDs: officialTop6()},
		},
		Leagues: []model.League{
			{ID: "global", Name: "Global", OwnerID: model.GlobalLeagueOwner, IsGlobal: true,
				MemberIDs: []string{"alice", "bob", "bob-secondary", "carol"}},
			{ID: "friends", Name: "Friends", OwnerID: "bob", MemberIDs: []string{"bob", "alice"}},
		},
	}

	calc := scoring.NewCalculator(scoring.DefaultTable(), s.Drivers, scoring.WithSchedule(raceid.Index(s.Races)))
	handicap := []model.Score{{RaceID: model.LateJoinerRaceID, OwnerID: "carol", TotalPoints: 20}}
	up, err := standings.UpdateRaceScores(calc, s.Results[0], s.Predictions, handicap)
	if err != nil {
		panic(err)
	}
	s.Scores = up.Scores
	s.Standings = up.Standings
	return s
}

func newChecker() *consistency.Checker {
	return consistency.New(scoring.DefaultTable(),
		consistency.WithClock(func() time.Time { return checkedAt }),
		consistency.WithIDGenerator(func() string { return "run-1" }),
	)
}

func scoreFor(s consistency.Snapshot, owner string) int {
	for i, sc := range s.Scores {
		if sc.OwnerID == owner && !sc.IsHandicap() {
			return i
		}
	}
	panic("no score for " + owner)
}

func messages(r consistency.CheckResult, sev consistency.Severity) []string {
	var out []string
	for _, is := range r.Issues {
		if is.Severity == sev {
			out = append(out, is.Entity+": "+is.Message)
		}
	}
	return out
}

func hasIssue(r consistency.CheckResult, sev consistency.Severity, fragment string) bool {
	for _, m := range messages(r, sev) {
		if strings.Contains(m, fragment) {
			return true
		}
	}
	return false
}
