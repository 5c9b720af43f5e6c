package service_test

import (
	"time"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
)

var (
	seasonStart = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	afterSeason = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	bahrainTop6 = []string{"verstappen", "norris", "leclerc", "piastri", "sainz", "hamilton"}
	// every driver one place off, all six placed: 6*4 + 10
	bobBahrain = []string{"norris", "verstappen", "piastri", "leclerc", "hamilton", "sainz"}
)

func day(n int) time.Time {
	return seasonStart.Add(time.Duration(n) * 24 * time.Hour)
}

// season has two races and two teams. Only Bahrain carries predictions, so
// Saudi Arabia is scored from carried-forward picks.
func season() consistency.Snapshot {
	return consistency.Snapshot{
		Drivers: []model.Driver{
			{ID: "verstappen", Name: "Verstappen", Number: 1, Team: "Red Bull"},
			{ID: "norris", Name: "Norris", Number: 4, Team: "McLaren"},
			{ID: "piastri", Name: "Piastri", Number: 81, Team: "McLaren"},
			{ID: "leclerc", Name: "Leclerc", Number: 16, Team: "Ferrari"},
			{ID: "hamilton", Name: "Hamilton", Number: 44, Team: "Ferrari"},
			{ID: "sainz", Name: "Sainz", Number: 55, Team: "Williams"},
			{ID: "russell", Name: "Russell", Number: 63, Team: "Mercedes"},
		},
		Races: []model.RaceDefinition{
			{Name: "Bahrain Grand Prix", QualifyingTime: day(10), RaceTime: day(11)},
			{Name: "Saudi Arabian Grand Prix", QualifyingTime: day(17), RaceTime: day(18)},
		},
		Users: []model.User{
			{ID: "alice", Email: "alice@example.com", TeamName: "Alice Racing"},
			{ID: "bob", Email: "bob@example.com", TeamName: "Bob Motorsport"},
		},
		Predictions: []model.Prediction{
			{OwnerID: "alice", RaceID: "Bahrain-Grand-Prix", DriverIDs: bahrainTop6, SubmittedAt: day(5)},
			{OwnerID: "bob", RaceID: "Bahrain-Grand-Prix", DriverIDs: bobBahrain, SubmittedAt: day(6)},
		},
		Leagues: []model.League{
			{ID: "global", Name: "Global", OwnerID: model.GlobalLeagueOwner, MemberIDs: []string{"alice", "bob"}, IsGlobal: true},
		},
	}
}

func result(race string, drivers []string) model.RaceResult {
	return model.RaceResult{RaceID: race, DriverIDs: append([]string(nil), drivers...)}
}
