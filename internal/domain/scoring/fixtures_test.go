package scoring_test

import (
	"time"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
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

var officialTop6 = []string{"verstappen", "hamilton", "leclerc", "norris", "russell", "piastri"}

var seasonStart = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func raceDay(days int) time.Time {
	return seasonStart.Add(time.Duration(days) * 24 * time.Hour)
}

var schedule = raceid.Index([]model.RaceDefinition{
	{Name: "Australian Grand Prix", RaceTime: raceDay(2)},
	{Name: "Bahrain Grand Prix", RaceTime: raceDay(9)},
	{Name: "Saudi Arabian Grand Prix", RaceTime: raceDay(16)},
	{Name: "Japanese Grand Prix", RaceTime: raceDay(23)},
	{Name: "Miami Grand Prix", RaceTime: raceDay(50)},
	{Name: "Monaco Grand Prix", RaceTime: raceDay(71)},
})

func prediction(owner, race string, daysIn int, drivers ...string) model.Prediction {
	return model.Prediction{
		OwnerID:     owner,
		RaceID:      race,
		DriverIDs:   drivers,
		SubmittedAt: raceDay(daysIn),
	}
}
