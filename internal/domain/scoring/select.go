package scoring

import (
	"sort"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
)

// Candidate is a prediction that may explain a team's score for a race.
type Candidate struct {
	Prediction     model.Prediction
	CarriedForward bool
}

// Candidates orders one team's predictions for scoring raceID: predictions
// for that race first, then predictions for races the schedule places
// before raceID as carry-forward candidates. Each group is sorted newest
// first by SubmittedAt; of two predictions submitted at the same instant
// the later input element wins. Without a schedule there is no race order,
// so nothing is carried forward.
func Candidates(raceID string, predictions []model.Prediction, schedule *raceid.Schedule) []Candidate {
	var direct, prior []int
	for i, p := range predictions {
		switch {
		case raceid.Equal(p.RaceID, raceID):
			direct = append(direct, i)
		case schedule != nil && schedule.Before(p.RaceID, raceID):
			prior = append(prior, i)
		}
	}
	newestFirst(direct, predictions)
	newestFirst(prior, predictions)

	out := make([]Candidate, 0, len(direct)+len(prior))
	for _, i := range direct {
		out = append(out, Candidate{Prediction: predictions[i]})
	}
	for _, i := range prior {
		out = append(out, Candidate{Prediction: predictions[i], CarriedForward: true})
	}
	return out
}

// SelectPrediction returns the prediction a team is scored with for raceID:
// its latest prediction for that race or, failing that, its latest
// prediction for an earlier race.
func SelectPrediction(raceID string, predictions []model.Prediction, schedule *raceid.Schedule) (Candidate, bool) {
	c := Candidates(raceID, predictions, schedule)
	if len(c) == 0 {
		return Candidate{}, false
	}
	return c[0], true
}

func newestFirst(idx []int, predictions []model.Prediction) {
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := predictions[idx[a]].SubmittedAt, predictions[idx[b]].SubmittedAt
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		return idx[a] > idx[b]
	})
}
