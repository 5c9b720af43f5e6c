package standings

import (
	"sort"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/types"
)

// Update is the outcome of scoring one race into the season.
type Update struct {
	// Scores is the merged score set, ordered by document key.
	Scores []model.Score
	// Race holds the drafts computed for the scored race.
	Race []scoring.Draft
	// Skipped lists predictions excluded from the race.
	Skipped []scoring.Skip
	// Standings is the recomputed season table.
	Standings []types.Entry
}

// UpdateRaceScores scores result and merges the drafts into prior, keyed by
// raceid.DocKey so re-running a race overwrites its earlier scores. The
// standings are then recomputed from the merged set.
func UpdateRaceScores(calc *scoring.Calculator, result model.RaceResult, predictions []model.Prediction, prior []model.Score) (Update, error) {
	run, err := calc.Calculate(result, predictions)
	if err != nil {
		return Update{}, err
	}
	merged := Merge(prior, Drafted(run.Drafts))
	return Update{
		Scores:    merged,
		Race:      run.Drafts,
		Skipped:   run.Skipped,
		Standings: Compute(merged),
	}, nil
}

// Drafted strips the draft metadata.
func Drafted(drafts []scoring.Draft) []model.Score {
	out := make([]model.Score, len(drafts))
	for i, d := range drafts {
		out[i] = d.Score
	}
	return out
}

// Merge overlays next on prior by document. Race ids are compared
// case-insensitively, so a race rescored under another label replaces its
// earlier scores rather than adding to them.
func Merge(prior, next []model.Score) []model.Score {
	byKey := make(map[string]model.Score, len(prior)+len(next))
	for _, s := range prior {
		byKey[raceid.DocKey(s.RaceID, s.OwnerID)] = s
	}
	for _, s := range next {
		byKey[raceid.DocKey(s.RaceID, s.OwnerID)] = s
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]model.Score, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}
