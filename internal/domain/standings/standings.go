// Package standings aggregates race scores into the season table.
package standings

import (
	"sort"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/types"
)

// Rank sorts entries by points descending, team id ascending, and assigns
// competition ranks: equal totals share a rank and the next distinct total
// is ranked one past the number of entries ahead of it (1, 2, 2, 4).
func Rank(entries []types.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Before(entries[j])
	})
	AssignRanks(entries)
}

// AssignRanks assigns competition ranks to entries already in standings
// order.
func AssignRanks(entries []types.Entry) {
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// Totals sums points per owner across every score, handicap adjustments
// included.
func Totals(scores []model.Score) map[string]int {
	totals := make(map[string]int)
	for _, s := range scores {
		if s.OwnerID == "" {
			continue
		}
		totals[s.OwnerID] += s.TotalPoints
	}
	return totals
}

// Compute builds the ranked standings from every score.
func Compute(scores []model.Score) []types.Entry {
	totals := Totals(scores)
	out := make([]types.Entry, 0, len(totals))
	for owner, pts := range totals {
		out = append(out, types.Entry{TeamID: owner, Points: pts})
	}
	Rank(out)
	return out
}
