package consistency

import (
	"strings"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/scoring"
)

// CheckScores recomputes every stored score from its prediction and the
// official result, and verifies the stored breakdown line by line.
func (c *Checker) CheckScores(s Snapshot) CheckResult {
	return c.checkScores(c.index(s))
}

func (c *Checker) checkScores(ix *index) CheckResult {
	col := newCollector(CategoryScores)
	// first document seen per race and team, race compared case-insensitively
	seen := make(map[string]string, len(ix.snap.Scores))
	maxPoints := c.table.MaxRacePoints()

	for i, sc := range ix.snap.Scores {
		doc := raceid.DocID(sc.RaceID, sc.OwnerID)
		e := col.entity(label(strings.Trim(doc, "_"), "score", i))

		key := raceid.DocKey(sc.RaceID, sc.OwnerID)
		if first, dup := seen[key]; dup {
			e.errorf("raceId", "duplicate score document %q", first)
		} else {
			seen[key] = doc
		}

		if why := ix.dir.Explain(sc.OwnerID); why != "" {
			e.errorf("ownerId", "%s", why)
		}

		if sc.IsHandicap() {
			checkHandicap(e, sc, maxPoints)
			e.close()
			continue
		}

		if sc.TotalPoints < 0 || sc.TotalPoints > maxPoints {
			e.errorf("totalPoints", "total %d outside 0..%d", sc.TotalPoints, maxPoints)
		}

		if _, ok := ix.schedule.Lookup(sc.RaceID); !ok {
			e.errorf("raceId", "score for unknown race %q", sc.RaceID)
		}

		c.verifyScore(e, ix, sc)
		e.close()
	}

	return col.finish()
}

func checkHandicap(e *entity, sc model.Score, maxPoints int) {
	switch {
	case sc.TotalPoints == 0:
		e.warnf("totalPoints", "handicap carries no points")
	case abs(sc.TotalPoints) > maxPoints:
		e.infoWith("totalPoints", map[string]any{"maxRacePoints": maxPoints},
			"handicap of %d exceeds the per-race maximum", sc.TotalPoints)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// verifyScore finds the prediction behind sc and checks the stored total
// and breakdown against it.
func (c *Checker) verifyScore(e *entity, ix *index, sc model.Score) {
	result, ok := ix.result(sc.RaceID)
	if !ok {
		e.errorf("raceId", "no official result for the race")
		return
	}
	if err := ix.calc.ValidateResult(result); err != nil {
		e.errorf("raceId", "official result cannot be used: %v", err)
		return
	}

	var cands []scoring.Candidate
	for _, cand := range scoring.Candidates(sc.RaceID, ix.byOwner[sc.OwnerID], ix.schedule) {
		if ix.calc.CheckPrediction(cand.Prediction) == "" {
			cands = append(cands, cand)
		}
	}
	if len(cands) == 0 {
		e.errorf("ownerId", "no prediction to explain the score")
		return
	}

	used, ev, matched := cands[0], scoring.Evaluation{}, false
	for i, cand := range cands {
		got := scoring.Evaluate(c.table, cand.Prediction.DriverIDs, result.DriverIDs)
		if i == 0 {
			ev = got
		}
		if got.Total == sc.TotalPoints {
			used, ev, matched = cand, got, true
			if i > 0 || cand.CarriedForward {
				e.infoWith("totalPoints", map[string]any{
					"predictionRaceId": raceid.Normalize(cand.Prediction.RaceID),
					"submittedAt":      cand.Prediction.SubmittedAt,
					"carriedForward":   cand.CarriedForward,
				}, "verified against prediction for %s", raceid.Normalize(cand.Prediction.RaceID))
			}
			break
		}
	}
	if !matched {
		e.errorWith("totalPoints", map[string]any{
			"stored":           sc.TotalPoints,
			"expected":         ev.Total,
			"predictionRaceId": raceid.Normalize(used.Prediction.RaceID),
		}, "stored total %d, recomputed %d", sc.TotalPoints, ev.Total)
	}

	if strings.TrimSpace(sc.Breakdown) == "" {
		e.errorf("breakdown", "missing breakdown")
		return
	}
	b, err := scoring.Decode(sc.Breakdown)
	if err != nil {
		e.errorf("breakdown", "%v", err)
		return
	}
	c.verifyBreakdown(e, ix, sc, b, ev, result)
}

func (c *Checker) verifyBreakdown(e *entity, ix *index, sc model.Score, b scoring.Breakdown, ev scoring.Evaluation, result model.RaceResult) {
	if sum := b.Sum(); sum != sc.TotalPoints {
		e.errorWith("breakdown", map[string]any{"sum": sum, "totalPoints": sc.TotalPoints},
			"breakdown sums to %d, total is %d", sum, sc.TotalPoints)
	}

	placed := make(map[string]bool, len(result.DriverIDs))
	for _, id := range result.DriverIDs {
		placed[id] = true
	}

	ghosts := make(map[string]bool)
	for _, entry := range b.Entries {
		d, known := ix.driverByName(entry.Name)
		if !known {
			e.warnf("breakdown", "unknown driver %q in breakdown", entry.Name)
		}
		if entry.Points > 0 && (!known || !placed[d.ID]) {
			ghosts[strings.ToLower(entry.Name)] = true
			e.errorf("breakdown", "%s scored %d points without finishing in the top %d", entry.Name, entry.Points, model.PredictionSize)
		}
	}

	predicted := make(map[string]bool, len(ev.Drivers))
	for _, dp := range ev.Drivers {
		predicted[dp.DriverID] = true
		name := ix.calc.DriverName(dp.DriverID)
		if ghosts[strings.ToLower(name)] {
			continue
		}
		got, present := b.Points(name)
		switch {
		case !present && dp.Points > 0:
			e.errorf("breakdown", "%s missing, expected %d points", name, dp.Points)
		case present && got != dp.Points:
			e.errorWith("breakdown", map[string]any{"driver": name, "stored": got, "expected": dp.Points},
				"%s has %d points, expected %d", name, got, dp.Points)
		}
	}
	for _, id := range result.DriverIDs {
		if predicted[id] {
			continue
		}
		name := ix.calc.DriverName(id)
		if got, present := b.Points(name); present && got != 0 {
			e.errorf("breakdown", "%s was not predicted but has %d points", name, got)
		}
	}

	switch {
	case b.HasBonus && !ev.BonusEarned:
		e.errorf("breakdown", "bonus awarded but not every predicted driver finished in the top %d", model.PredictionSize)
	case !b.HasBonus && ev.BonusEarned:
		e.errorf("breakdown", "bonus missing although every predicted driver finished in the top %d", model.PredictionSize)
	case b.HasBonus && b.Bonus != c.table.Bonus:
		e.errorf("breakdown", "bonus of %d, expected %d", b.Bonus, c.table.Bonus)
	}
}
