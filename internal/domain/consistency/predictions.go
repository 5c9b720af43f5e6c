package consistency

import (
	"github.com/okian/prixsix/internal/domain/raceid"
)

// CheckPredictions validates every stored prediction.
func (c *Checker) CheckPredictions(s Snapshot) CheckResult {
	return c.checkPredictions(c.index(s))
}

func (c *Checker) checkPredictions(ix *index) CheckResult {
	col := newCollector(CategoryPredictions)

	for i, p := range ix.snap.Predictions {
		e := col.entity(label(predictionLabel(p.OwnerID, p.RaceID), "prediction", i))

		if why := ix.dir.Explain(p.OwnerID); why != "" {
			e.errorf("ownerId", "%s", why)
		}

		race, known := ix.schedule.Lookup(p.RaceID)
		if !known {
			e.errorf("raceId", "prediction for unknown race %q", p.RaceID)
		}

		checkDriverList(e, ix, p.DriverIDs)

		if known && !p.SubmittedAt.IsZero() && p.SubmittedAt.After(race.Definition.QualifyingTime) {
			e.warnf("submittedAt", "submitted %s, after qualifying closed at %s",
				p.SubmittedAt.Format(timeLayout), race.Definition.QualifyingTime.Format(timeLayout))
		}
		e.close()
	}

	return col.finish()
}

func predictionLabel(owner, race string) string {
	if owner == "" && race == "" {
		return ""
	}
	return owner + "/" + raceid.Normalize(race)
}

// CheckTeamCoverage reports teams that have not predicted yet.
func (c *Checker) CheckTeamCoverage(s Snapshot) CheckResult {
	return c.checkTeamCoverage(c.index(s))
}

func (c *Checker) checkTeamCoverage(ix *index) CheckResult {
	col := newCollector(CategoryTeamCoverage)

	for _, team := range ix.dir.Teams() {
		e := col.entity(team)
		if len(ix.byOwner[team]) == 0 {
			e.fail()
			e.infoWith("", nil, "no predictions yet")
		}
		e.close()
	}

	return col.finish()
}
