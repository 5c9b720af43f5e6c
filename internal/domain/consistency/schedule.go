package consistency

import (
	"strings"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
)

// CheckRaces validates the schedule.
func (c *Checker) CheckRaces(s Snapshot) CheckResult {
	return c.checkRaces(c.index(s))
}

func (c *Checker) checkRaces(ix *index) CheckResult {
	col := newCollector(CategoryRaces)
	seen := make(map[string]bool, len(ix.snap.Races))
	var prev *model.RaceDefinition

	for i := range ix.snap.Races {
		def := ix.snap.Races[i]
		id := raceid.Normalize(def.Name)
		e := col.entity(label(id, "race", i))

		if id == "" {
			e.errorf("name", "missing race name")
		} else {
			key := strings.ToLower(id)
			if seen[key] {
				e.errorf("name", "duplicate race id %q", id)
			}
			seen[key] = true
		}

		switch {
		case def.QualifyingTime.IsZero():
			e.errorf("qualifyingTime", "missing qualifying time")
		case def.RaceTime.IsZero():
			e.errorf("raceTime", "missing race time")
		case !def.QualifyingTime.Before(def.RaceTime):
			e.errorWith("qualifyingTime", map[string]any{
				"qualifyingTime": def.QualifyingTime,
				"raceTime":       def.RaceTime,
			}, "qualifying does not start before the race")
		}

		if prev != nil && !def.RaceTime.IsZero() && def.RaceTime.Before(prev.RaceTime) {
			e.warnf("raceTime", "race starts before the preceding round %q", raceid.Normalize(prev.Name))
		}
		if !def.RaceTime.IsZero() {
			prev = &ix.snap.Races[i]
		}
		e.close()
	}

	return col.finish()
}

// CheckResults validates the official results.
func (c *Checker) CheckResults(s Snapshot) CheckResult {
	return c.checkResults(c.index(s))
}

func (c *Checker) checkResults(ix *index) CheckResult {
	col := newCollector(CategoryResults)
	seen := make(map[string]bool, len(ix.snap.Results))
	now := c.now()

	for i, r := range ix.snap.Results {
		e := col.entity(label(raceid.Normalize(r.RaceID), "result", i))

		race, known := ix.schedule.Lookup(r.RaceID)
		switch {
		case raceid.Normalize(r.RaceID) == "":
			e.errorf("raceId", "missing race id")
		case !known:
			e.errorf("raceId", "result for unknown race %q", r.RaceID)
		}

		key := raceid.NormalizeForComparison(r.RaceID)
		if key != "" {
			if seen[key] {
				e.errorf("raceId", "more than one result for the race")
			}
			seen[key] = true
		}

		checkDriverList(e, ix, r.DriverIDs)

		if known && race.Definition.RaceTime.After(now) {
			e.warnf("raceId", "result recorded before the race started at %s", race.Definition.RaceTime.Format(timeLayout))
		}
		e.close()
	}

	return col.finish()
}

const timeLayout = "2006-01-02 15:04 MST"

// checkDriverList records the shape errors of a six-driver list.
func checkDriverList(e *entity, ix *index, ids []string) {
	if len(ids) != model.PredictionSize {
		e.errorWith("driverIds", map[string]any{"count": len(ids)}, "has %d drivers, want %d", len(ids), model.PredictionSize)
	}
	seen := make(map[string]int, len(ids))
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			e.errorf("driverIds", "position %d is empty", i+1)
			continue
		}
		if prev, dup := seen[id]; dup {
			e.errorf("driverIds", "driver %q at positions %d and %d", id, prev+1, i+1)
			continue
		}
		seen[id] = i
		if _, ok := ix.drivers[id]; !ok {
			e.errorf("driverIds", "unknown driver %q at position %d", id, i+1)
		}
	}
}
