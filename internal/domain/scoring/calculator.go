package scoring

import (
	"fmt"
	"sort"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
)

// SkipReason explains why a team was not scored for a race.
type SkipReason string

// Skip reasons.
const (
	SkipMissingOwner  SkipReason = "missing_owner"
	SkipDriverCount   SkipReason = "wrong_driver_count"
	SkipEmptyDriver   SkipReason = "empty_driver"
	SkipDuplicate     SkipReason = "duplicate_driver"
	SkipUnknownDriver SkipReason = "unknown_driver"
)

// Skip records a prediction excluded from scoring.
type Skip struct {
	OwnerID string
	RaceID  string
	Reason  SkipReason
}

// Draft is a computed score together with the prediction it came from.
type Draft struct {
	model.Score
	SourceRaceID   string
	CarriedForward bool
}

// Run is the outcome of scoring one race.
type Run struct {
	RaceID  string
	Drafts  []Draft
	Skipped []Skip
}

// Calculator scores predictions against official results. It is safe for
// concurrent use; it holds no mutable state after construction.
type Calculator struct {
	table        Table
	drivers      map[string]model.Driver
	carryForward bool
	schedule     *raceid.Schedule
}

// NewCalculator creates a calculator for table over the season roster.
func NewCalculator(table Table, drivers []model.Driver, opts ...Option) *Calculator {
	c := &Calculator{
		table:        table,
		drivers:      make(map[string]model.Driver, len(drivers)),
		carryForward: true,
	}
	for _, d := range drivers {
		c.drivers[d.ID] = d
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Table returns the point table the calculator scores with.
func (c *Calculator) Table() Table {
	return c.table
}

// DriverName returns the breakdown name of a driver id. Unknown ids are
// returned as-is.
func (c *Calculator) DriverName(id string) string {
	if d, ok := c.drivers[id]; ok {
		return d.Name
	}
	return id
}

// RaceID returns the id scores for label are stored under: the schedule's
// id when the race is scheduled, the normalized label otherwise.
func (c *Calculator) RaceID(label string) string {
	if c.schedule != nil {
		if r, ok := c.schedule.Lookup(label); ok {
			return r.ID
		}
	}
	return raceid.Normalize(label)
}

// ValidateResult rejects a result with a missing slot, a repeated driver or
// a driver outside the roster. Scores are never computed from such a result.
func (c *Calculator) ValidateResult(result model.RaceResult) error {
	if raceid.Normalize(result.RaceID) == "" {
		return fmt.Errorf("%w: missing race id", ErrInvalidResult)
	}
	if len(result.DriverIDs) != model.PredictionSize {
		return fmt.Errorf("%w: %s has %d drivers, want %d", ErrInvalidResult, result.RaceID, len(result.DriverIDs), model.PredictionSize)
	}
	seen := make(map[string]int, model.PredictionSize)
	for i, id := range result.DriverIDs {
		if id == "" {
			return fmt.Errorf("%w: %s position %d is empty", ErrInvalidResult, result.RaceID, i+1)
		}
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s driver %q at positions %d and %d", ErrInvalidResult, result.RaceID, id, prev+1, i+1)
		}
		if _, ok := c.drivers[id]; !ok {
			return fmt.Errorf("%w: %s unknown driver %q at position %d", ErrInvalidResult, result.RaceID, id, i+1)
		}
		seen[id] = i
	}
	return nil
}

// CheckPrediction returns the reason a prediction cannot be scored, or "".
func (c *Calculator) CheckPrediction(p model.Prediction) SkipReason {
	if p.OwnerID == "" {
		return SkipMissingOwner
	}
	if len(p.DriverIDs) != model.PredictionSize {
		return SkipDriverCount
	}
	seen := make(map[string]struct{}, model.PredictionSize)
	for _, id := range p.DriverIDs {
		if id == "" {
			return SkipEmptyDriver
		}
		if _, dup := seen[id]; dup {
			return SkipDuplicate
		}
		if _, ok := c.drivers[id]; !ok {
			return SkipUnknownDriver
		}
		seen[id] = struct{}{}
	}
	return ""
}

// Score evaluates one prediction against a validated result.
func (c *Calculator) Score(p model.Prediction, result model.RaceResult) (model.Score, Evaluation) {
	ev := Evaluate(c.table, p.DriverIDs, result.DriverIDs)
	return model.Score{
		RaceID:      c.RaceID(result.RaceID),
		OwnerID:     p.OwnerID,
		TotalPoints: ev.Total,
		Breakdown:   Encode(ev.Breakdown(c.DriverName)),
	}, ev
}

// Calculate scores every team with a prediction applicable to the race.
// Drafts are ordered by owner id. A malformed result is returned as an
// error wrapping ErrInvalidResult; malformed predictions are skipped.
func (c *Calculator) Calculate(result model.RaceResult, predictions []model.Prediction) (Run, error) {
	if err := c.ValidateResult(result); err != nil {
		return Run{}, err
	}
	run := Run{RaceID: c.RaceID(result.RaceID)}

	byOwner := make(map[string][]model.Prediction)
	for _, p := range predictions {
		if p.OwnerID == "" {
			if raceid.Equal(p.RaceID, result.RaceID) {
				run.Skipped = append(run.Skipped, Skip{RaceID: run.RaceID, Reason: SkipMissingOwner})
			}
			continue
		}
		byOwner[p.OwnerID] = append(byOwner[p.OwnerID], p)
	}

	owners := make([]string, 0, len(byOwner))
	for owner := range byOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		cand, ok := SelectPrediction(result.RaceID, byOwner[owner], c.schedule)
		if !ok || (cand.CarriedForward && !c.carryForward) {
			continue
		}
		if reason := c.CheckPrediction(cand.Prediction); reason != "" {
			run.Skipped = append(run.Skipped, Skip{OwnerID: owner, RaceID: run.RaceID, Reason: reason})
			continue
		}
		score, _ := c.Score(cand.Prediction, result)
		run.Drafts = append(run.Drafts, Draft{
			Score:          score,
			SourceRaceID:   raceid.Normalize(cand.Prediction.RaceID),
			CarriedForward: cand.CarriedForward,
		})
	}
	return run, nil
}

// CalculateScores is Calculate without the skip report.
func (c *Calculator) CalculateScores(result model.RaceResult, predictions []model.Prediction) ([]Draft, error) {
	run, err := c.Calculate(result, predictions)
	if err != nil {
		return nil, err
	}
	return run.Drafts, nil
}
