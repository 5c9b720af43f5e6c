// Package scoring converts a team's ranked prediction into points against
// the official result.
//
// Every point value lives in Table. The calculator and the consistency
// checker are handed the same Table value; nothing else in the module
// carries a point literal.
package scoring

import (
	"fmt"

	"github.com/okian/prixsix/internal/domain/model"
)

// Default point values.
const (
	defaultExactPoints     = 6
	defaultOneOffPoints    = 4
	defaultTwoOffPoints    = 3
	defaultThreePlusPoints = 2
	defaultBonusPoints     = 10
)

// NotPlaced is the actual position of a driver outside the official top six.
const NotPlaced = -1

// Table holds the point value of each position delta and the all-six bonus.
type Table struct {
	Exact     int `json:"exact" yaml:"exact"`
	OneOff    int `json:"oneOff" yaml:"oneOff"`
	TwoOff    int `json:"twoOff" yaml:"twoOff"`
	ThreePlus int `json:"threePlus" yaml:"threePlus"`
	Bonus     int `json:"bonus" yaml:"bonus"`
}

// DefaultTable returns the season point table.
func DefaultTable() Table {
	return Table{
		Exact:     defaultExactPoints,
		OneOff:    defaultOneOffPoints,
		TwoOff:    defaultTwoOffPoints,
		ThreePlus: defaultThreePlusPoints,
		Bonus:     defaultBonusPoints,
	}
}

// Validate rejects negative values and tiers that reward a larger miss more
// than a smaller one.
func (t Table) Validate() error {
	switch {
	case t.Exact < 0 || t.OneOff < 0 || t.TwoOff < 0 || t.ThreePlus < 0 || t.Bonus < 0:
		return fmt.Errorf("%w: negative point value", ErrInvalidTable)
	case t.Exact < t.OneOff || t.OneOff < t.TwoOff || t.TwoOff < t.ThreePlus:
		return fmt.Errorf("%w: tiers must not increase with distance", ErrInvalidTable)
	}
	return nil
}

// MaxRacePoints is the most a single race prediction can earn.
func (t Table) MaxRacePoints() int {
	return model.PredictionSize*t.Exact + t.Bonus
}

// PointsFor returns the points of a driver predicted at position predicted
// (0-indexed) who finished at actual, or NotPlaced.
func (t Table) PointsFor(predicted, actual int) int {
	if actual == NotPlaced || actual < 0 {
		return 0
	}
	delta := predicted - actual
	if delta < 0 {
		delta = -delta
	}
	switch delta {
	case 0:
		return t.Exact
	case 1:
		return t.OneOff
	case 2:
		return t.TwoOff
	default:
		return t.ThreePlus
	}
}

// DriverPoints is the outcome of one predicted driver.
type DriverPoints struct {
	DriverID  string
	Predicted int
	Actual    int
	Points    int
}

// Evaluation is the outcome of one prediction against one result.
type Evaluation struct {
	Drivers     []DriverPoints
	BonusEarned bool
	Bonus       int
	Total       int
}

// Evaluate scores predicted against actual. Both are ordered driver ids;
// callers validate shape beforehand.
func Evaluate(t Table, predicted, actual []string) Evaluation {
	positions := make(map[string]int, len(actual))
	for i, id := range actual {
		positions[id] = i
	}

	ev := Evaluation{Drivers: make([]DriverPoints, 0, len(predicted))}
	placed := 0
	for i, id := range predicted {
		pos, ok := positions[id]
		if !ok {
			pos = NotPlaced
		} else {
			placed++
		}
		pts := t.PointsFor(i, pos)
		ev.Drivers = append(ev.Drivers, DriverPoints{DriverID: id, Predicted: i, Actual: pos, Points: pts})
		ev.Total += pts
	}

	if len(predicted) == model.PredictionSize && placed == model.PredictionSize {
		ev.BonusEarned = true
		ev.Bonus = t.Bonus
		ev.Total += t.Bonus
	}
	return ev
}

// AllPlaced reports whether every predicted driver appears in actual.
func AllPlaced(predicted, actual []string) bool {
	if len(predicted) != model.PredictionSize {
		return false
	}
	in := make(map[string]struct{}, len(actual))
	for _, id := range actual {
		in[id] = struct{}{}
	}
	for _, id := range predicted {
		if _, ok := in[id]; !ok {
			return false
		}
	}
	return true
}

// Breakdown renders the evaluation with display names from name.
func (e Evaluation) Breakdown(name func(driverID string) string) Breakdown {
	b := Breakdown{Entries: make([]Entry, 0, len(e.Drivers))}
	for _, d := range e.Drivers {
		b.Entries = append(b.Entries, Entry{Name: name(d.DriverID), Points: d.Points})
	}
	if e.BonusEarned {
		b.HasBonus = true
		b.Bonus = e.Bonus
	}
	return b
}
