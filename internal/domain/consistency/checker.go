// Package consistency re-derives and cross-checks every score, standing and
// reference in a season snapshot.
//
// Validators never fail: every finding is returned as an Issue. Severity
// error means the data is wrong, warning means it is suspicious, info marks
// an expected state worth recording. Each validator yields a CheckResult
// whose status is the worst severity found; info never raises it.
package consistency

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/types"
)

// Severity of an issue.
type Severity string

// Severity levels.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Status of a category.
type Status string

// Category statuses.
const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Category names one validator.
type Category string

// Validator categories, in run order.
const (
	CategoryUsers        Category = "users"
	CategoryDrivers      Category = "drivers"
	CategoryRaces        Category = "races"
	CategoryPredictions  Category = "predictions"
	CategoryTeamCoverage Category = "team_coverage"
	CategoryResults      Category = "results"
	CategoryScores       Category = "scores"
	CategoryStandings    Category = "standings"
	CategoryLeagues      Category = "leagues"
)

// Categories lists every validator category in run order.
func Categories() []Category {
	return []Category{
		CategoryUsers, CategoryDrivers, CategoryRaces, CategoryPredictions, CategoryTeamCoverage,
		CategoryResults, CategoryScores, CategoryStandings, CategoryLeagues,
	}
}

// Issue is one finding.
type Issue struct {
	Severity Severity       `json:"severity"`
	Entity   string         `json:"entity"`
	Field    string         `json:"field,omitempty"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// CheckResult is the output of one validator. Valid counts the checked
// entities that produced no error.
type CheckResult struct {
	Category Category `json:"category"`
	Status   Status   `json:"status"`
	Total    int      `json:"total"`
	Valid    int      `json:"valid"`
	Issues   []Issue  `json:"issues"`
}

// Count returns the number of issues at severity sev.
func (r CheckResult) Count(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// Snapshot is the complete in-memory state the checker validates.
type Snapshot struct {
	Drivers     []model.Driver
	Races       []model.RaceDefinition
	Users       []model.User
	Predictions []model.Prediction
	Results     []model.RaceResult
	Scores      []model.Score
	Standings   []types.Entry
	Leagues     []model.League
}

// Checker runs the validators. It holds no state between calls.
type Checker struct {
	table scoring.Table
	now   func() time.Time
	newID func() string
}

// New creates a checker that verifies scores against table, the same table
// the calculator scores with.
func New(table scoring.Table, opts ...Option) *Checker {
	c := &Checker{
		table: table,
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// index holds the lookups shared by the validators.
type index struct {
	snap     Snapshot
	dir      *model.TeamDirectory
	schedule *raceid.Schedule
	calc     *scoring.Calculator
	drivers  map[string]model.Driver
	byName   map[string]model.Driver
	results  map[string]model.RaceResult
	byOwner  map[string][]model.Prediction
}

func (c *Checker) index(s Snapshot) *index {
	schedule := raceid.Index(s.Races)
	ix := &index{
		snap:     s,
		dir:      model.NewTeamDirectory(s.Users),
		schedule: schedule,
		calc:     scoring.NewCalculator(c.table, s.Drivers, scoring.WithSchedule(schedule)),
		drivers:  make(map[string]model.Driver, len(s.Drivers)),
		byName:   make(map[string]model.Driver, len(s.Drivers)),
		results:  make(map[string]model.RaceResult, len(s.Results)),
		byOwner:  make(map[string][]model.Prediction),
	}
	for _, d := range s.Drivers {
		if _, dup := ix.drivers[d.ID]; !dup {
			ix.drivers[d.ID] = d
		}
		key := strings.ToLower(strings.TrimSpace(d.Name))
		if _, dup := ix.byName[key]; !dup && key != "" {
			ix.byName[key] = d
		}
	}
	for _, r := range s.Results {
		key := raceid.NormalizeForComparison(r.RaceID)
		if _, dup := ix.results[key]; !dup {
			ix.results[key] = r
		}
	}
	for _, p := range s.Predictions {
		ix.byOwner[p.OwnerID] = append(ix.byOwner[p.OwnerID], p)
	}
	return ix
}

func (ix *index) driverByName(name string) (model.Driver, bool) {
	d, ok := ix.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

func (ix *index) result(raceID string) (model.RaceResult, bool) {
	r, ok := ix.results[raceid.NormalizeForComparison(raceID)]
	return r, ok
}

// collector accumulates the issues of one validator.
type collector struct {
	res CheckResult
}

func newCollector(cat Category) *collector {
	return &collector{res: CheckResult{Category: cat, Issues: []Issue{}}}
}

// add records an issue that belongs to the collection rather than to one
// entity.
func (c *collector) add(sev Severity, entity, field, msg string, details map[string]any) {
	c.res.Issues = append(c.res.Issues, Issue{Severity: sev, Entity: entity, Field: field, Message: msg, Details: details})
}

// entity starts checking one entity.
func (c *collector) entity(label string) *entity {
	c.res.Total++
	return &entity{c: c, label: label}
}

func (c *collector) finish() CheckResult {
	c.res.Status = StatusPass
	for _, is := range c.res.Issues {
		switch is.Severity {
		case SeverityError:
			c.res.Status = StatusError
		case SeverityWarning:
			if c.res.Status != StatusError {
				c.res.Status = StatusWarning
			}
		}
	}
	return c.res
}

type entity struct {
	c      *collector
	label  string
	failed bool
	closed bool
}

func (e *entity) errorf(field, format string, args ...any) {
	e.failed = true
	e.c.add(SeverityError, e.label, field, fmt.Sprintf(format, args...), nil)
}

func (e *entity) errorWith(field string, details map[string]any, format string, args ...any) {
	e.failed = true
	e.c.add(SeverityError, e.label, field, fmt.Sprintf(format, args...), details)
}

func (e *entity) warnf(field, format string, args ...any) {
	e.c.add(SeverityWarning, e.label, field, fmt.Sprintf(format, args...), nil)
}

func (e *entity) infoWith(field string, details map[string]any, format string, args ...any) {
	e.c.add(SeverityInfo, e.label, field, fmt.Sprintf(format, args...), details)
}

// fail marks the entity as not valid without recording an issue.
func (e *entity) fail() {
	e.failed = true
}

func (e *entity) close() {
	if e.closed {
		return
	}
	e.closed = true
	if !e.failed {
		e.c.res.Valid++
	}
}

func label(id string, kind string, i int) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return fmt.Sprintf("%s #%d", kind, i+1)
}
