package report

import (
	"encoding/json"
	"io"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
)

// JSON writes machine-readable reports.
type JSON struct {
	out    io.Writer
	indent bool
}

// NewJSON creates a JSON reporter.
func NewJSON(out io.Writer, indent bool) *JSON {
	return &JSON{out: out, indent: indent}
}

func (j *JSON) encode(v any) error {
	enc := json.NewEncoder(j.out)
	if j.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// summaryReport adds the overall status to a Summary.
type summaryReport struct {
	consistency.Summary
	Status consistency.Status `json:"status"`
}

// Summary writes the consistency summary.
func (j *JSON) Summary(sum consistency.Summary) error {
	return j.encode(summaryReport{Summary: sum, Status: sum.Status()})
}

type raceScore struct {
	TeamID         string `json:"team_id"`
	Points         int    `json:"points"`
	Breakdown      string `json:"breakdown"`
	SourceRaceID   string `json:"source_race_id"`
	CarriedForward bool   `json:"carried_forward"`
}

type skipped struct {
	TeamID string `json:"team_id,omitempty"`
	Reason string `json:"reason"`
}

type raceReport struct {
	Scores    []raceScore   `json:"scores"`
	Skipped   []skipped     `json:"skipped"`
	Standings []types.Entry `json:"standings"`
}

// Race writes the scores of one race with the resulting standings.
func (j *JSON) Race(u standings.Update) error {
	r := raceReport{Scores: []raceScore{}, Skipped: []skipped{}, Standings: u.Standings}
	for _, d := range u.Race {
		r.Scores = append(r.Scores, raceScore{
			TeamID:         d.OwnerID,
			Points:         d.TotalPoints,
			Breakdown:      d.Breakdown,
			SourceRaceID:   d.SourceRaceID,
			CarriedForward: d.CarriedForward,
		})
	}
	for _, s := range u.Skipped {
		r.Skipped = append(r.Skipped, skipped{TeamID: s.OwnerID, Reason: string(s.Reason)})
	}
	return j.encode(r)
}

// Standings writes the ranked table.
func (j *JSON) Standings(entries []types.Entry) error {
	if entries == nil {
		entries = []types.Entry{}
	}
	return j.encode(entries)
}
