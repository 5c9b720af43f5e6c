package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
)

func summary() consistency.Summary {
	return consistency.Summary{
		CorrelationID: "run-7",
		Timestamp:     time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Results: []consistency.CheckResult{
			{Category: consistency.CategoryUsers, Status: consistency.StatusPass, Total: 3, Valid: 3, Issues: []consistency.Issue{}},
			{Category: consistency.CategoryScores, Status: consistency.StatusError, Total: 4, Valid: 3, Issues: []consistency.Issue{
				{Severity: consistency.SeverityError, Entity: "Australian-Grand-Prix_alice", Field: "totalPoints", Message: "stored total 40, recomputed 46"},
				{Severity: consistency.SeverityInfo, Entity: "Australian-Grand-Prix_bob", Field: "totalPoints", Message: "verified against prediction for Chinese-Grand-Prix"},
			}},
		},
		Passed: 1,
		Errors: 1,
	}
}

func update() standings.Update {
	return standings.Update{
		Race: []scoring.Draft{
			{Score: model.Score{RaceID: "Australian-Grand-Prix", OwnerID: "alice", TotalPoints: 46, Breakdown: "Verstappen+6, Bonus+10"}, SourceRaceID: "Australian-Grand-Prix"},
			{Score: model.Score{RaceID: "Australian-Grand-Prix", OwnerID: "bob", TotalPoints: 12, Breakdown: "Norris+6"}, SourceRaceID: "Chinese-Grand-Prix", CarriedForward: true},
		},
		Skipped:   []scoring.Skip{{OwnerID: "carol", RaceID: "Australian-Grand-Prix", Reason: scoring.SkipDuplicate}},
		Standings: []types.Entry{{Rank: 1, TeamID: "alice", Points: 46}, {Rank: 2, TeamID: "bob", Points: 12}},
	}
}

func TestConsole_Summary(t *testing.T) {
	tests := []struct {
		name            string
		verbose         bool
		wantContains    []string
		wantNotContains []string
	}{
		{
			name: "default hides informational issues",
			wantContains: []string{
				"✓ users",
				"3/3 valid",
				"✗ scores",
				"✘ Australian-Grand-Prix_alice.totalPoints: stored total 40, recomputed 46",
				"1 passed, 0 warnings, 1 errors (run run-7)",
			},
			wantNotContains: []string{"verified against prediction"},
		},
		{
			name:         "verbose shows informational issues",
			verbose:      true,
			wantContains: []string{"ℹ Australian-Grand-Prix_bob.totalPoints: verified against prediction for Chinese-Grand-Prix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewConsole(&buf, tt.verbose, false).Summary(summary()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			out := buf.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.wantNotContains {
				if strings.Contains(out, not) {
					t.Errorf("output should not contain %q:\n%s", not, out)
				}
			}
		})
	}
}

func TestConsole_RaceAndStandings(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false, false)

	if err := c.Race(update()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Standings(update().Standings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Verstappen+6, Bonus+10",
		"(carried forward from Chinese-Grand-Prix)",
		"skipped: duplicate_driver",
		"Team",
		"alice",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "   2") || !strings.HasSuffix(last, "12") {
		t.Errorf("unexpected standings row %q", last)
	}
}

func TestJSON_Summary(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(&buf, false).Summary(summary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got struct {
		CorrelationID string `json:"correlationId"`
		Status        string `json:"status"`
		Errors        int    `json:"errors"`
		Results       []struct {
			Category string `json:"category"`
			Issues   []struct {
				Severity string `json:"severity"`
				Field    string `json:"field"`
			} `json:"issues"`
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.CorrelationID != "run-7" || got.Status != "error" || got.Errors != 1 {
		t.Errorf("unexpected summary %+v", got)
	}
	if len(got.Results) != 2 || got.Results[1].Issues[0].Field != "totalPoints" {
		t.Errorf("unexpected results %+v", got.Results)
	}
}

func TestJSON_Race(t *testing.T) {
	var buf bytes.Buffer
	if err := New(&buf, true, false, false).Race(update()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got raceReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got.Scores) != 2 || !got.Scores[1].CarriedForward || got.Scores[1].SourceRaceID != "Chinese-Grand-Prix" {
		t.Errorf("unexpected scores %+v", got.Scores)
	}
	if len(got.Skipped) != 1 || got.Skipped[0].Reason != "duplicate_driver" {
		t.Errorf("unexpected skips %+v", got.Skipped)
	}
	if len(got.Standings) != 2 || got.Standings[0].TeamID != "alice" {
		t.Errorf("unexpected standings %+v", got.Standings)
	}
}

func TestJSON_EmptyStandings(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON(&buf, false).Standings(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected an empty array, got %q", buf.String())
	}
}
