package consistency

import (
	"sort"

	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
)

// CheckStandings compares stored standings with the sum of stored scores.
func (c *Checker) CheckStandings(s Snapshot) CheckResult {
	return c.checkStandings(c.index(s))
}

func (c *Checker) checkStandings(ix *index) CheckResult {
	col := newCollector(CategoryStandings)
	totals := standings.Totals(ix.snap.Scores)

	ranked := make([]types.Entry, len(ix.snap.Standings))
	copy(ranked, ix.snap.Standings)
	standings.Rank(ranked)
	expectedRank := make(map[string]int, len(ranked))
	for _, en := range ranked {
		if _, dup := expectedRank[en.TeamID]; !dup {
			expectedRank[en.TeamID] = en.Rank
		}
	}

	seen := make(map[string]bool, len(ix.snap.Standings))
	for i, st := range ix.snap.Standings {
		e := col.entity(label(st.TeamID, "standing", i))

		if why := ix.dir.Explain(st.TeamID); why != "" {
			e.errorf("teamId", "%s", why)
		}
		if seen[st.TeamID] {
			e.errorf("teamId", "team listed more than once")
		}
		seen[st.TeamID] = true

		if want := totals[st.TeamID]; st.Points != want {
			e.errorWith("points", map[string]any{"stored": st.Points, "expected": want},
				"stored %d points, scores sum to %d", st.Points, want)
		}
		if want := expectedRank[st.TeamID]; st.Rank != want {
			e.warnf("rank", "rank %d, expected %d", st.Rank, want)
		}
		e.close()
	}

	missing := make([]string, 0)
	for team := range totals {
		if !seen[team] {
			missing = append(missing, team)
		}
	}
	sort.Strings(missing)
	for _, team := range missing {
		col.add(SeverityWarning, team, "teamId", "scored team missing from standings",
			map[string]any{"points": totals[team]})
	}

	return col.finish()
}

// CheckLeagues validates league ownership and membership.
func (c *Checker) CheckLeagues(s Snapshot) CheckResult {
	return c.checkLeagues(c.index(s))
}

func (c *Checker) checkLeagues(ix *index) CheckResult {
	col := newCollector(CategoryLeagues)
	var globals []string

	for i, l := range ix.snap.Leagues {
		e := col.entity(label(l.ID, "league", i))

		if l.Name == "" {
			e.warnf("name", "missing league name")
		}

		if l.IsGlobal {
			globals = append(globals, e.label)
			if l.OwnerID != model.GlobalLeagueOwner {
				e.warnf("ownerId", "global league owned by %q instead of %q", l.OwnerID, model.GlobalLeagueOwner)
			}
		} else {
			if why := ix.dir.Explain(l.OwnerID); why != "" {
				e.errorf("ownerId", "owner: %s", why)
			} else if !l.HasMember(l.OwnerID) {
				e.errorf("memberIds", "owner %q is not a member", l.OwnerID)
			}
		}

		seen := make(map[string]bool, len(l.MemberIDs))
		for _, m := range l.MemberIDs {
			if seen[m] {
				e.warnf("memberIds", "member %q listed more than once", m)
				continue
			}
			seen[m] = true
			if why := ix.dir.Explain(m); why != "" {
				e.errorf("memberIds", "member: %s", why)
			}
		}

		if l.IsGlobal {
			var missing []string
			for _, team := range ix.dir.Teams() {
				if !seen[team] {
					missing = append(missing, team)
				}
			}
			if len(missing) > 0 {
				e.c.add(SeverityWarning, e.label, "memberIds", "registered teams missing from the global league",
					map[string]any{"teams": missing})
			}
		}
		e.close()
	}

	if len(globals) > 1 {
		col.add(SeverityError, "leagues", "isGlobal", "more than one global league",
			map[string]any{"leagues": globals})
	}

	return col.finish()
}
