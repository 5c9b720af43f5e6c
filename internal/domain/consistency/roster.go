package consistency

import (
	"net/mail"
	"sort"
	"strings"

	"github.com/okian/prixsix/internal/domain/model"
)

const (
	minDriverNumber = 1
	maxDriverNumber = 99
	driversPerTeam  = 2
)

// CheckUsers validates the registered accounts and their team names.
func (c *Checker) CheckUsers(s Snapshot) CheckResult {
	return c.checkUsers(c.index(s))
}

func (c *Checker) checkUsers(ix *index) CheckResult {
	col := newCollector(CategoryUsers)
	seen := make(map[string]bool, len(ix.snap.Users))
	teamNames := make(map[string][]string)

	for i, u := range ix.snap.Users {
		e := col.entity(label(u.ID, "user", i))

		switch {
		case u.ID == "":
			e.errorf("id", "missing user id")
		case seen[u.ID]:
			e.errorf("id", "duplicate user id %q", u.ID)
		}
		seen[u.ID] = true

		if strings.TrimSpace(u.TeamName) == "" {
			e.errorf("teamName", "missing team name")
		} else {
			key := strings.ToLower(strings.TrimSpace(u.TeamName))
			teamNames[key] = append(teamNames[key], u.ID)
		}

		if u.HasSecondaryTeam() {
			if strings.EqualFold(strings.TrimSpace(u.SecondaryTeamName), strings.TrimSpace(u.TeamName)) {
				e.warnf("secondaryTeamName", "secondary team name equals primary team name %q", u.TeamName)
			} else {
				key := strings.ToLower(strings.TrimSpace(u.SecondaryTeamName))
				teamNames[key] = append(teamNames[key], model.SecondaryTeamID(u.ID))
			}
		}

		switch {
		case strings.TrimSpace(u.Email) == "":
			e.warnf("email", "missing email")
		case !validEmail(u.Email):
			e.warnf("email", "malformed email %q", u.Email)
		}
		e.close()
	}

	names := make([]string, 0, len(teamNames))
	for name, teams := range teamNames {
		if len(teams) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		col.add(SeverityWarning, name, "teamName", "team name used by more than one team",
			map[string]any{"teams": teamNames[name]})
	}

	return col.finish()
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

// CheckDrivers validates the season roster.
func (c *Checker) CheckDrivers(s Snapshot) CheckResult {
	return c.checkDrivers(c.index(s))
}

func (c *Checker) checkDrivers(ix *index) CheckResult {
	col := newCollector(CategoryDrivers)
	seen := make(map[string]bool, len(ix.snap.Drivers))
	numbers := make(map[int][]string)
	teams := make(map[string][]string)

	for i, d := range ix.snap.Drivers {
		e := col.entity(label(d.ID, "driver", i))

		switch {
		case d.ID == "":
			e.errorf("id", "missing driver id")
		case seen[d.ID]:
			e.errorf("id", "duplicate driver id %q", d.ID)
		}
		seen[d.ID] = true

		if strings.TrimSpace(d.Name) == "" {
			e.errorf("name", "missing driver name")
		}
		if strings.TrimSpace(d.Team) == "" {
			e.errorf("team", "missing constructor")
		} else {
			teams[d.Team] = append(teams[d.Team], e.label)
		}

		if d.Number < minDriverNumber || d.Number > maxDriverNumber {
			e.warnf("number", "car number %d outside %d..%d", d.Number, minDriverNumber, maxDriverNumber)
		} else {
			numbers[d.Number] = append(numbers[d.Number], e.label)
		}
		e.close()
	}

	nums := make([]int, 0, len(numbers))
	for n, ids := range numbers {
		if len(ids) > 1 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	for _, n := range nums {
		col.add(SeverityWarning, strings.Join(numbers[n], ","), "number", "car number shared by more than one driver",
			map[string]any{"number": n, "drivers": numbers[n]})
	}

	constructors := make([]string, 0, len(teams))
	for t, ids := range teams {
		if len(ids) > driversPerTeam {
			constructors = append(constructors, t)
		}
	}
	sort.Strings(constructors)
	for _, t := range constructors {
		col.add(SeverityWarning, t, "team", "constructor fields more than two drivers",
			map[string]any{"drivers": teams[t]})
	}

	return col.finish()
}
