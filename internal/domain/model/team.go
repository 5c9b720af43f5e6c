package model

import (
	"sort"
	"strconv"
	"strings"
)

// SecondaryTeamSuffix marks the identifier of an account's second team.
const SecondaryTeamSuffix = "-secondary"

// IsSecondaryTeamID reports whether teamID names a secondary team.
func IsSecondaryTeamID(teamID string) bool {
	return len(teamID) > len(SecondaryTeamSuffix) && strings.HasSuffix(teamID, SecondaryTeamSuffix)
}

// BaseAccountID returns the account that owns teamID. Primary team ids are
// returned unchanged.
func BaseAccountID(teamID string) string {
	if IsSecondaryTeamID(teamID) {
		return strings.TrimSuffix(teamID, SecondaryTeamSuffix)
	}
	return teamID
}

// SecondaryTeamID returns the secondary team identifier of an account.
func SecondaryTeamID(accountID string) string {
	return accountID + SecondaryTeamSuffix
}

// TeamRef is a resolved team identifier.
type TeamRef struct {
	TeamID    string
	User      User
	Secondary bool
}

// Name returns the display name of the team.
func (t TeamRef) Name() string {
	if t.Secondary {
		return t.User.SecondaryTeamName
	}
	return t.User.TeamName
}

// TeamDirectory resolves team identifiers against the registered users.
type TeamDirectory struct {
	users map[string]User
}

// NewTeamDirectory indexes users by id. Later duplicates win.
func NewTeamDirectory(users []User) *TeamDirectory {
	d := &TeamDirectory{users: make(map[string]User, len(users))}
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		d.users[u.ID] = u
	}
	return d
}

// Resolve returns the team behind teamID. A secondary id resolves only when
// the base account exists and has a secondary team configured.
func (d *TeamDirectory) Resolve(teamID string) (TeamRef, bool) {
	if teamID == "" {
		return TeamRef{}, false
	}
	if u, ok := d.users[teamID]; ok {
		return TeamRef{TeamID: teamID, User: u}, true
	}
	if !IsSecondaryTeamID(teamID) {
		return TeamRef{}, false
	}
	u, ok := d.users[BaseAccountID(teamID)]
	if !ok || !u.HasSecondaryTeam() {
		return TeamRef{}, false
	}
	return TeamRef{TeamID: teamID, User: u, Secondary: true}, true
}

// Account returns the registered account with id accountID.
func (d *TeamDirectory) Account(accountID string) (User, bool) {
	u, ok := d.users[accountID]
	return u, ok
}

// Explain describes why teamID does not resolve, or returns "" when it does.
func (d *TeamDirectory) Explain(teamID string) string {
	switch {
	case teamID == "":
		return "missing team id"
	case d.Valid(teamID):
		return ""
	case !IsSecondaryTeamID(teamID):
		return "unknown team " + strconv.Quote(teamID)
	}
	base := BaseAccountID(teamID)
	if _, ok := d.users[base]; !ok {
		return "secondary team of unknown account " + strconv.Quote(base)
	}
	return "account " + strconv.Quote(base) + " has no secondary team"
}

// Valid reports whether teamID resolves.
func (d *TeamDirectory) Valid(teamID string) bool {
	_, ok := d.Resolve(teamID)
	return ok
}

// Teams returns every registered team id, primary and secondary, sorted.
func (d *TeamDirectory) Teams() []string {
	out := make([]string, 0, len(d.users)*2)
	for id, u := range d.users {
		out = append(out, id)
		if u.HasSecondaryTeam() {
			out = append(out, SecondaryTeamID(id))
		}
	}
	sort.Strings(out)
	return out
}
