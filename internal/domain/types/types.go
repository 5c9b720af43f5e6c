// Package types contains common types used across the application
package types

// Entry is one row of the season standings.
type Entry struct {
	Rank   int    `json:"rank" yaml:"rank"`
	TeamID string `json:"team_id" yaml:"teamId"`
	Points int    `json:"points" yaml:"points"`
}

// Before reports whether e is listed ahead of o: more points first, then
// team id ascending so equal totals keep a stable order.
func (e Entry) Before(o Entry) bool {
	if e.Points != o.Points {
		return e.Points > o.Points
	}
	return e.TeamID < o.TeamID
}
