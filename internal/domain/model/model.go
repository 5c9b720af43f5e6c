// Package model contains domain records passed between layers.
//
// Records are plain values. The scoring and consistency packages never
// mutate them; they receive snapshots and return derived snapshots.
package model

import "time"

// PredictionSize is the number of drivers in a prediction and in an
// official result.
const PredictionSize = 6

// LateJoinerRaceID is the sentinel race identifier of late-joiner handicap
// scores. Such scores have no prediction or result behind them.
const LateJoinerRaceID = "late-joiner-handicap"

// GlobalLeagueOwner owns the system-wide league.
const GlobalLeagueOwner = "system"

// Driver is a member of the season roster.
type Driver struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Number int    `yaml:"number" json:"number"`
	Team   string `yaml:"team" json:"team"`
}

// RaceDefinition is one weekend of the schedule. A sprint weekend is
// predicted and scored twice: once for the sprint, once for the grand prix.
type RaceDefinition struct {
	Name           string    `yaml:"name" json:"name"`
	QualifyingTime time.Time `yaml:"qualifyingTime" json:"qualifyingTime"`
	RaceTime       time.Time `yaml:"raceTime" json:"raceTime"`
	HasSprint      bool      `yaml:"hasSprint" json:"hasSprint"`
}

// Prediction is a team's ranked pick of the top six for a race.
// DriverIDs[i] is the driver predicted to finish at position i (0-indexed).
type Prediction struct {
	OwnerID     string    `json:"ownerId"`
	RaceID      string    `json:"raceId"`
	DriverIDs   []string  `json:"driverIds"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// RaceResult is the official top six of a race.
type RaceResult struct {
	RaceID    string   `yaml:"raceId" json:"raceId"`
	DriverIDs []string `yaml:"driverIds" json:"driverIds"`
}

// Score is the points a team earned for one race.
type Score struct {
	RaceID      string `yaml:"raceId" json:"raceId"`
	OwnerID     string `yaml:"ownerId" json:"ownerId"`
	TotalPoints int    `yaml:"totalPoints" json:"totalPoints"`
	Breakdown   string `yaml:"breakdown" json:"breakdown"`
}

// IsHandicap reports whether s is a late-joiner handicap adjustment.
func (s Score) IsHandicap() bool {
	return s.RaceID == LateJoinerRaceID
}

// League is a membership set over team identifiers.
type League struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	OwnerID   string   `yaml:"ownerId" json:"ownerId"`
	MemberIDs []string `yaml:"memberIds" json:"memberIds"`
	IsGlobal  bool     `yaml:"isGlobal" json:"isGlobal"`
}

// HasMember reports whether teamID was explicitly added to the league.
// A secondary team is never implied by membership of its primary team.
func (l League) HasMember(teamID string) bool {
	for _, id := range l.MemberIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// User is a registered account. An account always owns a primary team and
// may own a secondary one.
type User struct {
	ID                string `yaml:"id" json:"id"`
	Email             string `yaml:"email" json:"email"`
	TeamName          string `yaml:"teamName" json:"teamName"`
	SecondaryTeamName string `yaml:"secondaryTeamName" json:"secondaryTeamName,omitempty"`
}

// HasSecondaryTeam reports whether the account configured a second team.
func (u User) HasSecondaryTeam() bool {
	return u.SecondaryTeamName != ""
}
