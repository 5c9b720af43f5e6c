// Package repository holds the season state and the standings index.
package repository

import (
	"context"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/types"
)

// SeasonStore provides read/write access to the season records.
type SeasonStore interface {
	// Snapshot returns a copy of every record.
	Snapshot(ctx context.Context) (consistency.Snapshot, error)

	// Result returns the official result of raceID.
	// Returns ErrResultNotFound if none is stored.
	Result(ctx context.Context, raceID string) (model.RaceResult, error)
	// SaveResult stores result, replacing any result for the same race.
	SaveResult(ctx context.Context, result model.RaceResult) error

	// ReplaceScores overwrites the stored score set.
	ReplaceScores(ctx context.Context, scores []model.Score) error
	// ReplaceStandings overwrites the stored standings.
	ReplaceStandings(ctx context.Context, entries []types.Entry) error
}

// StandingsIndex answers ranking queries over the season table.
type StandingsIndex interface {
	// Replace swaps the whole table.
	Replace(ctx context.Context, entries []types.Entry) error

	// Rank returns the competition rank and points of a team.
	// Returns ErrNotFound if the team is unknown.
	Rank(ctx context.Context, teamID string) (types.Entry, error)

	// TopN returns the top-N entries ordered by points desc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of teams in the table.
	Count(ctx context.Context) int
}
