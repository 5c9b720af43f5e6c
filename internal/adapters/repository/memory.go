package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/types"
)

// MemoryStore is a SeasonStore over an in-memory snapshot.
type MemoryStore struct {
	mu   sync.RWMutex
	snap consistency.Snapshot
}

// NewMemoryStore seeds a store with a copy of s.
func NewMemoryStore(s consistency.Snapshot) *MemoryStore {
	return &MemoryStore{snap: clone(s)}
}

// Snapshot implements SeasonStore.
func (m *MemoryStore) Snapshot(ctx context.Context) (consistency.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return consistency.Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.snap), nil
}

// Result implements SeasonStore.
func (m *MemoryStore) Result(ctx context.Context, raceID string) (model.RaceResult, error) {
	if err := ctx.Err(); err != nil {
		return model.RaceResult{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.snap.Results {
		if raceid.Equal(r.RaceID, raceID) {
			return cloneResult(r), nil
		}
	}
	return model.RaceResult{}, fmt.Errorf("%w: %s", ErrResultNotFound, raceID)
}

// SaveResult implements SeasonStore.
func (m *MemoryStore) SaveResult(ctx context.Context, result model.RaceResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.snap.Results {
		if raceid.Equal(r.RaceID, result.RaceID) {
			m.snap.Results[i] = cloneResult(result)
			return nil
		}
	}
	m.snap.Results = append(m.snap.Results, cloneResult(result))
	return nil
}

// ReplaceScores implements SeasonStore.
func (m *MemoryStore) ReplaceScores(ctx context.Context, scores []model.Score) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Scores = append([]model.Score(nil), scores...)
	return nil
}

// ReplaceStandings implements SeasonStore.
func (m *MemoryStore) ReplaceStandings(ctx context.Context, entries []types.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap.Standings = append([]types.Entry(nil), entries...)
	return nil
}

func cloneResult(r model.RaceResult) model.RaceResult {
	r.DriverIDs = append([]string(nil), r.DriverIDs...)
	return r
}

func clone(s consistency.Snapshot) consistency.Snapshot {
	out := consistency.Snapshot{
		Drivers:   append([]model.Driver(nil), s.Drivers...),
		Races:     append([]model.RaceDefinition(nil), s.Races...),
		Users:     append([]model.User(nil), s.Users...),
		Scores:    append([]model.Score(nil), s.Scores...),
		Standings: append([]types.Entry(nil), s.Standings...),
	}
	for _, p := range s.Predictions {
		p.DriverIDs = append([]string(nil), p.DriverIDs...)
		out.Predictions = append(out.Predictions, p)
	}
	for _, r := range s.Results {
		out.Results = append(out.Results, cloneResult(r))
	}
	for _, l := range s.Leagues {
		l.MemberIDs = append([]string(nil), l.MemberIDs...)
		out.Leagues = append(out.Leagues, l)
	}
	return out
}
