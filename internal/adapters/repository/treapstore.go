package repository

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
	"github.com/okian/prixsix/pkg/metrics"
)

// Treap-based, in-memory StandingsIndex implementation.
//
// Ordering: points DESC, then teamID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal produces the table
// from first to last. Ranks are competition ranks: a team's rank is one
// more than the number of teams with strictly more points.

// view is an immutable published snapshot of the table head.
type view struct {
	top   []types.Entry // sorted, ranked; at most topCacheSize entries
	total int
}

// treap node
type node struct {
	id     string
	points int
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPoints, aID) should appear before (bPoints, bID).
func less(aPoints int, aID string, bPoints int, bID string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, points int) *node {
	if n == nil {
		return &node{id: id, points: points, prio: rand.Uint64(), size: 1}
	}
	if less(points, id, n.points, n.id) {
		n.left = insert(n.left, id, points)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, points)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, points int) *node {
	if n == nil {
		return nil
	}
	if points == n.points && id == n.id {
		// Merge children by rotating highest priority up until leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, points)
		}
	} else if less(points, id, n.points, n.id) {
		n.left = deleteNode(n.left, id, points)
	} else {
		n.right = deleteNode(n.right, id, points)
	}
	fix(n)
	return n
}

// countAbove returns the number of nodes with strictly more than points.
func countAbove(n *node, points int) int {
	count := 0
	for n != nil {
		if n.points > points {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit entries in table order.
func collectTopN(n *node, limit int, out *[]types.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, types.Entry{TeamID: n.id, Points: n.points})
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore keeps the standings in a treap for O(log n) updates and rank
// queries. The head of the table is published after every write for
// lock-free TopN reads.
type TreapStore struct {
	mu           sync.RWMutex
	root         *node
	byID         map[string]int
	topCacheSize int

	snapshot atomic.Pointer[view]
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{
		topCacheSize: 100,
		byID:         make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.snapshot.Store(&view{})
	return s
}

// Set records the season total of one team.
func (s *TreapStore) Set(ctx context.Context, teamID string, points int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	s.set(teamID, points)
	s.publishLocked()
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRepositoryTeamsTotal(count)
	return nil
}

func (s *TreapStore) set(teamID string, points int) {
	if old, ok := s.byID[teamID]; ok {
		if old == points {
			return
		}
		s.root = deleteNode(s.root, teamID, old)
	}
	s.byID[teamID] = points
	s.root = insert(s.root, teamID, points)
}

// Replace implements StandingsIndex. Teams missing from entries are removed.
func (s *TreapStore) Replace(ctx context.Context, entries []types.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	keep := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		keep[e.TeamID] = struct{}{}
	}

	s.mu.Lock()
	for id, pts := range s.byID {
		if _, ok := keep[id]; !ok {
			s.root = deleteNode(s.root, id, pts)
			delete(s.byID, id)
		}
	}
	for _, e := range entries {
		s.set(e.TeamID, e.Points)
	}
	s.publishLocked()
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRepositoryTeamsTotal(count)
	return nil
}

// Rank implements StandingsIndex in O(log n).
func (s *TreapStore) Rank(ctx context.Context, teamID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	if err := ctx.Err(); err != nil {
		return types.Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pts, ok := s.byID[teamID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, ErrNotFound
	}
	return types.Entry{Rank: countAbove(s.root, pts) + 1, TeamID: teamID, Points: pts}, nil
}

// TopN implements StandingsIndex. Requests within the cached head are
// served from the published snapshot.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if v := s.snapshot.Load(); n <= len(v.top) || len(v.top) == v.total {
		if n > len(v.top) {
			n = len(v.top)
		}
		out := make([]types.Entry, n)
		copy(out, v.top[:n])
		return out, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Entry, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &out)
	standings.AssignRanks(out)
	return out, nil
}

// Count implements StandingsIndex.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// publishLocked rebuilds and publishes the head snapshot (assumes the write
// lock is held).
func (s *TreapStore) publishLocked() {
	start := time.Now()

	top := make([]types.Entry, 0, min(s.topCacheSize, len(s.byID)))
	collectTopN(s.root, s.topCacheSize, &top)
	standings.AssignRanks(top)
	s.snapshot.Store(&view{top: top, total: len(s.byID)})

	metrics.RecordRepositorySnapshot(float64(time.Since(start).Microseconds()) / 1000)
}
