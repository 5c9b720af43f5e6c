// Package service wires the scoring engine, the season store, the
// standings index, the result queue and the consistency checker.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	resultqueue "github.com/okian/prixsix/internal/adapters/mq/queue"
	workerpool "github.com/okian/prixsix/internal/adapters/mq/worker"
	repository "github.com/okian/prixsix/internal/adapters/repository"
	"github.com/okian/prixsix/internal/domain/consistency"
	"github.com/okian/prixsix/internal/domain/dedupe"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/raceid"
	"github.com/okian/prixsix/internal/domain/scoring"
	"github.com/okian/prixsix/internal/domain/standings"
	"github.com/okian/prixsix/internal/domain/types"
	"github.com/okian/prixsix/pkg/logger"
	"github.com/okian/prixsix/pkg/metrics"
)

const (
	defaultQueueSize = 64
	defaultDedupe    = 1024
	stopTimeout      = 30 * time.Second
)

// Service owns the season state. Scoring writes are serialized; reads of
// the standings index are not.
type Service struct {
	// mu serializes every read-modify-write of the season store.
	mu sync.Mutex
	// stateMu guards the lifecycle fields below.
	stateMu sync.RWMutex

	store repository.SeasonStore
	index repository.StandingsIndex
	table scoring.Table
	now   func() time.Time

	queue      *resultqueue.InMemoryQueue
	workerPool *workerpool.Pool
	pending    dedupe.Deduper

	workerCount int
	queueSize   int
	dedupeSize  int
	started     bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of queue workers. It also bounds the
// fan-out of RescoreSeason.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending submitted results.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds how many pending results are remembered for
// duplicate detection. Zero or less means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTable sets the point table shared by scoring and the consistency checker.
func WithTable(t scoring.Table) Option {
	return func(s *Service) {
		s.table = t
	}
}

// WithStore sets the season store.
func WithStore(store repository.SeasonStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStandingsIndex sets the index serving rank queries.
func WithStandingsIndex(index repository.StandingsIndex) Option {
	return func(s *Service) {
		if index != nil {
			s.index = index
		}
	}
}

// WithClock overrides the wall clock used by the checker and the queue.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Without WithStore it starts from an empty season.
func New(opts ...Option) *Service {
	s := &Service{
		table:       scoring.DefaultTable(),
		now:         time.Now,
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupe,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore(consistency.Snapshot{})
	}
	if s.index == nil {
		s.index = repository.NewTreapStore()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("service")
	s.pending = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))

	return s
}

// Start validates the point table, loads the standings index from the store
// and starts the queue workers.
func (s *Service) Start(ctx context.Context) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.started {
		return nil
	}
	if err := s.table.Validate(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting scoring service...")

	if err := s.loadIndex(ctx); err != nil {
		return err
	}

	s.queue = resultqueue.NewInMemoryQueue(
		resultqueue.WithCapacity(s.queueSize),
		resultqueue.WithClock(s.now),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s, workerpool.WithLogger(s.logger))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("teams", s.index.Count(ctx)),
	)
	return nil
}

func (s *Service) loadIndex(ctx context.Context) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load season: %w", err)
	}
	entries := snap.Standings
	if len(entries) == 0 {
		entries = standings.Compute(snap.Scores)
	}
	if err := s.index.Replace(ctx, entries); err != nil {
		return fmt.Errorf("load standings index: %w", err)
	}
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping scoring service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "scoring service stopped")
}

// Submit queues a result for asynchronous scoring. It reports false when
// the service is not running or the queue rejects the result. A result
// identical to one still pending is accepted without being queued again.
func (s *Service) Submit(ctx context.Context, result model.RaceResult) bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if !s.started {
		s.logger.Warn(ctx, "result submitted to stopped service", logger.String("race_id", result.RaceID))
		return false
	}
	key := dedupe.ResultKey(result)
	if s.pending.SeenAndRecord(ctx, key) {
		metrics.RecordResultDuplicate()
		s.logger.Debug(ctx, "duplicate result ignored", logger.String("race_id", result.RaceID))
		return true
	}
	id, err := s.queue.Enqueue(ctx, result)
	if err != nil {
		s.pending.Unrecord(ctx, key)
		s.logger.Warn(ctx, "result not queued",
			logger.String("race_id", result.RaceID),
			logger.Error(err),
		)
		return false
	}
	s.logger.Debug(ctx, "result queued",
		logger.String("job_id", id),
		logger.String("race_id", result.RaceID),
	)
	return true
}

// Process implements worker.Processor.
func (s *Service) Process(ctx context.Context, job workerpool.Job) error {
	defer s.pending.Unrecord(ctx, dedupe.ResultKey(job.Result))
	_, err := s.ProcessResult(ctx, job.Result)
	return err
}

// ProcessResult stores result, scores every team for that race and
// recomputes the standings. Calls are serialized.
func (s *Service) ProcessResult(ctx context.Context, result model.RaceResult) (standings.Update, error) {
	start := time.Now()
	if err := s.table.Validate(); err != nil {
		return standings.Update{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return standings.Update{}, fmt.Errorf("load season: %w", err)
	}

	calc := s.calculator(snap)
	upd, err := standings.UpdateRaceScores(calc, result, snap.Predictions, snap.Scores)
	if err != nil {
		metrics.RecordResultRejected()
		metrics.RecordErrorByComponent("service", "invalid_result")
		s.logger.Warn(ctx, "race result rejected",
			logger.String("race_id", result.RaceID),
			logger.Error(err),
		)
		return standings.Update{}, err
	}
	metrics.RecordScoringLatency(elapsedMs(start))

	if err := s.store.SaveResult(ctx, result); err != nil {
		return standings.Update{}, fmt.Errorf("save result %s: %w", result.RaceID, err)
	}
	if err := s.persist(ctx, upd.Scores, upd.Standings); err != nil {
		return standings.Update{}, err
	}

	metrics.RecordResultProcessed()
	s.recordRun(upd.Race, upd.Skipped)

	s.logger.Info(ctx, "race scored",
		logger.String("race_id", result.RaceID),
		logger.Int("scores", len(upd.Race)),
		logger.Int("skipped", len(upd.Skipped)),
		logger.Int("teams", len(upd.Standings)),
		logger.Duration("took", time.Since(start)),
	)
	return upd, nil
}

func (s *Service) calculator(snap consistency.Snapshot) *scoring.Calculator {
	return scoring.NewCalculator(s.table, snap.Drivers, scoring.WithSchedule(raceid.Index(snap.Races)))
}

// RescoreSeason recomputes the scores of every stored result. Races are
// scored concurrently; the merge into the season is sequential in result
// order. Any invalid result aborts the rescore and nothing is written.
func (s *Service) RescoreSeason(ctx context.Context) (standings.Update, error) {
	start := time.Now()
	if err := s.table.Validate(); err != nil {
		return standings.Update{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return standings.Update{}, fmt.Errorf("load season: %w", err)
	}

	calc := s.calculator(snap)
	runs := make([]scoring.Run, len(snap.Results))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, result := range snap.Results {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run, err := calc.Calculate(result, snap.Predictions)
			if err != nil {
				return fmt.Errorf("rescore %s: %w", result.RaceID, err)
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordResultRejected()
		metrics.RecordErrorByComponent("service", "rescore_failed")
		s.logger.Error(ctx, "season rescore failed", logger.Error(err))
		return standings.Update{}, err
	}

	var upd standings.Update
	scores := snap.Scores
	for _, run := range runs {
		scores = standings.Merge(scores, standings.Drafted(run.Drafts))
		upd.Race = append(upd.Race, run.Drafts...)
		upd.Skipped = append(upd.Skipped, run.Skipped...)
	}
	upd.Scores = scores
	upd.Standings = standings.Compute(scores)

	if err := s.persist(ctx, upd.Scores, upd.Standings); err != nil {
		return standings.Update{}, err
	}
	metrics.RecordScoringLatency(elapsedMs(start))
	s.recordRun(upd.Race, upd.Skipped)

	s.logger.Info(ctx, "season rescored",
		logger.Int("races", len(runs)),
		logger.Int("scores", len(upd.Race)),
		logger.Int("skipped", len(upd.Skipped)),
		logger.Duration("took", time.Since(start)),
	)
	return upd, nil
}

func (s *Service) persist(ctx context.Context, scores []model.Score, entries []types.Entry) error {
	if err := s.store.ReplaceScores(ctx, scores); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	if err := s.store.ReplaceStandings(ctx, entries); err != nil {
		return fmt.Errorf("save standings: %w", err)
	}
	if err := s.index.Replace(ctx, entries); err != nil {
		return fmt.Errorf("update standings index: %w", err)
	}
	metrics.RecordStandingsUpdate()
	return nil
}

func (s *Service) recordRun(drafts []scoring.Draft, skipped []scoring.Skip) {
	metrics.RecordScoresWritten(len(drafts))
	carried := 0
	for _, d := range drafts {
		if d.CarriedForward {
			carried++
		}
	}
	metrics.RecordCarriedForward(carried)
	for _, sk := range skipped {
		metrics.RecordPredictionSkipped(string(sk.Reason))
	}
}

// Check runs every consistency validator over the current season.
func (s *Service) Check(ctx context.Context) (consistency.Summary, error) {
	start := time.Now()

	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return consistency.Summary{}, fmt.Errorf("load season: %w", err)
	}

	sum := consistency.New(s.table, consistency.WithClock(s.now)).Run(snap)

	for _, r := range sum.Results {
		for _, sev := range []consistency.Severity{consistency.SeverityError, consistency.SeverityWarning, consistency.SeverityInfo} {
			metrics.RecordConsistencyIssues(string(r.Category), string(sev), r.Count(sev))
		}
		metrics.UpdateConsistencyStatus(string(r.Category), statusCode(r.Status))
	}
	metrics.RecordConsistencyRun(elapsedMs(start))

	s.logger.Info(ctx, "consistency check finished",
		logger.String("correlation_id", sum.CorrelationID),
		logger.String("status", string(sum.Status())),
		logger.Int("passed", sum.Passed),
		logger.Int("warnings", sum.Warnings),
		logger.Int("errors", sum.Errors),
	)
	return sum, nil
}

func statusCode(st consistency.Status) int {
	switch st {
	case consistency.StatusError:
		return metrics.StatusError
	case consistency.StatusWarning:
		return metrics.StatusWarning
	default:
		return metrics.StatusPass
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Standings returns the top n entries of the season table.
func (s *Service) Standings(ctx context.Context, n int) ([]types.Entry, error) {
	return s.index.TopN(ctx, n)
}

// Rank returns the rank and points of one team.
func (s *Service) Rank(ctx context.Context, teamID string) (types.Entry, error) {
	return s.index.Rank(ctx, teamID)
}

// Season returns a copy of the stored season.
func (s *Service) Season(ctx context.Context) (consistency.Snapshot, error) {
	return s.store.Snapshot(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"teams":       s.index.Count(ctx),
		"pending":     s.pending.Size(),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	// counters of the last run survive Stop
	if s.workerPool != nil {
		ws := s.workerPool.Stats()
		stats["processed"] = ws.Processed
		stats["failed"] = ws.Failed
	}

	return stats
}
