package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/prixsix/internal/adapters/report"
	"github.com/okian/prixsix/internal/adapters/repository"
	"github.com/okian/prixsix/internal/adapters/snapshot"
	app "github.com/okian/prixsix/internal/app"
	"github.com/okian/prixsix/internal/config"
	"github.com/okian/prixsix/internal/domain/model"
	"github.com/okian/prixsix/internal/domain/types"
	"github.com/okian/prixsix/pkg/logger"
	"github.com/okian/prixsix/pkg/metrics"
)

const exitCheckFailed = 2

var (
	errCheckFailed = errors.New("consistency check failed")
	errNotQueued   = errors.New("result not queued")
	errBatchFailed = errors.New("races failed to score")
)

// flags shared by every subcommand.
type rootFlags struct {
	snapshot    string
	metricsFile string
	asJSON      bool
	verbose     bool
	noColor     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &rootFlags{}

	root := &cobra.Command{
		Use:           "prixsix",
		Short:         "Prediction league scoring and consistency engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.snapshot, "snapshot", "", "Season file (default from config)")
	pf.StringVar(&f.metricsFile, "metrics-file", "", "Write a Prometheus textfile export here after the command")
	pf.BoolVar(&f.asJSON, "json", false, "Print JSON instead of the console report")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Include informational issues and passing categories")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		scoreCmd(f, stdout, stderr),
		rescoreCmd(f, stdout, stderr),
		checkCmd(f, stdout, stderr),
		standingsCmd(f, stdout, stderr),
	)
	return root
}

// session is one command invocation over a loaded season.
type session struct {
	store    *repository.MemoryStore
	svc      *app.Service
	reporter report.Reporter
	log      logger.Logger
}

// withSession loads config and the season, starts the service, runs fn and
// then stops the service and exports metrics, whether fn failed or not.
func withSession(cmd *cobra.Command, f *rootFlags, stdout, stderr io.Writer, fn func(ctx context.Context, s *session) error) (err error) {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if f.snapshot != "" {
		cfg.Snapshot = f.snapshot
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("cli")

	season, err := snapshot.Load(cfg.Snapshot)
	if err != nil {
		return err
	}
	store := repository.NewMemoryStore(season)
	svc := app.New(
		app.WithLogger(logger.Get()),
		app.WithStore(store),
		app.WithTable(cfg.Table()),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		svc.Stop()
		if cfg.MetricsFile == "" {
			return
		}
		if werr := metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			log.Error(ctx, "metrics export failed", logger.String("path", cfg.MetricsFile), logger.Error(werr))
			if err == nil {
				err = werr
			}
		}
	}()

	return fn(ctx, &session{
		store:    store,
		svc:      svc,
		reporter: report.New(stdout, f.asJSON, f.verbose, !f.noColor),
		log:      log,
	})
}

// save writes the current season to path.
func (s *session) save(ctx context.Context, path string) error {
	season, err := s.svc.Season(ctx)
	if err != nil {
		return err
	}
	if err := snapshot.Save(path, season); err != nil {
		return err
	}
	s.log.Info(ctx, "season written", logger.String("path", path))
	return nil
}

func scoreCmd(f *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		races   []string
		drivers []string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score races and recompute the standings",
		Long: `Score races of the season. The official result is read from the season
file unless --drivers gives the top six in finishing order. Repeat --race to
score several stored results through the worker queue; the standings are
printed once every race is done.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(races) > 1 && len(drivers) > 0 {
				return errors.New("--drivers needs exactly one --race")
			}
			return withSession(cmd, f, stdout, stderr, func(ctx context.Context, s *session) error {
				var err error
				if len(races) > 1 {
					err = s.scoreBatch(ctx, races)
				} else {
					err = s.scoreOne(ctx, races[0], drivers)
				}
				if err != nil {
					return err
				}
				if out != "" {
					return s.save(ctx, out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&races, "race", nil, "Race id or label, repeatable")
	cmd.Flags().StringSliceVar(&drivers, "drivers", nil, "Official top six driver ids, comma separated")
	cmd.Flags().StringVar(&out, "out", "", "Write the updated season to this file")
	_ = cmd.MarkFlagRequired("race")
	return cmd
}

func (s *session) scoreOne(ctx context.Context, race string, drivers []string) error {
	result := model.RaceResult{RaceID: race, DriverIDs: drivers}
	if len(drivers) == 0 {
		stored, err := s.store.Result(ctx, race)
		if err != nil {
			return err
		}
		result = stored
	}

	upd, err := s.svc.ProcessResult(ctx, result)
	if err != nil {
		return err
	}
	return s.reporter.Race(upd)
}

// scoreBatch queues the stored result of every race, waits for the workers
// to drain the queue and prints the standings.
func (s *session) scoreBatch(ctx context.Context, races []string) error {
	results := make([]model.RaceResult, 0, len(races))
	for _, race := range races {
		stored, err := s.store.Result(ctx, race)
		if err != nil {
			return err
		}
		results = append(results, stored)
	}
	for _, r := range results {
		if !s.svc.Submit(ctx, r) {
			return fmt.Errorf("%w: %s", errNotQueued, r.RaceID)
		}
	}
	s.svc.Stop()

	if failed, _ := s.svc.GetStats()["failed"].(int64); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errBatchFailed, failed, len(results))
	}
	s.log.Info(ctx, "races scored", logger.Int("races", len(results)))

	season, err := s.svc.Season(ctx)
	if err != nil {
		return err
	}
	return s.reporter.Standings(season.Standings)
}

func rescoreCmd(f *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Recompute every race score and the standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, f, stdout, stderr, func(ctx context.Context, s *session) error {
				upd, err := s.svc.RescoreSeason(ctx)
				if err != nil {
					return err
				}
				if err := s.reporter.Race(upd); err != nil {
					return err
				}
				if out != "" {
					return s.save(ctx, out)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write the rescored season to this file")
	return cmd
}

func checkCmd(f *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the consistency checker",
		Long:  `Run every consistency validator over the season. Exits 2 when any category has errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, f, stdout, stderr, func(ctx context.Context, s *session) error {
				sum, err := s.svc.Check(ctx)
				if err != nil {
					return err
				}
				if err := s.reporter.Summary(sum); err != nil {
					return err
				}
				if sum.Errors > 0 {
					return fmt.Errorf("%w: %d categories with errors", errCheckFailed, sum.Errors)
				}
				return nil
			})
		},
	}
}

func standingsCmd(f *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		limit int
		team  string
	)
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print the season standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, f, stdout, stderr, func(ctx context.Context, s *session) error {
				if team != "" {
					e, err := s.svc.Rank(ctx, team)
					if err != nil {
						return err
					}
					return s.reporter.Standings([]types.Entry{e})
				}
				entries, err := s.svc.Standings(ctx, limit)
				if err != nil {
					return err
				}
				return s.reporter.Standings(entries)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of rows")
	cmd.Flags().StringVar(&team, "team", "", "Show only this team")
	return cmd
}
