package cmd

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gostdlib/maybesync/goroutines"
	"github.com/gostdlib/maybesync/goroutines/limited"
	"github.com/gostdlib/maybesync/goroutines/pooled"
	"github.com/gostdlib/maybesync/prim/maybe"
	"github.com/gostdlib/maybesync/prim/maybe/check"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// errFailed is returned when a check ran but found violations.
var errFailed = errors.New("one or more checks failed")

// runConfig holds the settings for the run command after flags, environment and config file
// have been merged.
type runConfig struct {
	Checks     []string
	Workers    int
	Iterations int
	Pool       string
	Format     string
}

func loadRunConfig() (runConfig, error) {
	rc := runConfig{
		Checks:     splitChecks(conf.GetStringSlice("checks")),
		Workers:    conf.GetInt("workers"),
		Iterations: conf.GetInt("iterations"),
		Pool:       conf.GetString("pool"),
		Format:     conf.GetString("format"),
	}
	return rc, rc.validate()
}

// splitChecks splits entries on commas. Flags already arrive split, but a MAYBECHECK_CHECKS
// value or a config string arrives whole.
func splitChecks(entries []string) []string {
	var names []string
	for _, e := range entries {
		for _, n := range strings.Split(e, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

func (rc runConfig) validate() error {
	for _, n := range rc.Checks {
		if !slices.Contains(check.Names(), n) {
			return fmt.Errorf("unknown check %q, want one of %v", n, check.Names())
		}
	}
	if rc.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, was %d", rc.Workers)
	}
	if rc.Iterations < 1 {
		return fmt.Errorf("iterations must be >= 1, was %d", rc.Iterations)
	}
	switch rc.Pool {
	case "pooled", "limited":
	default:
		return fmt.Errorf("pool must be pooled or limited, was %q", rc.Pool)
	}
	if _, ok := writers[rc.Format]; !ok {
		return fmt.Errorf("format must be one of %v, was %q", formats(), rc.Format)
	}
	return nil
}

// newPool returns the pool the checks contend on.
func (rc runConfig) newPool() (goroutines.Pool, error) {
	size := rc.Workers
	if !maybe.SyncEnabled {
		size = 1
	}
	if rc.Pool == "limited" {
		return limited.New(size)
	}
	return pooled.New(size)
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run checks and print a report for each",
	Long: `Runs the named checks, or all of them, and prints one report per check. The exit
status is non-zero if any check finds a violation.

Without "-tags sync" every check runs on a single worker, whatever --workers says.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := loadRunConfig()
		if err != nil {
			return err
		}
		names := rc.Checks
		if len(names) == 0 {
			names = check.Names()
		}

		pool, err := rc.newPool()
		if err != nil {
			return err
		}
		defer pool.Close()

		runID := uuid.NewString()
		ctx, root := otel.Tracer("maybecheck").Start(cmd.Context(), "maybecheck.run")
		defer root.End()
		root.SetAttributes(
			attribute.String("run_id", runID),
			attribute.String("mode", maybe.Mode()),
		)

		log := logger.With(zap.String("run_id", runID), zap.String("mode", maybe.Mode()))
		log.Info("starting checks", zap.Strings("checks", names), zap.Int("workers", rc.Workers), zap.Int("iterations", rc.Iterations), zap.String("pool", rc.Pool))

		options := []check.Option{
			check.WithWorkers(rc.Workers),
			check.WithIterations(rc.Iterations),
			check.WithPool(pool),
			check.WithRunID(runID),
		}

		reports := make([]check.Report, 0, len(names))
		failed := 0
		for _, n := range names {
			r, err := check.One(ctx, n, options...)
			if err != nil {
				root.RecordError(err)
				root.SetStatus(codes.Error, err.Error())
				log.Error("check did not run", zap.String("check", n), zap.Error(err))
				return err
			}
			reports = append(reports, r)

			fields := []zap.Field{zap.String("check", n), zap.Duration("elapsed", r.Elapsed), zap.Int64("violations", r.Violations)}
			if r.Passed {
				log.Info("check passed", fields...)
				continue
			}
			failed++
			log.Warn("check failed", append(fields, zap.String("detail", r.Detail))...)
		}

		if err := writers[rc.Format](cmd.OutOrStdout(), reports); err != nil {
			return err
		}
		if failed > 0 {
			root.SetStatus(codes.Error, errFailed.Error())
			return fmt.Errorf("%w: %d of %d", errFailed, failed, len(reports))
		}
		log.Info("all checks passed", zap.Int("checks", len(reports)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringSlice("checks", nil, fmt.Sprintf("checks to run, from %v (default all)", check.Names()))
	f.Int("workers", runtime.NumCPU(), "goroutines contending for each primitive (sync builds only)")
	f.Int("iterations", 1000, "operations per worker, or rounds per check")
	f.String("pool", "pooled", "goroutine pool the workers run on: pooled or limited")
	f.String("format", "text", fmt.Sprintf("output format, one of %v", formats()))

	for _, name := range []string{"checks", "workers", "iterations", "pool", "format"} {
		conf.BindPFlag(name, f.Lookup(name))
	}
}
