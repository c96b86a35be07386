package cli

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/TrevorS/circcoords"
	"github.com/TrevorS/circcoords/internal/snapshot"
)

func (c *CLI) newComputeCommand() *cobra.Command {
	defaults := circcoords.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "compute <snapshot>",
		Short: "Compute circular coordinates for the chosen cohomology classes",
		Args:  cobra.ExactArgs(1),
		Example: `  # Circular coordinates from the first generator
  circcoords compute snapshot.yaml --cocycle 0

  # Sum two generators, put the radius at the birth end, JSON output
  circcoords compute snapshot.yaml --cocycle 0,2 --percentile 1 --format json

  # Weighted least squares with the iterative solver, written to a file
  circcoords compute snapshot.json -c 1 --weighted --solver lsqr -o angles.yaml

  # Settings from a config file, overridden by the environment
  CIRCCOORDS_PERCENTILE=0.5 circcoords compute snapshot.yaml --config run.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompute(cmd, args[0])
		},
	}

	addPipelineFlags(cmd.Flags(), defaults)
	return cmd
}

// addPipelineFlags registers the flags that map onto circcoords.Config plus
// the output and scheduling options of compute.
func addPipelineFlags(f *pflag.FlagSet, defaults circcoords.Config) {
	f.IntSliceP("cocycle", "c", nil, "Indices of the cohomology generators to combine (required)")
	f.Int("prime", defaults.FieldPrime, "Coefficient field prime of the cocycles")
	f.Float64("percentile", defaults.CoverPercentile, "Cover percentile in [0, 1]; 1 puts the radius at the birth value")
	f.Bool("weighted", defaults.Weighted, "Weight edges by landmark distance")
	f.String("solver", string(defaults.Solver), "Least-squares solver: auto, svd or lsqr")
	f.String("bump", string(defaults.Bump), "Partition-of-unity bump: linear, quadratic or exponential")
	f.Float64("tolerance", defaults.Tolerance, "SVD rank cutoff and LSQR tolerance")
	f.Int("max-iterations", defaults.MaxIterations, "LSQR iteration cap (0 picks one from the landmark count)")
	f.Int("workers", runtime.NumCPU(), "Goroutines for point-cloud distance computation")
	f.StringP("output", "o", "", "Write the result to this file instead of stdout")
	f.String("format", string(snapshot.FormatYAML), "Output format for stdout: yaml or json")
	f.Duration("timeout", 0, "Abort if the snapshot is not ready within this duration (0 waits indefinitely)")
}

// config assembles the pipeline configuration from the bound flags.
func (c *CLI) config() circcoords.Config {
	cfg := circcoords.DefaultConfig()
	cfg.FieldPrime = c.conf.GetInt("prime")
	cfg.CoverPercentile = c.conf.GetFloat64("percentile")
	cfg.Weighted = c.conf.GetBool("weighted")
	cfg.Solver = circcoords.Solver(c.conf.GetString("solver"))
	cfg.Bump = circcoords.Bump(c.conf.GetString("bump"))
	cfg.Tolerance = c.conf.GetFloat64("tolerance")
	cfg.MaxIterations = c.conf.GetInt("max-iterations")
	cfg.Logger = c.logger
	return cfg
}

func (c *CLI) runCompute(cmd *cobra.Command, path string) error {
	selected := c.conf.GetIntSlice("cocycle")
	format, err := snapshot.ParseFormat(c.conf.GetString("format"))
	if err != nil {
		return err
	}
	workers := c.conf.GetInt("workers")

	sess, err := circcoords.NewSession(c.config())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if timeout := c.conf.GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	sess.Recompute(ctx, func(context.Context, circcoords.Config) (*circcoords.Snapshot, error) {
		return snapshot.Load(path, workers)
	})
	res, err := sess.Compute(ctx, selected)
	if err != nil {
		return errors.Wrapf(err, "computing circular coordinates for %s", path)
	}
	c.logger.Info("circular coordinates computed",
		zap.String("snapshot", path),
		zap.Ints("cocycles", selected),
		zap.Float64("radius", res.CoveringRadius),
		zap.Int("points", len(res.Angles)),
		zap.Int("uncovered", res.UncoveredPointCount),
		zap.Duration("duration", time.Since(start)))

	out := snapshot.NewOutput(res)
	if dst := c.conf.GetString("output"); dst != "" {
		return snapshot.Save(dst, out)
	}
	return snapshot.Encode(cmd.OutOrStdout(), format, out)
}
