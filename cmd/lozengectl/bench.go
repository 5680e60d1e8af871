package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lozenge/internal/config"
	"github.com/joshuapare/lozenge/internal/logger"
	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/internal/report"
	"github.com/joshuapare/lozenge/internal/trial"
	"github.com/joshuapare/lozenge/merge"
)

var (
	benchFlags      strategyFlags
	benchSize       int
	benchTrials     int
	benchWorkers    int
	benchPattern    string
	benchDisruption float64
	benchNudges     int
	benchSeed       uint64
	benchStrategies []string
	benchPerLevel   bool
	benchVerify     bool
)

func init() {
	cmd := newBenchCmd()
	benchFlags.register(cmd)
	cmd.Flags().IntVar(&benchSize, "size", 0, "Records per trial")
	cmd.Flags().IntVar(&benchTrials, "trials", 0, "Trials per strategy")
	cmd.Flags().IntVar(&benchWorkers, "workers", 0, "Concurrent trials")
	cmd.Flags().StringVar(&benchPattern, "pattern", "", "Input layout: "+strings.Join(pattern.Names(), ", "))
	cmd.Flags().Float64Var(&benchDisruption, "disruption", 0, "Fraction of records displaced in presorted layouts")
	cmd.Flags().IntVar(&benchNudges, "nudges", 0, "Duplicate keys introduced per trial")
	cmd.Flags().Uint64Var(&benchSeed, "seed", 0, "Seed of the first trial")
	cmd.Flags().StringSliceVar(&benchStrategies, "strategy", nil, "Strategy to run alone (repeatable)")
	cmd.Flags().BoolVar(&benchPerLevel, "per-level", false, "Show mean comparisons per merge level")
	cmd.Flags().BoolVar(&benchVerify, "verify", false, "Verify every sorted result")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Count comparisons over random trials",
		Long: `The bench command sorts generated inputs with each strategy and reports
the mean comparisons per sort, their ratio to n*log2(n) and throughput.

Without --strategy every strategy runs alone, followed by the configured
blend of upper and lower strategies.

Example:
  lozengectl bench --size 4096 --trials 100
  lozengectl bench --pattern presorted --disruption 0.02 --strategy anchor-skipper --strategy interlink
  lozengectl bench --config lozenge.toml --per-level --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd)
		},
	}
	return cmd
}

// benchSettings applies the set flags over the configured bench table.
func benchSettings(cmd *cobra.Command) (config.BenchConfig, error) {
	b := cfg.Bench
	flags := cmd.Flags()
	if flags.Changed("size") {
		b.Size = benchSize
	}
	if flags.Changed("trials") {
		b.Trials = benchTrials
	}
	if flags.Changed("workers") {
		b.Workers = benchWorkers
	}
	if flags.Changed("pattern") {
		b.Pattern = benchPattern
	}
	if flags.Changed("disruption") {
		b.Disruption = benchDisruption
	}
	if flags.Changed("nudges") {
		b.Nudges = benchNudges
	}
	if flags.Changed("seed") {
		b.Seed = benchSeed
	}
	c := cfg
	c.Bench = b
	return b, c.Validate()
}

type benchRun struct {
	name string
	opts merge.Options
}

func benchRuns(cmd *cobra.Command, size int) ([]benchRun, error) {
	if len(benchStrategies) > 0 {
		runs := make([]benchRun, 0, len(benchStrategies))
		for _, name := range benchStrategies {
			k, err := merge.ParseStrategy(name)
			if err != nil {
				return nil, err
			}
			runs = append(runs, benchRun{k.String(), merge.Single(k)})
		}
		return runs, nil
	}

	var runs []benchRun
	for _, k := range merge.Strategies() {
		runs = append(runs, benchRun{k.String(), merge.Single(k)})
	}
	blend, err := benchFlags.options(cmd, size)
	if err != nil {
		return nil, err
	}
	name := blend.Upper.String()
	if blend.SwitchLevel > 0 {
		name = fmt.Sprintf("%s/%s@%d", blend.Upper, blend.Lower, blend.SwitchLevel)
	}
	return append(runs, benchRun{name, blend}), nil
}

func runBench(cmd *cobra.Command) error {
	b, err := benchSettings(cmd)
	if err != nil {
		return err
	}
	runs, err := benchRuns(cmd, b.Size)
	if err != nil {
		return err
	}
	layout, _ := pattern.Named(b.Pattern, b.Disruption)
	nudges := b.Nudges
	if b.Pattern == "nudged" && nudges == 0 {
		nudges = b.Size / 8
	}

	rows := make([]report.Row, 0, len(runs))
	var failed error
	for _, r := range runs {
		printVerbose("Running %d trials of %d records with %s\n", b.Trials, b.Size, r.name)
		res, err := trial.Run(cmd.Context(), trial.Spec{
			Size:    b.Size,
			Trials:  b.Trials,
			Workers: b.Workers,
			Layout:  layout,
			Nudges:  nudges,
			Seed:    b.Seed,
			Options: r.opts,
			Verify:  benchVerify,
			Logger:  logger.L,
		})
		if res == nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
		if err != nil {
			printError("%s: %v\n", r.name, err)
			failed = err
		}
		rows = append(rows, report.FromTrial(r.name, res))
	}

	if jsonOut {
		if err := report.JSON(os.Stdout, rows); err != nil {
			return err
		}
	} else if !quiet {
		if err := report.Table(os.Stdout, rows, report.Options{NoColor: noColor, PerLevel: benchPerLevel}); err != nil {
			return err
		}
	}
	return failed
}
