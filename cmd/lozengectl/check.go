package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lozenge/internal/logger"
	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/internal/report"
	"github.com/joshuapare/lozenge/internal/trial"
	"github.com/joshuapare/lozenge/merge"
)

var (
	checkMaxExhaustive int
	checkMaxSize       int
	checkSizeStep      int
	checkTrials        int
	checkWorkers       int
	checkSeed          uint64
)

func init() {
	cmd := newCheckCmd()
	cmd.Flags().IntVar(&checkMaxExhaustive, "max-exhaustive", 7, "Sort every permutation up to this many records")
	cmd.Flags().IntVar(&checkMaxSize, "max-size", 600, "Largest random input")
	cmd.Flags().IntVar(&checkSizeStep, "size-step", 37, "Step between random input sizes")
	cmd.Flags().IntVar(&checkTrials, "trials", 4, "Random trials per size")
	cmd.Flags().IntVar(&checkWorkers, "workers", 0, "Concurrent sorts (default: bench.workers)")
	cmd.Flags().Uint64Var(&checkSeed, "seed", 1, "Seed of the first random trial")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every strategy on exhaustive and random inputs",
		Long: `The check command sorts every permutation of small inputs, including
inputs with a repeated key, and random inputs with duplicate keys up to
--max-size records. Every merge step is checked for a sorted run and valid
frontier chains, and every result for order, stability where promised,
coverage and backward links.

Example:
  lozengectl check
  lozengectl check --max-exhaustive 8 --max-size 2000 --workers 8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd)
		},
	}
	return cmd
}

// CheckResult is one configuration's outcome.
type CheckResult struct {
	Name         string `json:"name"`
	Arrangements int    `json:"arrangements"`
	Trials       int    `json:"random_trials"`
	Error        string `json:"error,omitempty"`
}

// checkConfigs lists every strategy alone plus the combinations that take
// separate code paths.
func checkConfigs() []benchRun {
	var runs []benchRun
	for _, k := range merge.Strategies() {
		runs = append(runs, benchRun{k.String(), merge.Single(k)})
	}
	add := func(name string, o merge.Options) { runs = append(runs, benchRun{name, o}) }

	add("default", merge.DefaultOptions())

	o := merge.Single(merge.StrategyAnchorSkipper)
	o.DisableBlockSkip = true
	add("anchor-skipper/no-block-skip", o)

	o = merge.Single(merge.StrategyLegacy)
	o.FinalReverse = true
	add("legacy/final-reverse", o)

	o = merge.Single(merge.StrategyDFS)
	o.UpperLozenge = true
	o.FinalReverse = true
	add("dfs/upper-lozenge", o)

	o = merge.Single(merge.StrategyDFS)
	o.DFSTree = true
	o.FinalReverse = true
	add("dfs/tree", o)
	return runs
}

func runCheck(cmd *cobra.Command) error {
	workers := checkWorkers
	if workers <= 0 {
		workers = cfg.Bench.Workers
	}
	if checkSizeStep <= 0 {
		return fmt.Errorf("--size-step must be positive")
	}
	layout, _ := pattern.Named("random", 0)
	ctx := cmd.Context()

	var results []CheckResult
	failed := 0
	for _, r := range checkConfigs() {
		printVerbose("Checking %s\n", r.name)
		opts := r.opts
		opts.CheckInvariants = true
		res := CheckResult{Name: r.name}

		err := func() error {
			for n := 1; n <= checkMaxExhaustive; n++ {
				count, err := trial.Exhaustive(ctx, pattern.Identity(n), opts, workers, logger.L)
				res.Arrangements += count
				if err != nil {
					return err
				}
			}
			if checkMaxExhaustive >= 2 {
				// One repeated key exercises tie handling.
				values := pattern.Identity(checkMaxExhaustive)
				values[len(values)-1] = values[len(values)-2]
				count, err := trial.Exhaustive(ctx, values, opts, workers, logger.L)
				res.Arrangements += count
				if err != nil {
					return err
				}
			}
			for n := 2; n <= checkMaxSize; n += checkSizeStep {
				tr, err := trial.Run(ctx, trial.Spec{
					Size:    n,
					Trials:  checkTrials,
					Workers: workers,
					Layout:  layout,
					Nudges:  n / 8,
					Seed:    checkSeed + uint64(n)*1000,
					Options: opts,
					Verify:  true,
					Logger:  logger.L,
				})
				if tr != nil {
					res.Trials += tr.Trials
				}
				if err != nil {
					return fmt.Errorf("size %d: %w", n, err)
				}
			}
			return nil
		}()
		if err != nil {
			failed++
			res.Error = err.Error()
			logger.Error("check failed", "config", r.name, "error", err)
		}
		results = append(results, res)
		if ctx.Err() != nil {
			break
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else if !quiet {
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CONFIG\tPERMUTATIONS\tRANDOM\tRESULT")
		for _, r := range results {
			status := "ok"
			if r.Error != "" {
				status = r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name,
				report.Count(uint64(r.Arrangements)), report.Count(uint64(r.Trials)), status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d configurations failed", failed, len(results))
	}
	return nil
}
