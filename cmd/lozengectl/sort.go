package main

import (
	"fmt"
	"iter"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lozenge/internal/keyfile"
	"github.com/joshuapare/lozenge/internal/logger"
	"github.com/joshuapare/lozenge/internal/report"
	"github.com/joshuapare/lozenge/merge"
	"github.com/joshuapare/lozenge/mergestep"
	"github.com/joshuapare/lozenge/record"
	"github.com/joshuapare/lozenge/stats"
	"github.com/joshuapare/lozenge/verify"
)

// strategyFlags are the merge options shared by sort and bench.
type strategyFlags struct {
	upper        string
	lower        string
	switchLevel  int
	noBlockSkip  bool
	finalReverse bool
	check        bool
}

func (f *strategyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.upper, "upper", "", "Strategy for upper levels")
	cmd.Flags().StringVar(&f.lower, "lower", "", "Strategy for levels below --switch-level")
	cmd.Flags().IntVar(&f.switchLevel, "switch-level", 0, "First level merged with the upper strategy")
	cmd.Flags().BoolVar(&f.noBlockSkip, "no-block-skip", false, "Merge stepwise instead of skipping dominated blocks")
	cmd.Flags().BoolVar(&f.finalReverse, "final-reverse", false, "Reorient the final frontier chains")
	cmd.Flags().BoolVar(&f.check, "check", false, "Verify invariants after every merge step")
}

// options merges the settings file with the flags that were set. Without an
// explicit switch level the configured one is lowered to fit size.
func (f *strategyFlags) options(cmd *cobra.Command, size int) (merge.Options, error) {
	s := cfg.Sort
	flags := cmd.Flags()
	if flags.Changed("upper") {
		s.Upper = f.upper
	}
	if flags.Changed("lower") {
		s.Lower = f.lower
	}
	if flags.Changed("switch-level") {
		s.SwitchLevel = f.switchLevel
	}
	if flags.Changed("no-block-skip") {
		s.BlockSkip = !f.noBlockSkip
	}
	if flags.Changed("final-reverse") {
		s.FinalReverse = f.finalReverse
	}
	if flags.Changed("check") {
		s.CheckInvariants = f.check
	}
	opts, err := s.Options()
	if err != nil {
		return merge.Options{}, err
	}
	if !flags.Changed("switch-level") {
		if fit := opts.ForSize(size); fit.SwitchLevel != opts.SwitchLevel {
			printVerbose("Switch level lowered to %d for %d records\n", fit.SwitchLevel, size)
			opts = fit
		}
	}
	return opts, opts.Validate(size)
}

var sortFlags strategyFlags

func init() {
	cmd := newSortCmd()
	sortFlags.register(cmd)
	rootCmd.AddCommand(cmd)
}

func newSortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort <keyfile>",
		Short: "Sort the keys in a file",
		Long: `The sort command reads unsigned 32-bit keys separated by whitespace or
commas, sorts them with the configured strategies and prints them in order.

Example:
  lozengectl sort keys.txt
  lozengectl sort keys.txt --upper legacy --lower classic --switch-level 2
  lozengectl sort keys.txt --json --final-reverse`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, args)
		},
	}
	return cmd
}

// SortOutput is the JSON form of a sort.
type SortOutput struct {
	Records     int                 `json:"records"`
	Upper       string              `json:"upper"`
	Lower       string              `json:"lower"`
	SwitchLevel int                 `json:"switch_level"`
	Keys        []uint32            `json:"keys"`
	Order       []int               `json:"order"`
	Ascend      []int               `json:"ascend,omitempty"`
	Descend     []int               `json:"descend,omitempty"`
	Comparisons uint64              `json:"comparisons"`
	Levels      []stats.LevelCounts `json:"levels"`
}

func runSort(cmd *cobra.Command, args []string) error {
	path := args[0]
	printVerbose("Reading keys: %s\n", path)

	keys, err := keyfile.Load(path)
	if err != nil {
		return err
	}
	opts, err := sortFlags.options(cmd, len(keys))
	if err != nil {
		return err
	}
	c := stats.New()
	opts.Counter = c
	opts.Logger = logger.L

	recs := record.New(keys)
	res, err := merge.Sort(recs, opts)
	if err != nil {
		return err
	}
	c.FinishSort()

	stable := opts.Upper.Stable() && opts.Lower.Stable()
	if err := verify.All(recs, res.Head, res.Tail, stable); err != nil {
		return fmt.Errorf("sort produced a bad order: %w", err)
	}
	logger.Info("sorted", "file", path, "records", len(keys), "comparisons", c.Totals().Total())

	if jsonOut {
		out := SortOutput{
			Records:     len(keys),
			Upper:       opts.Upper.String(),
			Lower:       opts.Lower.String(),
			SwitchLevel: opts.SwitchLevel,
			Keys:        record.Keys(recs, res.Head),
			Order:       record.Order(recs, res.Head),
			Comparisons: c.Totals().Total(),
			Levels:      make([]stats.LevelCounts, c.Levels()),
		}
		for i := range out.Levels {
			out.Levels[i] = c.Level(i)
		}
		if opts.FinalReverse {
			out.Ascend = collect(record.AscendChain(recs, res.Ascend))
			out.Descend = collect(record.DescendChain(recs, res.Descend))
		}
		return printJSON(out)
	}

	if !quiet {
		os.Stdout.Write(keyfile.Format(record.Keys(recs, res.Head)))
	}
	printVerbose("%s comparisons over %d levels (%d merge steps)\n",
		report.Count(c.Totals().Total()), c.Levels(), mergestep.Count(len(keys)))
	return nil
}

func collect(seq iter.Seq[int]) []int {
	var out []int
	for i := range seq {
		out = append(out, i)
	}
	return out
}
