package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lozenge/mergestep"
)

func init() {
	rootCmd.AddCommand(newStepsCmd())
}

func newStepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps <n>",
		Short: "Print the merge steps for n records",
		Long: `The steps command prints the merges the sorter performs for n records,
in order: the left run [lower, middle), the right run [middle, upper), the
level and how many singleton runs are seeded first.

Example:
  lozengectl steps 10
  lozengectl steps 1000 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(args)
		},
	}
	return cmd
}

func runSteps(args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid record count %q", args[0])
	}

	if jsonOut {
		steps := make([]mergestep.Step, 0, mergestep.Count(n))
		for st := range mergestep.All(n) {
			steps = append(steps, st)
		}
		return printJSON(steps)
	}

	if quiet {
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "LOWER\tMIDDLE\tUPPER\tLEVEL\tSINGLES\t")
	for st := range mergestep.All(n) {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t\n", st.Lower, st.Middle, st.Upper, st.Level, st.NewSingles)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printVerbose("%d steps over %d levels\n", mergestep.Count(n), mergestep.Levels(n))
	return nil
}
