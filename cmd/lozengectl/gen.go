package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/lozenge/internal/config"
	"github.com/joshuapare/lozenge/internal/keyfile"
	"github.com/joshuapare/lozenge/internal/pattern"
)

var (
	genPattern    string
	genDisruption float64
	genNudges     int
	genSeed       uint64
	genBinary     bool
	genOutput     string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().StringVar(&genPattern, "pattern", "random", "Input layout: "+strings.Join(pattern.Names(), ", "))
	cmd.Flags().Float64Var(&genDisruption, "disruption", 0.01, "Fraction of records displaced in presorted layouts")
	cmd.Flags().IntVar(&genNudges, "nudges", 0, "Duplicate keys to introduce")
	cmd.Flags().Uint64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&genBinary, "binary", false, "Write the binary key file format")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <n>",
		Short: "Generate a key file",
		Long: `The gen command writes a permutation of 0..n-1 in one of the bench
layouts, optionally with duplicate keys, as a text or binary key file.

Example:
  lozengectl gen 1000 -o keys.txt
  lozengectl gen 100000 --pattern presorted --disruption 0.02 --binary -o keys.lzk`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(args)
		},
	}
	return cmd
}

func runGen(args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid record count %q", args[0])
	}
	layout, ok := pattern.Named(genPattern, genDisruption)
	if !ok {
		return fmt.Errorf("%w %q", config.ErrUnknownPattern, genPattern)
	}

	rng := pattern.Seeded(genSeed)
	keys := pattern.Generate(rng, n, layout)
	pattern.Nudge(rng, keys, genNudges)

	data := keyfile.Format(keys)
	if genBinary {
		if data, err = keyfile.FormatBinary(keys); err != nil {
			return err
		}
	}
	if genOutput == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(genOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", genOutput, err)
	}
	printVerbose("Wrote %d keys to %s\n", n, genOutput)
	return nil
}
