// Package merge implements an iterative, stable merge sort over a record
// arena, with interchangeable merge strategies that reuse dominance
// information gathered at lower levels to skip comparisons.
//
// # Overview
//
// The driver walks the merge steps produced by package mergestep, keeping a
// stack of Runs. Each step pops two adjacent Runs, merges them with the
// strategy configured for the step's level, and pushes the result. Sorting
// never moves records: it rewires the Next/Prev links of the record arena.
//
// Strategies fall into three families:
//
//   - Baselines (Switch, Count, Interlink): classic 2-way merges used for
//     comparison counting. Switch is not stable.
//   - Frontier strategies (Classic, AnchorClassic, AnchorSkipless,
//     AnchorSkipper, Legacy): stable merges that also maintain two frontier
//     chains per Run, the ascend chain (strict prefix minima of the block,
//     after its first record) and the descend chain (suffix minima of the
//     block, before its last record). AnchorSkipper and Legacy trim those
//     chains before merging and skip whole blocks in the main loop.
//   - DFS: the oldest dominance strategy, with optional upper-lozenge
//     trimming and DFS tree construction.
//
// Frontier strategies may be mixed across levels through Options.Lower and
// Options.SwitchLevel; families may not.
//
// # Usage
//
//	recs := record.New(keys)
//	res, err := merge.Sort(recs, merge.DefaultOptions().ForSize(len(recs)))
//	if err != nil {
//	    return err
//	}
//	for i := range record.Forward(recs, res.Head) {
//	    fmt.Println(recs[i].Key)
//	}
//
// Counting comparisons:
//
//	c := stats.New()
//	opts := merge.DefaultOptions()
//	opts.Counter = c
//	s, err := merge.New(len(recs), opts)
//	...
//
// # Failures
//
// Configuration problems are returned as errors wrapping ErrInvalidOptions.
// A broken internal invariant is a programming error: the sort panics with
// an *InvariantError naming the merge step and record involved. With
// Options.CheckInvariants set, derived comparison results and frontier
// chains are re-checked against keys after every step.
package merge
