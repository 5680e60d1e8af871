package merge_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/merge"
	"github.com/joshuapare/lozenge/mergestep"
	"github.com/joshuapare/lozenge/record"
	"github.com/joshuapare/lozenge/stats"
	"github.com/joshuapare/lozenge/verify"
)

type config struct {
	name string
	opts merge.Options
}

func (c config) stable() bool {
	return c.opts.Upper.Stable() && c.opts.Lower.Stable()
}

// configs returns the option sets exercised by the property tests. They are
// valid for two or more records; smaller sizes need ForSize.
func configs() []config {
	var out []config
	for _, k := range merge.Strategies() {
		out = append(out, config{k.String(), merge.Single(k)})
	}
	add := func(name string, o merge.Options) {
		out = append(out, config{name, o})
	}

	blend := merge.DefaultOptions()
	blend.SwitchLevel = 1
	add("blend", blend)

	o := merge.Options{Upper: merge.StrategyLegacy, Lower: merge.StrategyClassic, SwitchLevel: 1}
	add("legacy-over-classic", o)

	o = merge.Single(merge.StrategyAnchorSkipper)
	o.DisableBlockSkip = true
	add("anchor-skipper-no-skip", o)

	o = merge.Single(merge.StrategyLegacy)
	o.DisableBlockSkip = true
	add("legacy-no-skip", o)

	o = merge.Single(merge.StrategyAnchorSkipper)
	o.FinalReverse = true
	add("anchor-skipper-reverse", o)

	o = merge.Single(merge.StrategyDFS)
	o.UpperLozenge = true
	o.FinalReverse = true
	add("dfs-lozenge", o)

	o = merge.Single(merge.StrategyDFS)
	o.DFSTree = true
	o.FinalReverse = true
	add("dfs-tree", o)

	o = merge.Options{Upper: merge.StrategyInterlink, Lower: merge.StrategyCount, SwitchLevel: 1}
	add("interlink-over-count", o)

	o = merge.Options{Upper: merge.StrategyCount, Lower: merge.StrategySwitch, SwitchLevel: 2}
	add("count-over-switch", o)
	return out
}

func sortKeys(t *testing.T, keys []uint32, opts merge.Options) ([]record.Record, merge.Result) {
	t.Helper()
	recs := record.New(keys)
	res, err := merge.Sort(recs, opts)
	require.NoError(t, err)
	return recs, res
}

func requireSorted(t *testing.T, recs []record.Record, res merge.Result, stable bool) {
	t.Helper()
	require.NoError(t, verify.All(recs, res.Head, res.Tail, stable))
	require.NoError(t, verify.MatchesReference(recs, res.Head, stable))
}

func TestSort_Example(t *testing.T) {
	keys := []uint32{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			c.opts.CheckInvariants = true
			recs, res := sortKeys(t, keys, c.opts)
			assert.Equal(t, []int{9, 3, 5, 1, 7, 0, 8, 6, 2, 4}, record.Order(recs, res.Head))
			assert.Equal(t, 9, res.Head)
			assert.Equal(t, 4, res.Tail)
			assert.Equal(t, len(keys)-1, res.Steps)
			requireSorted(t, recs, res, true)
		})
	}
}

func TestSort_Duplicates(t *testing.T) {
	// Tags a..d are positions 0..3.
	keys := []uint32{3, 1, 3, 1}
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			c.opts.CheckInvariants = true
			recs, res := sortKeys(t, keys, c.opts)
			assert.Equal(t, []uint32{1, 1, 3, 3}, record.Keys(recs, res.Head))
			if c.stable() {
				assert.Equal(t, []int{1, 3, 0, 2}, record.Order(recs, res.Head))
			}
			requireSorted(t, recs, res, c.stable())
		})
	}
}

func TestSort_AllPermutations(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for _, c := range configs() {
			t.Run(fmt.Sprintf("%s/n=%d", c.name, n), func(t *testing.T) {
				c.opts.CheckInvariants = true
				s, err := merge.New(n, c.opts.ForSize(n))
				require.NoError(t, err)

				recs := make([]record.Record, n)
				for perm := range pattern.Permutations(pattern.Identity(n)) {
					record.Fill(recs, perm)
					res, err := s.Sort(recs)
					require.NoError(t, err)
					requireSorted(t, recs, res, c.stable())
				}
			})
		}
	}
}

func TestSort_AllPermutationsWithDuplicates(t *testing.T) {
	// Two equal keys in the middle of the range, as in a stable sort's
	// worst case for tie handling.
	values := []uint32{0, 1, 2, 3, 3, 4}
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			c.opts.CheckInvariants = true
			s, err := merge.New(len(values), c.opts)
			require.NoError(t, err)
			recs := make([]record.Record, len(values))
			for perm := range pattern.Permutations(values) {
				record.Fill(recs, perm)
				res, err := s.Sort(recs)
				require.NoError(t, err)
				requireSorted(t, recs, res, c.stable())
			}
		})
	}
}

func TestSort_RandomSizes(t *testing.T) {
	rng := pattern.Seeded(0xeffcad0d01a5e5e5)
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			c.opts.CheckInvariants = true
			for n := 8; n <= 600; n += 37 {
				keys := pattern.Shuffled(rng, n)
				pattern.Nudge(rng, keys, n/8)
				recs, res := sortKeys(t, keys, c.opts)
				requireSorted(t, recs, res, c.stable())
			}
		})
	}
}

func TestSort_Layouts(t *testing.T) {
	rng := pattern.Seeded(42)
	for _, name := range pattern.Names() {
		cfg, ok := pattern.Named(name, 0.03)
		require.True(t, ok)
		for _, c := range configs() {
			t.Run(name+"/"+c.name, func(t *testing.T) {
				c.opts.CheckInvariants = true
				keys := pattern.Generate(rng, 513, cfg)
				if name == "nudged" {
					pattern.Nudge(rng, keys, 40)
				}
				recs, res := sortKeys(t, keys, c.opts)
				requireSorted(t, recs, res, c.stable())
			})
		}
	}
}

func TestSort_ManyDuplicates(t *testing.T) {
	rng := pattern.Seeded(11)
	keys := make([]uint32, 300)
	for i := range keys {
		keys[i] = uint32(rng.IntN(4))
	}
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			c.opts.CheckInvariants = true
			recs, res := sortKeys(t, keys, c.opts)
			requireSorted(t, recs, res, c.stable())
		})
	}
}

func TestSort_StableOverUnstableChecked(t *testing.T) {
	// Count keeps its inputs' tie order, but the Switch runs below it
	// already broke index order among equal keys.
	o := merge.Options{Upper: merge.StrategyCount, Lower: merge.StrategySwitch, SwitchLevel: 2, CheckInvariants: true}
	rng := pattern.Seeded(0x5eed)
	for _, n := range []int{21, 64, 300} {
		require.NoError(t, o.Validate(n))
		keys := make([]uint32, n)
		for i := range keys {
			keys[i] = uint32(rng.IntN(8))
		}
		recs := record.New(keys)
		var res merge.Result
		require.NotPanics(t, func() {
			var err error
			res, err = merge.Sort(recs, o)
			require.NoError(t, err)
		}, "n=%d", n)
		requireSorted(t, recs, res, false)
	}
}

func TestSort_StrategiesAgree(t *testing.T) {
	rng := pattern.Seeded(7)
	keys := pattern.Shuffled(rng, 257)
	pattern.Nudge(rng, keys, 30)

	var want []int
	for _, c := range configs() {
		if !c.stable() {
			continue
		}
		recs, res := sortKeys(t, keys, c.opts)
		got := record.Order(recs, res.Head)
		if want == nil {
			want = got
			continue
		}
		assert.Equal(t, want, got, c.name)
	}
}

func TestSort_Reversible(t *testing.T) {
	keys := pattern.Shuffled(pattern.Seeded(3), 100)
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			recs, res := sortKeys(t, keys, c.opts)
			var back []int
			for i := range record.Backward(recs, res.Tail) {
				back = append(back, i)
			}
			fwd := record.Order(recs, res.Head)
			require.Len(t, back, len(fwd))
			for i := range fwd {
				assert.Equal(t, fwd[i], back[len(back)-1-i])
			}
		})
	}
}

func TestSort_FrontierAtEveryStep(t *testing.T) {
	keys := pattern.Shuffled(pattern.Seeded(5), 90)
	pattern.Nudge(pattern.Seeded(6), keys, 10)

	for _, c := range configs() {
		if c.opts.Upper == merge.StrategySwitch || c.opts.Upper == merge.StrategyCount ||
			c.opts.Upper == merge.StrategyInterlink {
			continue
		}
		t.Run(c.name, func(t *testing.T) {
			recs := record.New(keys)
			steps := 0
			c.opts.StepHook = func(st mergestep.Step, run merge.Run) {
				steps++
				require.NoError(t, verify.Run(recs, st.Lower, st.Upper, run.Head, run.Tail, true))
				require.NoError(t, verify.Frontier(recs, st.Lower, st.Upper, run.Ascend, run.Descend))
			}
			_, err := merge.Sort(recs, c.opts)
			require.NoError(t, err)
			assert.Equal(t, len(keys)-1, steps)
		})
	}
}

func TestSort_Lozenge(t *testing.T) {
	lozenge := []config{}
	for _, k := range []merge.StrategyKind{merge.StrategyClassic, merge.StrategyAnchorClassic, merge.StrategyLegacy} {
		o := merge.Single(k)
		o.FinalReverse = true
		lozenge = append(lozenge, config{k.String(), o})
	}
	o := merge.Single(merge.StrategyDFS)
	o.UpperLozenge = true
	o.FinalReverse = true
	lozenge = append(lozenge, config{"dfs-lozenge", o})

	for _, c := range lozenge {
		t.Run(c.name, func(t *testing.T) {
			rng := pattern.Seeded(0x6fcad0e0b15d55ee)
			for n := 27; n < 300; n++ {
				c.opts.CheckInvariants = true
				keys := pattern.Shuffled(rng, n)
				pattern.Nudge(rng, keys, 12)
				recs, res := sortKeys(t, keys, c.opts)
				requireSorted(t, recs, res, true)
				require.NoError(t, verify.Lozenge(recs, res.Head), "n=%d", n)
			}
		})
	}
}

func TestSort_DFSTree(t *testing.T) {
	o := merge.Single(merge.StrategyDFS)
	o.DFSTree = true
	o.FinalReverse = true
	o.CheckInvariants = true

	rng := pattern.Seeded(0x5e5e)
	keys := pattern.Shuffled(rng, 32)
	pattern.Nudge(rng, keys, 8)
	recs, res := sortKeys(t, keys, o)
	require.NoError(t, verify.DFSTree(recs, res.Head))

	for n := 27; n < 300; n++ {
		keys := pattern.Shuffled(rng, n)
		pattern.Nudge(rng, keys, 12)
		recs, res := sortKeys(t, keys, o)
		requireSorted(t, recs, res, true)
		require.NoError(t, verify.DFSTree(recs, res.Head), "n=%d", n)
	}
}

func TestSort_ReorientedChainEnds(t *testing.T) {
	keys := []uint32{5, 3, 8, 1, 9, 2, 7, 4, 6, 0}
	o := merge.Single(merge.StrategyClassic)
	o.FinalReverse = true
	recs, res := sortKeys(t, keys, o)

	var asc []int
	for i := range record.AscendChain(recs, res.Ascend) {
		asc = append(asc, i)
	}
	// Strict prefix minima after record 0 are 1, 3 and 9; reversed they
	// run from the last one back to record 0, which continues along the
	// prefix maxima 2 and 4.
	require.GreaterOrEqual(t, len(asc), 5)
	assert.Equal(t, []int{9, 3, 1, 0, 2}, asc[:5])

	var desc []int
	for i := range record.DescendChain(recs, res.Descend) {
		desc = append(desc, i)
	}
	// Suffix minima before record 9 are none: key 0 sits last.
	assert.Empty(t, desc)
	assert.Equal(t, record.Nil, res.Descend)
}

func TestSort_PresortedComparisons(t *testing.T) {
	const n = 1024
	keys := pattern.Identity(n)

	count := func(o merge.Options) uint64 {
		c := stats.New()
		o.Counter = c
		sortKeys(t, keys, o)
		return c.Totals().Total()
	}

	skipper := count(merge.Single(merge.StrategyAnchorSkipper))
	interlink := count(merge.Single(merge.StrategyInterlink))
	blend := count(merge.DefaultOptions())

	assert.LessOrEqual(t, skipper, uint64(2*n))
	assert.LessOrEqual(t, blend, uint64(2*n))
	assert.Less(t, skipper, interlink)
}

func TestSort_CountsEveryComparison(t *testing.T) {
	keys := pattern.Shuffled(pattern.Seeded(1), 200)
	for _, c := range configs() {
		t.Run(c.name, func(t *testing.T) {
			col := stats.New()
			c.opts.Counter = col
			sortKeys(t, keys, c.opts)
			total := col.Totals()
			assert.Positive(t, total.Merge)
			assert.Greater(t, total.Total(), uint64(len(keys)-1))
			if c.opts.Upper == merge.StrategySwitch || c.opts.Upper == merge.StrategyCount ||
				c.opts.Upper == merge.StrategyInterlink {
				assert.Zero(t, total.Work)
			}
		})
	}
}

func TestSort_SmallSizes(t *testing.T) {
	_, err := merge.Sort(nil, merge.DefaultOptions())
	require.True(t, errors.Is(err, merge.ErrInvalidOptions), "default switch level exceeds the levels of an empty sort")

	res, err := merge.Sort(nil, merge.DefaultOptions().ForSize(0))
	require.NoError(t, err)
	assert.Equal(t, merge.Result{Head: record.Nil, Tail: record.Nil, Ascend: record.Nil, Descend: record.Nil}, res)

	recs := record.New([]uint32{7})
	recs[0].Next = 5
	res, err = merge.Sort(recs, merge.DefaultOptions().ForSize(1))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Head)
	assert.Equal(t, 0, res.Tail)
	assert.Equal(t, record.Nil, recs[0].Next)
	assert.Zero(t, res.Steps)
}

func TestSorter_SizeMismatch(t *testing.T) {
	s, err := merge.New(4, merge.Single(merge.StrategyClassic))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, merge.StrategyClassic, s.Options().Upper)

	_, err = s.Sort(record.New([]uint32{1, 2, 3}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, merge.ErrSizeMismatch))
}

func TestSorter_Reuse(t *testing.T) {
	s, err := merge.New(50, merge.Single(merge.StrategyAnchorSkipper))
	require.NoError(t, err)
	rng := pattern.Seeded(99)
	recs := make([]record.Record, 50)
	for i := 0; i < 20; i++ {
		record.Fill(recs, pattern.Shuffled(rng, 50))
		res, err := s.Sort(recs)
		require.NoError(t, err)
		requireSorted(t, recs, res, true)
	}

	// Sorting an already linked slice again ignores the stale links.
	res, err := s.Sort(recs)
	require.NoError(t, err)
	requireSorted(t, recs, res, true)
}

func TestSort_Logger(t *testing.T) {
	var buf bytes.Buffer
	o := merge.Single(merge.StrategyLegacy)
	o.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sortKeys(t, []uint32{3, 1, 2}, o)

	out := buf.String()
	assert.Contains(t, out, "merge step")
	assert.Contains(t, out, "strategy=legacy")
	assert.Contains(t, out, "sort complete")
}

func TestSort_InvalidOptions(t *testing.T) {
	_, err := merge.Sort(record.New([]uint32{1, 2}), merge.Options{Upper: merge.StrategySwitch, Lower: merge.StrategySwitch, FinalReverse: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, merge.ErrInvalidOptions))
}

func BenchmarkSort_Random(b *testing.B) {
	keys := pattern.Shuffled(pattern.Seeded(1), 4096)
	for _, k := range merge.Strategies() {
		b.Run(k.String(), func(b *testing.B) {
			s, err := merge.New(len(keys), merge.Single(k))
			require.NoError(b, err)
			recs := make([]record.Record, len(keys))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				record.Fill(recs, keys)
				if _, err := s.Sort(recs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSort_Presorted(b *testing.B) {
	cfg, _ := pattern.Named("presorted", 0.01)
	keys := pattern.Generate(pattern.Seeded(1), 4096, cfg)
	for _, k := range []merge.StrategyKind{merge.StrategyInterlink, merge.StrategyAnchorSkipper, merge.StrategyLegacy} {
		b.Run(k.String(), func(b *testing.B) {
			s, err := merge.New(len(keys), merge.Single(k))
			require.NoError(b, err)
			recs := make([]record.Record, len(keys))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				record.Fill(recs, keys)
				if _, err := s.Sort(recs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
