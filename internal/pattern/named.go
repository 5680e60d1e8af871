package pattern

import (
	"iter"
	"math/rand/v2"
	"slices"
)

var named = map[string]func(rate float64) Config{
	"random": func(float64) Config {
		return Config{Inter: Forward, Intra: Random, Rows: 1, Cols: 1}
	},
	"presorted": func(rate float64) Config {
		return Config{Inter: Forward, Intra: Forward, Rows: 1, Cols: 1, Disruption: Displace, Rate: rate}
	},
	"reversed": func(rate float64) Config {
		return Config{Inter: Forward, Intra: Reverse, Rows: 1, Cols: 1, Disruption: Displace, Rate: rate}
	},
	"blocks": func(rate float64) Config {
		return Config{Inter: Random, Intra: Switch, Rows: 4, Cols: 4, SwitchRate: 0.5, Disruption: Shuffle, Rate: rate}
	},
	"nudged": func(float64) Config {
		return Config{Inter: Forward, Intra: Random, Rows: 1, Cols: 1}
	},
}

// Names lists the registered layout names in sorted order.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Named returns the layout registered under name with the given disruption
// rate. Layouts without disruption ignore rate.
func Named(name string, rate float64) (Config, bool) {
	f, ok := named[name]
	if !ok {
		return Config{}, false
	}
	return f(rate), true
}

// Identity returns the keys 0..n-1 in order.
func Identity(n int) []uint32 {
	keys := make([]uint32, n)
	for i := range keys {
		keys[i] = uint32(i)
	}
	return keys
}

// Shuffled returns a random permutation of 0..n-1.
func Shuffled(rng *rand.Rand, n int) []uint32 {
	keys := Identity(n)
	rng.Shuffle(n, func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
	return keys
}

// Permutations yields every ordering of values, using Heap's algorithm.
// Repeated values yield repeated orderings. The yielded slice is reused
// between iterations.
func Permutations(values []uint32) iter.Seq[[]uint32] {
	return func(yield func([]uint32) bool) {
		a := slices.Clone(values)
		if !yield(a) {
			return
		}
		c := make([]int, len(a))
		for i := 1; i < len(a); {
			if c[i] < i {
				if i%2 == 0 {
					a[0], a[i] = a[i], a[0]
				} else {
					a[c[i]], a[i] = a[i], a[c[i]]
				}
				if !yield(a) {
					return
				}
				c[i]++
				i = 1
			} else {
				c[i] = 0
				i++
			}
		}
	}
}
