// Package pattern generates key permutations for tests and benchmarks:
// random, presorted with displacement, reversed and block layouts, plus
// small nudges that introduce duplicate keys.
package pattern

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

// Order arranges the values of one block, or the blocks of one row.
type Order uint8

const (
	Random Order = iota
	Forward
	Reverse
	// Switch picks Forward or Reverse per block. Blocks only.
	Switch
)

// Disruption moves a fraction of the values after the layout is built.
type Disruption uint8

const (
	NoDisruption Disruption = iota
	// Displace moves single values to random new positions.
	Displace
	// Shuffle rotates values around a random ring of positions.
	Shuffle
)

// Config describes a block layout. Values 0..n-1 are split into Cols
// column blocks of near-equal width; Rows groups consecutive column blocks
// (in Inter order) that draw their values from one shared range.
type Config struct {
	Inter      Order // column block order, not Switch
	Intra      Order // value order inside a block
	Rows, Cols int
	SwitchRate float64 // chance of Reverse for Intra == Switch

	Disruption Disruption
	Rate       float64 // fraction of values disrupted; keep small for Displace
}

// Seeded returns a PCG generator for a seed, so runs are reproducible.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns a permutation of 0..n-1 laid out according to cfg.
func Generate(rng *rand.Rand, n int, cfg Config) []uint32 {
	rows, cols := max(cfg.Rows, 1), max(cfg.Cols, 1)
	cols = min(cols, max(n, 1))
	perm := make([]uint32, n)
	if n == 0 {
		return perm
	}

	dividers := make([]int, cols)
	sizes := make([]int, cols)
	prev := 0
	for i := range dividers {
		dividers[i] = int(math.Round(float64(i+1) * float64(n) / float64(cols)))
		sizes[i] = dividers[i] - prev
		prev = dividers[i]
	}

	order := make([]int, cols)
	for i := range order {
		order[i] = i
	}
	switch cfg.Inter {
	case Random:
		rng.Shuffle(cols, func(i, j int) { order[i], order[j] = order[j], order[i] })
	case Reverse:
		slices.Reverse(order)
	}

	col, covered := 0, 0
	for row := 0; row < rows; row++ {
		target := int(math.Round(float64(row+1) * float64(n) / float64(rows) * 2))
		var blocks []int
		total := 0
		for col < cols && (covered+total)*2+sizes[order[col]] <= target {
			total += sizes[order[col]]
			blocks = append(blocks, order[col])
			col++
		}
		if len(blocks) == 0 {
			continue
		}

		values := make([]uint32, total)
		for i := range values {
			values[i] = uint32(covered + i)
		}
		rng.Shuffle(total, func(i, j int) { values[i], values[j] = values[j], values[i] })

		done := 0
		for _, b := range blocks {
			block := values[done : done+sizes[b]]
			arrange(rng, block, cfg.Intra, cfg.SwitchRate)
			copy(perm[dividers[b]-sizes[b]:dividers[b]], block)
			done += sizes[b]
		}
		covered += total
	}

	if cfg.Rate > 0 {
		disrupt(rng, perm, cfg.Disruption, cfg.Rate)
	}
	return perm
}

func arrange(rng *rand.Rand, block []uint32, o Order, switchRate float64) {
	switch o {
	case Forward:
		slices.Sort(block)
	case Reverse:
		slices.Sort(block)
		slices.Reverse(block)
	case Switch:
		slices.Sort(block)
		if rng.Float64() < switchRate {
			slices.Reverse(block)
		}
	}
}

func disrupt(rng *rand.Rand, perm []uint32, d Disruption, rate float64) {
	n := len(perm)
	want := rate * float64(n)
	count := int(math.Floor(want))
	if rng.Float64() < want-float64(count) {
		count++
	}
	count = min(count, n)
	if count == 0 || n < 2 {
		return
	}

	switch d {
	case Displace:
		// Each chosen position gets a fractional rank just beyond a random
		// destination; ranking all positions gives the value remap.
		rank := make([]float64, n)
		for i := range rank {
			rank[i] = float64(i)
		}
		for i := 0; i < count; i++ {
			target := rng.IntN(n)
			for rank[target] != math.Trunc(rank[target]) {
				target = rng.IntN(n)
			}
			dest := rng.IntN(n - 1)
			if dest < target {
				dest--
			} else {
				dest++
			}
			rank[target] = float64(dest) + float64(i+1)/float64(count+2)
		}
		principals := make([]int, n)
		for i := range principals {
			principals[i] = i
		}
		slices.SortFunc(principals, func(a, b int) int { return cmp.Compare(rank[a], rank[b]) })
		orig := slices.Clone(perm)
		for i := range perm {
			perm[i] = uint32(principals[orig[i]])
		}
	case Shuffle:
		ring := make([]int, n)
		for i := range ring {
			ring[i] = i
		}
		for i := 0; i < count; i++ {
			j := i + rng.IntN(n-i)
			ring[i], ring[j] = ring[j], ring[i]
		}
		carry := perm[ring[count-1]]
		for _, pos := range ring[:count] {
			perm[pos], carry = carry, perm[pos]
		}
	}
}

// Nudge moves up to count interior values by one toward a neighbouring
// value, creating duplicate keys. The minimum and maximum values are never
// nudged, nor are the first and last positions.
func Nudge(rng *rand.Rand, keys []uint32, count int) {
	if len(keys) < 3 {
		return
	}
	lo, hi := slices.Min(keys), slices.Max(keys)
	for i := 0; i < count; i++ {
		up := rng.Float64() >= 0.5
		idx := 1 + rng.IntN(len(keys)-2)
		if keys[idx] == lo || keys[idx] == hi {
			continue
		}
		if up {
			keys[idx]++
		} else {
			keys[idx]--
		}
	}
}
