// Package mergestep enumerates the merges of a bottom-up merge sort over n
// records without recursion.
//
// The sequence equals the post-order of a top-down balanced merge sort: the
// iterator keeps two machine words (a power-of-two block width and a sign
// word) and derives each block's middle point from them. Records are seeded
// as singleton runs exactly when a step first reaches them, which keeps the
// caller's run stack within bits.UintSize+1 entries.
package mergestep

import (
	"fmt"
	"iter"
	"math/bits"
)

// Step describes one merge: the left run covers [Lower, Middle) and the right
// run covers [Middle, Upper).
type Step struct {
	Lower  int
	Middle int
	Upper  int

	// Level is log2 of the nominal half-block width.
	Level uint32

	// NewSingles is the number of singleton runs the caller must push before
	// performing the merge: 2 seeds Lower and Middle, 1 seeds Middle.
	NewSingles int
}

func (s Step) String() string {
	return fmt.Sprintf("[%d,%d,%d) level %d", s.Lower, s.Middle, s.Upper, s.Level)
}

// StackCapacity bounds the number of runs live at once.
const StackCapacity = bits.UintSize + 1

// Iterator yields merge steps for a fixed size.
type Iterator struct {
	size     uint
	shifted  uint
	negation uint
	level    uint32
	high     uint // highest record index covered so far
	done     bool
}

// New returns an iterator over the merges for n records. Sizes below two
// produce no steps.
func New(n int) *Iterator {
	top := uint(1) << (bits.UintSize - 1)
	return &Iterator{
		size:     uint(max(n, 0)),
		shifted:  top,
		negation: top,
		level:    bits.UintSize - 1,
		done:     n < 2,
	}
}

// Next returns the next merge step, or false once the final merge covering
// [0, n) has been produced.
func (it *Iterator) Next() (Step, bool) {
	if it.done {
		return Step{}, false
	}
	if it.shifted >= (it.size+1)/2 && it.shifted != it.negation {
		it.done = true
		return Step{}, false
	}

	if it.negation&it.shifted != 0 {
		it.negation ^= it.shifted
		it.negation ^= it.shifted - 1
		it.shifted = 1
		it.level = 0
	} else {
		it.shifted <<= 1
		it.level++
	}
	mid := it.midpoint()
	for mid >= it.size {
		it.shifted <<= 1
		it.level++
		mid = it.midpoint()
	}

	lower := mid - it.shifted
	upper := min(mid+it.shifted, it.size)

	var singles int
	switch {
	case mid > it.high:
		singles = 2
	case upper > it.high:
		singles = 1
	}
	it.high = upper

	return Step{
		Lower:      int(lower),
		Middle:     int(mid),
		Upper:      int(upper),
		Level:      it.level,
		NewSingles: singles,
	}, true
}

func (it *Iterator) midpoint() uint {
	mask := -it.shifted
	return mask&^it.negation - mask&it.negation
}

// All yields every merge step for n records.
func All(n int) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		it := New(n)
		for s, ok := it.Next(); ok; s, ok = it.Next() {
			if !yield(s) {
				return
			}
		}
	}
}

// Levels returns the number of distinct merge levels for n records.
func Levels(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Count returns the number of merge steps for n records.
func Count(n int) int {
	return max(n-1, 0)
}
