// Package record defines the arena of sortable records shared by the merge
// driver and its strategies.
//
// A record is addressed by its index in the slice passed to a sort. Sorting
// never moves records; it rewires four link slots per record:
//
//   - Next / Prev: the sorted chain of the Run the record belongs to.
//   - Ascend: the ascend frontier chain (prefix minima of a block).
//   - Descend: the descend frontier chain (suffix minima of a block).
//
// Links hold record indices, with Nil marking an absent link.
package record

import (
	"fmt"
	"iter"
)

// Nil marks an absent link.
const Nil = -1

// Record is one sortable entity.
type Record struct {
	Key uint32 // ordering key
	Tag uint32 // original position, used to verify stability

	Next    int
	Prev    int
	Ascend  int
	Descend int
}

// Reset clears all four links.
func (r *Record) Reset() {
	r.Next = Nil
	r.Prev = Nil
	r.Ascend = Nil
	r.Descend = Nil
}

// New allocates records for keys, tagged with their position.
func New(keys []uint32) []Record {
	recs := make([]Record, len(keys))
	Fill(recs, keys)
	return recs
}

// Fill loads keys into recs, tagging each record with its position and
// clearing all links. It panics if the lengths differ.
func Fill(recs []Record, keys []uint32) {
	if len(recs) != len(keys) {
		panic(fmt.Sprintf("record: fill length mismatch: %d records, %d keys", len(recs), len(keys)))
	}
	for i, k := range keys {
		recs[i] = Record{Key: k, Tag: uint32(i)}
		recs[i].Reset()
	}
}

// Forward yields record indices along the Next chain starting at head.
// The walk stops after len(recs) records so a corrupted chain cannot loop.
func Forward(recs []Record, head int) iter.Seq[int] {
	return walk(recs, head, func(r *Record) int { return r.Next })
}

// Backward yields record indices along the Prev chain starting at tail.
func Backward(recs []Record, tail int) iter.Seq[int] {
	return walk(recs, tail, func(r *Record) int { return r.Prev })
}

// AscendChain yields record indices along the Ascend links starting at head.
func AscendChain(recs []Record, head int) iter.Seq[int] {
	return walk(recs, head, func(r *Record) int { return r.Ascend })
}

// DescendChain yields record indices along the Descend links starting at head.
func DescendChain(recs []Record, head int) iter.Seq[int] {
	return walk(recs, head, func(r *Record) int { return r.Descend })
}

func walk(recs []Record, start int, link func(*Record) int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, n := start, 0; i != Nil && n < len(recs); n++ {
			if i < 0 || i >= len(recs) {
				return
			}
			if !yield(i) {
				return
			}
			i = link(&recs[i])
		}
	}
}

// Order returns the record indices of the sorted chain starting at head.
func Order(recs []Record, head int) []int {
	out := make([]int, 0, len(recs))
	for i := range Forward(recs, head) {
		out = append(out, i)
	}
	return out
}

// Keys returns the keys of the sorted chain starting at head.
func Keys(recs []Record, head int) []uint32 {
	out := make([]uint32, 0, len(recs))
	for i := range Forward(recs, head) {
		out = append(out, recs[i].Key)
	}
	return out
}
