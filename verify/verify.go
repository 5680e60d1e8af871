// Package verify provides validation functions for linked record sorts.
// These helpers are used by tests, by the merge driver when invariant
// checking is enabled, and by lozengectl check.
package verify

import (
	"fmt"

	"github.com/joshuapare/lozenge/record"
)

// ValidationError describes one failed check.
type ValidationError struct {
	Type    string
	Message string
	Record  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Record >= 0 {
		return fmt.Sprintf("%s at record %d: %s", e.Type, e.Record, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// All validates a completed sort: order, coverage and backward links.
// Returns the first error encountered, or nil if all checks pass.
func All(recs []record.Record, head, tail int, stable bool) error {
	if err := Sorted(recs, head, stable); err != nil {
		return err
	}
	if err := Coverage(recs, head); err != nil {
		return err
	}
	return Reversible(recs, head, tail)
}

// Sorted checks that the chain from head visits every record once with
// non-decreasing keys. With stable, equal keys must keep index order.
func Sorted(recs []record.Record, head int, stable bool) error {
	if len(recs) == 0 {
		if head != record.Nil {
			return &ValidationError{Type: "Sorted", Message: "empty input with non-nil head", Record: head}
		}
		return nil
	}
	return Run(recs, 0, len(recs), head, record.Nil, stable)
}

// Run checks the forward chain of one merged run over [lo, hi): it stays
// in range, has hi-lo records, is ordered, and ends at tail with a Nil link.
// A Nil tail skips the tail identity check.
func Run(recs []record.Record, lo, hi, head, tail int, stable bool) error {
	if lo < 0 || hi > len(recs) || lo >= hi {
		return &ValidationError{
			Type:    "Run",
			Message: fmt.Sprintf("bad range [%d, %d) for %d records", lo, hi, len(recs)),
			Record:  -1,
		}
	}
	want := hi - lo
	prev := record.Nil
	count := 0
	for cur := head; cur != record.Nil; cur = recs[cur].Next {
		if cur < lo || cur >= hi {
			return &ValidationError{
				Type:    "Run",
				Message: fmt.Sprintf("link leaves range [%d, %d)", lo, hi),
				Record:  cur,
				Details: map[string]interface{}{"prev": prev},
			}
		}
		count++
		if count > want {
			return &ValidationError{
				Type:    "Run",
				Message: fmt.Sprintf("chain longer than %d records", want),
				Record:  cur,
			}
		}
		if prev != record.Nil {
			if err := ordered(recs, prev, cur, stable); err != nil {
				return err
			}
		}
		prev = cur
	}
	if count != want {
		return &ValidationError{
			Type:    "Run",
			Message: fmt.Sprintf("chain has %d records, want %d", count, want),
			Record:  head,
		}
	}
	if tail != record.Nil && prev != tail {
		return &ValidationError{
			Type:    "Run",
			Message: fmt.Sprintf("chain ends at %d, tail is %d", prev, tail),
			Record:  tail,
		}
	}
	return nil
}

func ordered(recs []record.Record, a, b int, stable bool) error {
	ka, kb := recs[a].Key, recs[b].Key
	if ka > kb {
		return &ValidationError{
			Type:    "Order",
			Message: fmt.Sprintf("key %d follows key %d", kb, ka),
			Record:  b,
			Details: map[string]interface{}{"prev": a},
		}
	}
	if stable && ka == kb && a > b {
		return &ValidationError{
			Type:    "Stability",
			Message: fmt.Sprintf("equal key %d out of index order (%d before %d)", ka, a, b),
			Record:  b,
			Details: map[string]interface{}{"prev": a},
		}
	}
	return nil
}

// Reversible checks that Prev links mirror Next links from head to tail.
func Reversible(recs []record.Record, head, tail int) error {
	if head == record.Nil {
		return nil
	}
	if recs[head].Prev != record.Nil {
		return &ValidationError{Type: "Reversible", Message: "head has a backward link", Record: head}
	}
	prev := head
	steps := 0
	for cur := recs[head].Next; cur != record.Nil; cur = recs[cur].Next {
		if recs[cur].Prev != prev {
			return &ValidationError{
				Type:    "Reversible",
				Message: fmt.Sprintf("backward link is %d, want %d", recs[cur].Prev, prev),
				Record:  cur,
			}
		}
		prev = cur
		if steps++; steps > len(recs) {
			return &ValidationError{Type: "Reversible", Message: "forward chain cycles", Record: cur}
		}
	}
	if prev != tail {
		return &ValidationError{
			Type:    "Reversible",
			Message: fmt.Sprintf("forward chain ends at %d, tail is %d", prev, tail),
			Record:  tail,
		}
	}
	return nil
}
