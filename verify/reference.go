package verify

import (
	"fmt"

	"github.com/google/btree"

	"github.com/joshuapare/lozenge/record"
)

// refItem orders records by key, then by index.
type refItem struct {
	key   uint32
	index int
}

func (a refItem) Less(than btree.Item) bool {
	b := than.(refItem)
	if a.key != b.key {
		return a.key < b.key
	}
	return a.index < b.index
}

// Reference returns record indices in stable ascending key order,
// computed independently of the link fields.
func Reference(recs []record.Record) []int {
	tr := btree.New(8)
	for i := range recs {
		tr.ReplaceOrInsert(refItem{key: recs[i].Key, index: i})
	}
	order := make([]int, 0, tr.Len())
	tr.Ascend(func(it btree.Item) bool {
		order = append(order, it.(refItem).index)
		return true
	})
	return order
}

// MatchesReference checks the forward chain from head against Reference.
// With stable the indices must match exactly, otherwise only the keys.
func MatchesReference(recs []record.Record, head int, stable bool) error {
	ref := Reference(recs)
	got := record.Order(recs, head)
	if len(got) != len(ref) {
		return &ValidationError{
			Type:    "Reference",
			Message: fmt.Sprintf("chain has %d records, want %d", len(got), len(ref)),
			Record:  head,
		}
	}
	for i := range ref {
		if stable && got[i] != ref[i] {
			return &ValidationError{
				Type:    "Reference",
				Message: fmt.Sprintf("position %d holds record %d, want %d", i, got[i], ref[i]),
				Record:  got[i],
			}
		}
		if recs[got[i]].Key != recs[ref[i]].Key {
			return &ValidationError{
				Type:    "Reference",
				Message: fmt.Sprintf("position %d holds key %d, want %d", i, recs[got[i]].Key, recs[ref[i]].Key),
				Record:  got[i],
			}
		}
	}
	return nil
}
