package verify

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/joshuapare/lozenge/record"
)

// Coverage checks that the forward chain from head visits every record
// exactly once, reporting the first repeated or missing index.
func Coverage(recs []record.Record, head int) error {
	n := len(recs)
	seen := roaring.New()
	steps := 0
	for cur := head; cur != record.Nil; cur = recs[cur].Next {
		if cur < 0 || cur >= n {
			return &ValidationError{Type: "Coverage", Message: "link out of range", Record: cur}
		}
		if !seen.CheckedAdd(uint32(cur)) {
			return &ValidationError{
				Type:    "Coverage",
				Message: "record visited twice",
				Record:  cur,
				Details: map[string]interface{}{"visited": steps},
			}
		}
		steps++
	}

	if int(seen.GetCardinality()) == n {
		return nil
	}
	missing := roaring.New()
	missing.AddRange(0, uint64(n))
	missing.AndNot(seen)
	return &ValidationError{
		Type:    "Coverage",
		Message: fmt.Sprintf("%d records not linked", missing.GetCardinality()),
		Record:  int(missing.Minimum()),
		Details: map[string]interface{}{"missing": missing.ToArray()},
	}
}
