package merge

import "github.com/joshuapare/lozenge/record"

// reorient reverses both final frontier chains in place. The ascend chain
// then runs toward record 0 and the descend chain toward record n-1, and
// the returned heads are the former chain ends. Empty chains stay Nil.
func reorient(recs []record.Record, final Run) (ascendHead, descendHead int) {
	return reverseChain(recs, final.Ascend, 0, func(r *record.Record) *int { return &r.Ascend }),
		reverseChain(recs, final.Descend, len(recs)-1, func(r *record.Record) *int { return &r.Descend })
}

func reverseChain(recs []record.Record, head, end int, link func(*record.Record) *int) int {
	if head == record.Nil {
		return record.Nil
	}
	prev := end
	for cur := head; cur != record.Nil; {
		l := link(&recs[cur])
		next := *l
		*l = prev
		prev = cur
		cur = next
	}
	return prev
}
