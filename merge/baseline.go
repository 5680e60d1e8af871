package merge

import "github.com/joshuapare/lozenge/record"

// Baseline merges maintain Next only and build no frontier chains.

// switchMerge is the switch-optimized classic merge. The tails are compared
// first; the side whose tail sorts last (b) can never run out while the
// other side (a) still has records, so only a's count is tracked.
type switchMerge struct{}

func (switchMerge) merge(m *merger, left, right Run) Run {
	r := m.recs
	st := m.step

	var currA, currB, finalTail, countA int
	if !m.le(right.Tail, left.Tail, CostMerge) {
		currB, currA = right.Head, left.Head
		finalTail = right.Tail
		countA = st.Middle - st.Lower
	} else {
		currB, currA = left.Head, right.Head
		finalTail = left.Tail
		countA = st.Upper - st.Middle
	}

	// b is only consumed when strictly below a, so b keeps at least its
	// tail until a is exhausted, duplicates included.
	var finalHead int
	if m.le(currA, currB, CostMerge) {
		finalHead = currA
		currA = r[currA].Next
		countA--
	} else {
		finalHead = currB
		currB = r[currB].Next
	}

	currHead := finalHead
	for ; countA > 0; countA-- {
		for !m.le(currA, currB, CostMerge) {
			r[currHead].Next = currB
			currHead = currB
			currB = r[currB].Next
		}
		r[currHead].Next = currA
		currHead = currA
		currA = r[currA].Next
	}
	r[currHead].Next = currB

	return Run{Head: finalHead, Tail: finalTail, Ascend: record.Nil, Descend: record.Nil}
}

// countMerge terminates on the remaining record counts of both sides.
type countMerge struct{}

func (countMerge) merge(m *merger, left, right Run) Run {
	r := m.recs
	st := m.step

	currA, currB := left.Head, right.Head
	countA := st.Middle - st.Lower
	countB := st.Upper - st.Middle

	var finalHead int
	consumeLeft := m.le(currA, currB, CostMerge)
	if consumeLeft {
		finalHead = currA
		currA = r[currA].Next
		countA--
	} else {
		finalHead = currB
		currB = r[currB].Next
		countB--
	}

	currHead := finalHead
	for countA > 0 && countB > 0 {
		consumeLeft = m.le(currA, currB, CostMerge)
		if consumeLeft {
			r[currHead].Next = currA
			currHead = currA
			currA = r[currA].Next
			countA--
		} else {
			r[currHead].Next = currB
			currHead = currB
			currB = r[currB].Next
			countB--
		}
	}

	finalTail := left.Tail
	if consumeLeft {
		r[currHead].Next = currB
		finalTail = right.Tail
	} else {
		r[currHead].Next = currA
	}
	return Run{Head: finalHead, Tail: finalTail, Ascend: record.Nil, Descend: record.Nil}
}

// interlinkMerge links each tail to the other run's head so that running
// off one side lands on the other side's head, which ends the loop.
type interlinkMerge struct{}

func (interlinkMerge) merge(m *merger, left, right Run) Run {
	r := m.recs
	leftHead, rightHead := left.Head, right.Head

	r[left.Tail].Next = rightHead
	r[right.Tail].Next = leftHead

	currA, currB := leftHead, rightHead
	var finalHead, currHead int
	consumeLeft := m.le(currA, currB, CostMerge)
	if consumeLeft {
		finalHead, currHead = currA, right.Tail
	} else {
		finalHead, currHead = currB, left.Tail
	}

	for {
		if consumeLeft {
			r[currHead].Next = currA
			currHead = currA
			currA = r[currA].Next
		} else {
			r[currHead].Next = currB
			currHead = currB
			currB = r[currB].Next
		}
		if currA == rightHead || currB == leftHead {
			break
		}
		consumeLeft = m.le(currA, currB, CostMerge)
	}

	finalTail := left.Tail
	if consumeLeft {
		r[currHead].Next = currB
		finalTail = right.Tail
	} else {
		r[currHead].Next = currA
	}
	r[finalTail].Next = record.Nil
	return Run{Head: finalHead, Tail: finalTail, Ascend: record.Nil, Descend: record.Nil}
}
