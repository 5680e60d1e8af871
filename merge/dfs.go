package merge

import "github.com/joshuapare/lozenge/record"

// dfsMerge is the depth-first reference merge. It trims the south frontier
// chains against the opposite heads, runs a plain merge and splices the
// chains. With upperLozenge it also keeps the north chains; with tree it
// links every overlapping right ascend record to the left record whose
// subtree it belongs to.
//
// Several comparisons are made twice. Their results feed the comparison
// counts reported for the strategy, so they are kept.
type dfsMerge struct {
	upperLozenge bool
	tree         bool
}

func (d dfsMerge) merge(m *merger, left, right Run) Run {
	r := m.recs
	st := m.step
	la, ra := st.Middle-1, st.Middle
	lh, rh := left.Head, right.Head
	lt, rt := left.Tail, right.Tail

	trimmingNE, trimmingNW := record.Nil, record.Nil
	if d.upperLozenge {
		trimmingNE = la
		for trimmingNE != record.Nil && m.le(trimmingNE, rt, CostWork) {
			trimmingNE = r[trimmingNE].Descend
		}
		trimmingNW = ra
		for trimmingNW != record.Nil && !m.le(lt, trimmingNW, CostWork) {
			trimmingNW = r[trimmingNW].Ascend
		}
	}

	trimmingSE, lozengeSE := la, record.Nil
	if !m.le(la, rh, CostWork) {
		trimmingSE, lozengeSE = left.Descend, la
		for trimmingSE != record.Nil && !m.le(trimmingSE, rh, CostWork) {
			next := r[trimmingSE].Descend
			r[trimmingSE].Descend = lozengeSE
			lozengeSE = trimmingSE
			trimmingSE = next
		}
	}

	trimmingSW, lozengeSW := ra, record.Nil
	if m.le(lh, ra, CostWork) {
		trimmingSW, lozengeSW = right.Ascend, ra
		for trimmingSW != record.Nil && m.le(lh, trimmingSW, CostWork) {
			next := r[trimmingSW].Ascend
			r[trimmingSW].Ascend = lozengeSW
			lozengeSW = trimmingSW
			trimmingSW = next
		}
	}

	currA, currB := lh, rh
	r[lt].Next = rh
	r[rt].Next = lh

	consumeLeft := m.le(currA, currB, CostMerge)
	finalHead, currHead := currB, lt
	if consumeLeft {
		finalHead, currHead = currA, rt
	}
	m.assert(currA != rh && currB != lh, currA, "runs already exhausted")

	for currA != rh && currB != lh {
		consumeLeft = m.le(currA, currB, CostMerge)
		if consumeLeft {
			r[currHead].Next = currA
			r[currA].Prev = currHead
			currHead = currA
			currA = m.must(r[currA].Next, "left forward link")
		} else {
			r[currHead].Next = currB
			r[currB].Prev = currHead
			currHead = currB
			currB = m.must(r[currB].Next, "right forward link")
		}
	}

	finalTail := lt
	if consumeLeft {
		r[currHead].Next = currB
		r[currB].Prev = currHead
		finalTail = rt
	} else {
		r[currHead].Next = currA
		r[currA].Prev = currHead
	}
	r[finalTail].Next = record.Nil
	r[finalHead].Prev = record.Nil

	// Appended sides keep their whole chains.
	if m.le(la, rh, CostWork) {
		r[la].Descend = left.Descend
	}
	if !m.le(lh, ra, CostWork) {
		r[ra].Ascend = right.Ascend
	}
	if d.upperLozenge {
		r[rt].Descend = trimmingNE
		r[lt].Ascend = trimmingNW
	}

	// The outermost record stands in as a temporary chain head so that the
	// append below also covers an empty chain.
	saved := r[st.Upper-1].Descend
	r[st.Upper-1].Descend = right.Descend
	r[rh].Descend = trimmingSE
	descendHead := r[st.Upper-1].Descend
	r[st.Upper-1].Descend = saved

	saved = r[st.Lower].Ascend
	r[st.Lower].Ascend = left.Ascend
	r[lh].Ascend = trimmingSW
	ascendHead := r[st.Lower].Ascend
	r[st.Lower].Ascend = saved

	if d.tree {
		d.buildTree(m, trimmingSE, lozengeSE, lozengeSW)
	}

	return Run{Head: finalHead, Tail: finalTail, Ascend: ascendHead, Descend: descendHead}
}

// buildTree points each overlapping right ascend record at the lowest left
// record it is not below.
func (dfsMerge) buildTree(m *merger, trimmingSE, lozengeSE, lozengeSW int) {
	r := m.recs
	m.assert(trimmingSE != record.Nil || lozengeSE != record.Nil, m.step.Middle-1,
		"left south side empty")
	if lozengeSW == record.Nil {
		return
	}
	if trimmingSE == record.Nil {
		// The whole left chain overlaps.
		trimmingSE = lozengeSE
		lozengeSE = r[lozengeSE].Descend
	}
	for lozengeSE != record.Nil && lozengeSW != record.Nil {
		for lozengeSW != record.Nil && !m.le(lozengeSE, lozengeSW, CostWork) {
			next := r[lozengeSW].Ascend
			r[lozengeSW].Ascend = trimmingSE
			lozengeSW = next
		}
		trimmingSE = lozengeSE
		lozengeSE = r[lozengeSE].Descend
	}
	for lozengeSW != record.Nil {
		next := r[lozengeSW].Ascend
		r[lozengeSW].Ascend = trimmingSE
		lozengeSW = next
	}
}
