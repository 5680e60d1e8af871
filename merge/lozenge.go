package merge

import "github.com/joshuapare/lozenge/record"

// trimLozenge prepares the block-skip loop. It scans the NE chain of the
// left block and the NW chain of the right block for the records already
// known to precede the other side, then trims the left descend chain
// against the right head and the right ascend chain against the left head.
// Trimmed prefixes are reversed in place so that, followed from the trim
// point, they lead back to the anchor.
func (a *analysis) trimLozenge(m *merger) {
	r := m.recs
	la, ra := a.leftAnchor, a.rightAnchor
	lh, rh := a.left.Head, a.right.Head

	// Highest NE record of the left block at or below the right head.
	eastExt := la
	if a.leftAnchorRightHead {
		scan := r[la].Descend
		for scan != record.Nil && m.le(scan, rh, CostWork) {
			eastExt = scan
			scan = r[scan].Descend
		}
	}

	// Highest NW record of the right block strictly below the left head.
	westExt := ra
	if !a.leftHeadRightAnchor {
		scan := r[ra].Ascend
		for scan != record.Nil && !m.le(lh, scan, CostWork) {
			westExt = scan
			scan = r[scan].Ascend
		}
	}

	lozengeSE := record.Nil
	if !a.leftAnchorRightHead {
		a.trimmingSE = a.left.Descend
		lozengeSE = la
		if a.leftHeadRightHead {
			for !m.le(m.must(a.trimmingSE, "left descend chain"), rh, CostWork) {
				next := r[a.trimmingSE].Descend
				r[a.trimmingSE].Descend = lozengeSE
				lozengeSE = a.trimmingSE
				a.trimmingSE = next
			}
		} else {
			for a.trimmingSE != record.Nil {
				next := r[a.trimmingSE].Descend
				r[a.trimmingSE].Descend = lozengeSE
				lozengeSE = a.trimmingSE
				a.trimmingSE = next
			}
		}
	} else {
		a.trimmingSE = la
	}
	a.allSEAppended = a.trimmingSE == la
	a.allSEOverlapped = a.trimmingSE == record.Nil

	lozengeSW := record.Nil
	if a.leftHeadRightAnchor {
		a.trimmingSW = a.right.Ascend
		lozengeSW = ra
		if !a.leftHeadRightHead {
			for m.le(lh, m.must(a.trimmingSW, "right ascend chain"), CostWork) {
				next := r[a.trimmingSW].Ascend
				r[a.trimmingSW].Ascend = lozengeSW
				lozengeSW = a.trimmingSW
				a.trimmingSW = next
			}
		} else {
			for a.trimmingSW != record.Nil {
				next := r[a.trimmingSW].Ascend
				r[a.trimmingSW].Ascend = lozengeSW
				lozengeSW = a.trimmingSW
				a.trimmingSW = next
			}
		}
	} else {
		a.trimmingSW = ra
	}
	a.allSWAppended = a.trimmingSW == ra
	a.allSWOverlapped = a.trimmingSW == record.Nil

	m.assert(a.allSWOverlapped == a.leftHeadRightHead, ra, "west trim disagrees with head relation")
	m.assert(a.allSWOverlapped || a.allSEOverlapped, record.Nil, "neither side fully overlapped")
	m.assert(!a.allSWOverlapped || !a.allSEOverlapped, record.Nil, "both sides fully overlapped")

	switch {
	case a.allSEAppended:
		a.parentsHead = eastExt
	case a.trimmingSE == record.Nil:
		a.parentsHead = lozengeSE
	default:
		a.parentsHead = a.trimmingSE
	}
	switch {
	case a.allSWAppended:
		a.childrenHead = westExt
	case a.trimmingSW == record.Nil:
		a.childrenHead = lozengeSW
	default:
		a.childrenHead = a.trimmingSW
	}
	m.must(a.parentsHead, "parents head")
	m.must(a.childrenHead, "children head")

	a.restoreSE = record.Nil
	if a.trimmingSE != record.Nil {
		a.restoreSE = r[a.trimmingSE].Descend
		if a.trimmingSE != la {
			r[a.trimmingSE].Descend = lozengeSE
		}
	}
	a.restoreSW = record.Nil
	if a.trimmingSW != record.Nil {
		a.restoreSW = r[a.trimmingSW].Ascend
		if a.trimmingSW != ra {
			r[a.trimmingSW].Ascend = lozengeSW
		}
	}
}

// blockSkipLoop merges from the block heads found by trimLozenge. Each side
// walks its block list with a small state machine: at a block root the next
// boundary is looked up; just beyond a root, one comparison of the record
// before the next boundary against the other side decides whether the whole
// block goes at once.
func (a *analysis) blockSkipLoop(m *merger, blockSkip bool) {
	r := m.recs
	la := a.leftAnchor
	ra := a.rightAnchor
	lh, rh := a.left.Head, a.right.Head

	r[a.left.Tail].Descend = a.childrenHead
	r[a.right.Tail].Ascend = a.parentsHead

	a.currL = a.parentsHead
	a.currR = a.childrenHead
	a.leftState = atRoot
	a.rightState = atRoot
	a.leftNextBlock = a.currL
	a.rightNextBlock = a.currR
	a.consumedLeftEast = a.leftAnchorRightHead
	a.consumedRightWest = !a.leftHeadRightAnchor
	a.consumeLeft = a.leftHeadRightHead
	if a.consumeLeft {
		a.currHead = m.must(r[a.currL].Prev, "parents head backward link")
	} else {
		a.currHead = m.must(r[a.currR].Prev, "children head backward link")
	}
	m.assert(a.currL != rh && a.currR != lh, a.currL, "block heads already exhausted")

	if a.consumeLeft {
		a.leftState = stepwise
		a.leftNextBlock = m.must(r[a.currL].Descend, "parents head descend link")
	} else {
		a.rightState = stepwise
		a.rightNextBlock = m.must(r[a.currR].Ascend, "children head ascend link")
	}

	leave := justBeyond
	if !blockSkip {
		leave = stepwise
	}

	for {
		if a.consumeLeft {
			prev := a.currL
			r[a.currHead].Next = a.currL
			r[a.currL].Prev = a.currHead
			a.currHead = a.currL
			a.currL = m.must(r[a.currL].Next, "left forward link")

			switch a.leftState {
			case atRoot:
				a.leftNextBlock = m.must(r[prev].Descend, "left block link")
				if a.currL != a.leftNextBlock {
					a.leftState = leave
				}
				if prev == la {
					a.consumedLeftEast = true
				}
			case justBeyond:
				if a.currL == a.leftNextBlock {
					a.leftState = atRoot
					break
				}
				before := m.must(r[a.leftNextBlock].Prev, "left block backward link")
				if before != a.currL && before != r[a.currL].Next {
					if m.le(before, a.currR, CostMerge) {
						a.leftState = atRoot
						a.currHead = before
						a.currL = m.must(r[before].Next, "left block end forward link")
					} else {
						a.leftState = stepwise
					}
				}
			case stepwise:
				if a.currL == a.leftNextBlock {
					a.leftState = atRoot
				}
			}
		} else {
			prev := a.currR
			r[a.currHead].Next = a.currR
			r[a.currR].Prev = a.currHead
			a.currHead = a.currR
			a.currR = m.must(r[a.currR].Next, "right forward link")

			switch a.rightState {
			case atRoot:
				a.rightNextBlock = m.must(r[prev].Ascend, "right block link")
				if a.currR != a.rightNextBlock {
					a.rightState = leave
				}
				if prev == ra {
					a.consumedRightWest = true
				}
			case justBeyond:
				if a.currR == a.rightNextBlock {
					a.rightState = atRoot
					break
				}
				before := m.must(r[a.rightNextBlock].Prev, "right block backward link")
				if before != a.currR && before != r[a.currR].Next {
					if !m.le(a.currL, before, CostMerge) {
						a.rightState = atRoot
						a.currHead = before
						a.currR = m.must(r[before].Next, "right block end forward link")
					} else {
						a.rightState = stepwise
					}
				}
			case stepwise:
				if a.currR == a.rightNextBlock {
					a.rightState = atRoot
				}
			}
		}

		if a.currL == rh || a.currR == lh {
			break
		}
		a.consumeLeft = a.decide(m, a.anchored)
		m.assert((a.consumeLeft && a.currR != lh) || (!a.consumeLeft && a.currL != rh),
			a.currHead, "merge would consume past a run end")
	}
}

// checkBlockList verifies the block lists built by trimLozenge: from the
// parents head the reversed descend prefix climbs to the left anchor, then
// the NE chain climbs strictly to the left tail; the right side mirrors it.
func (a *analysis) checkBlockList(m *merger) {
	r := m.recs
	la, ra := a.leftAnchor, a.rightAnchor

	// Links that move up in position may repeat a key; links that move
	// down must strictly increase it.
	step := func(cur, next int, wantUp, strict bool) {
		if next == record.Nil {
			panic(m.fail(cur, "block list ends early"))
		}
		if (next > cur) != wantUp {
			panic(m.fail(cur, "block list position order broken at %d -> %d", cur, next))
		}
		var ok bool
		if strict {
			ok = r[next].Key > r[cur].Key
		} else {
			ok = r[cur].Key <= r[next].Key
		}
		if !ok {
			panic(m.fail(cur, "block list key order broken at %d -> %d", cur, next))
		}
	}

	cur := a.parentsHead
	if !a.allSEAppended {
		for cur != la {
			next := r[cur].Descend
			step(cur, next, true, false)
			cur = next
		}
	}
	for cur != a.left.Tail {
		next := r[cur].Descend
		step(cur, next, false, true)
		cur = next
	}

	cur = a.childrenHead
	if !a.allSWAppended {
		for cur != ra {
			next := r[cur].Ascend
			step(cur, next, false, true)
			cur = next
		}
	}
	for cur != a.right.Tail {
		next := r[cur].Ascend
		step(cur, next, true, false)
		cur = next
	}
}
