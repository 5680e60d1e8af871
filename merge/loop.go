package merge

import "github.com/joshuapare/lozenge/record"

// startClassic resets the loop state shared by the classic and anchor loops.
func (a *analysis) startClassic(m *merger) {
	r := m.recs
	a.currL = a.left.Head
	a.currR = a.right.Head
	a.consumeLeft = a.leftHeadRightHead
	if a.consumeLeft {
		a.currHead = a.right.Tail
	} else {
		a.currHead = a.left.Tail
	}
	a.consumedLeftEast = false
	a.consumedRightWest = false
	a.trimmingSE = r[a.left.Head].Descend
	a.trimmingSW = r[a.right.Head].Ascend
	a.leftNextBlock = a.left.Head
	a.rightNextBlock = a.right.Head
}

// classicLoop merges record by record while tracking where each side's
// frontier chain is cut, so that post work can append the remainders.
func (a *analysis) classicLoop(m *merger) {
	a.leftAnchorRightHead = false
	a.leftHeadRightAnchor = true
	a.startClassic(m)
	a.runClassic(m, false, false, false)
}

// anchorLoop is the classic loop with anchor shortcuts: a proven prefix of
// one side is taken whole by jumping to its anchor, and comparisons already
// made during pre-work are reused.
func (a *analysis) anchorLoop(m *merger) {
	r := m.recs
	a.startClassic(m)

	var someLeft, someRight bool
	if a.leftAnchorRightHead && a.left.Head != a.leftAnchor {
		a.currL = a.leftAnchor
		someLeft = true
		a.leftNextBlock = a.leftAnchor
		a.consumedLeftEast = true
		a.trimmingSE = a.currL
		a.currHead = m.must(r[a.currL].Prev, "left anchor backward link")
	}
	if !a.leftHeadRightAnchor {
		a.currR = a.rightAnchor
		someRight = true
		a.rightNextBlock = a.rightAnchor
		a.consumedRightWest = true
		a.trimmingSW = a.currR
		a.currHead = m.must(r[a.currR].Prev, "right anchor backward link")
	}
	a.checkRelations(m)

	a.runClassic(m, true, someLeft, someRight)
}

func (a *analysis) runClassic(m *merger, anchors, someLeft, someRight bool) {
	r := m.recs
	r[a.left.Tail].Descend = a.right.Head
	r[a.right.Tail].Ascend = a.left.Head

	for {
		if a.consumeLeft {
			r[a.currHead].Next = a.currL
			r[a.currL].Prev = a.currHead
			someLeft = true
			switch {
			case a.currL == a.leftAnchor:
				a.consumedLeftEast = true
				a.leftNextBlock = m.must(r[a.leftAnchor].Descend, "left anchor descend link")
				if !someRight {
					a.trimmingSE = a.currL
					a.leftAnchorRightHead = true
				}
			case a.consumedLeftEast:
				if a.leftNextBlock == a.currL {
					a.leftNextBlock = m.must(r[a.leftNextBlock].Descend, "east block link")
				}
			case !someRight && r[a.currL].Descend == a.trimmingSE:
				a.trimmingSE = a.currL
			}
			a.currHead = a.currL
			a.currL = m.must(r[a.currL].Next, "left forward link")
			m.assert(a.currHead != a.currL, a.currL, "left chain loops on itself")
		} else {
			r[a.currHead].Next = a.currR
			r[a.currR].Prev = a.currHead
			someRight = true
			switch {
			case a.currR == a.rightAnchor:
				a.consumedRightWest = true
				a.rightNextBlock = m.must(r[a.rightAnchor].Ascend, "right anchor ascend link")
				if !someLeft {
					a.trimmingSW = a.currR
					a.leftHeadRightAnchor = false
				}
			case a.consumedRightWest:
				if a.rightNextBlock == a.currR {
					a.rightNextBlock = m.must(r[a.rightNextBlock].Ascend, "west block link")
				}
			case !someLeft && r[a.currR].Ascend == a.trimmingSW:
				a.trimmingSW = a.currR
			}
			a.currHead = a.currR
			a.currR = m.must(r[a.currR].Next, "right forward link")
			m.assert(a.currHead != a.currR, a.currR, "right chain loops on itself")
		}

		if a.currL == a.right.Head || a.currR == a.left.Head {
			break
		}
		a.consumeLeft = a.decide(m, anchors)
	}

	r[a.left.Tail].Descend = record.Nil
	r[a.right.Tail].Ascend = record.Nil
}

// decide reports whether the current left record goes next. With anchors,
// a pair already compared during pre-work reuses the stored relation.
func (a *analysis) decide(m *merger, anchors bool) bool {
	if anchors {
		if a.currL == a.leftAnchor {
			switch a.currR {
			case a.rightAnchor:
				return a.leftAnchorRightAnchor
			case a.right.Tail:
				return a.leftAnchorRightTail
			case a.right.Head:
				return a.leftAnchorRightHead
			}
		} else if a.currR == a.rightAnchor {
			switch a.currL {
			case a.left.Tail:
				return a.leftTailRightAnchor
			case a.left.Head:
				return a.leftHeadRightAnchor
			}
		}
	}
	return m.le(a.currL, a.currR, CostMerge)
}
