package merge

// preMinimal compares the two heads and nothing else.
func (a *analysis) preMinimal(m *merger) {
	a.leftHeadRightHead = m.le(a.left.Head, a.right.Head, CostMerge)
}

// preAnchor derives the head, tail and anchor relations from one anchor
// comparison. Relations implied by it are set without comparing, and a
// relation between an anchor and a head or tail it coincides with is copied.
func (a *analysis) preAnchor(m *merger) {
	la, ra := a.leftAnchor, a.rightAnchor
	lh, rh := a.left.Head, a.right.Head
	lt, rt := a.left.Tail, a.right.Tail

	a.leftAnchorRightAnchor = m.le(la, ra, CostMerge)

	if a.leftAnchorRightAnchor {
		a.leftAnchorRightTail = true
		a.leftHeadRightAnchor = true

		if rh == ra {
			a.leftAnchorRightHead = a.leftAnchorRightAnchor
		} else {
			a.leftAnchorRightHead = m.le(la, rh, CostWork)
		}
		if lt == la {
			a.leftTailRightAnchor = a.leftAnchorRightAnchor
		} else {
			a.leftTailRightAnchor = m.le(lt, ra, CostWork)
		}
	} else {
		if rt == ra {
			a.leftAnchorRightTail = a.leftAnchorRightAnchor
		} else {
			a.leftAnchorRightTail = m.le(la, rt, CostWork)
		}
		if lh == la {
			a.leftHeadRightAnchor = a.leftAnchorRightAnchor
		} else {
			a.leftHeadRightAnchor = m.le(lh, ra, CostWork)
		}
		a.leftAnchorRightHead = false
		a.leftTailRightAnchor = false
	}

	switch {
	case !a.leftHeadRightAnchor:
		a.leftHeadRightHead = false
	case a.leftAnchorRightHead:
		a.leftHeadRightHead = true
	case lh == la:
		a.leftHeadRightHead = a.leftAnchorRightHead
	case rh == ra:
		a.leftHeadRightHead = a.leftHeadRightAnchor
	default:
		a.leftHeadRightHead = m.le(lh, rh, CostWork)
	}

	a.anchored = true
	a.checkRelations(m)
}

// preHeadFirst compares the heads, then the one anchor relation the head
// result leaves open. No anchor shortcuts are used by the loop afterwards.
func (a *analysis) preHeadFirst(m *merger) {
	a.leftHeadRightHead = m.le(a.left.Head, a.right.Head, CostMerge)

	if a.leftHeadRightHead {
		a.leftHeadRightAnchor = true
		a.leftAnchorRightHead = m.le(a.leftAnchor, a.right.Head, CostWork)
	} else {
		// The left head is the left minimum, so the anchor is above the right head too.
		a.leftAnchorRightHead = false
		a.leftHeadRightAnchor = m.le(a.left.Head, a.rightAnchor, CostWork)
	}

	if m.check {
		m.relation(a.leftHeadRightHead, a.left.Head, a.right.Head, "leftHeadRightHead")
		m.relation(a.leftAnchorRightHead, a.leftAnchor, a.right.Head, "leftAnchorRightHead")
		m.relation(a.leftHeadRightAnchor, a.left.Head, a.rightAnchor, "leftHeadRightAnchor")
	}
}

func (a *analysis) checkRelations(m *merger) {
	if !m.check {
		return
	}
	m.relation(a.leftHeadRightHead, a.left.Head, a.right.Head, "leftHeadRightHead")
	m.relation(a.leftAnchorRightAnchor, a.leftAnchor, a.rightAnchor, "leftAnchorRightAnchor")
	m.relation(a.leftAnchorRightHead, a.leftAnchor, a.right.Head, "leftAnchorRightHead")
	m.relation(a.leftAnchorRightTail, a.leftAnchor, a.right.Tail, "leftAnchorRightTail")
	m.relation(a.leftHeadRightAnchor, a.left.Head, a.rightAnchor, "leftHeadRightAnchor")
	m.relation(a.leftTailRightAnchor, a.left.Tail, a.rightAnchor, "leftTailRightAnchor")
}
