package merge

import "github.com/joshuapare/lozenge/record"

// postWork joins the frontier chains of the two runs into the chains of the
// merged run. The NE and NW cut points are recovered from the loop state
// rather than by comparing again.
func (a *analysis) postWork(m *merger) {
	r := m.recs

	trimmingNE := record.Nil
	switch {
	case a.currL == a.right.Head:
	case !a.consumedLeftEast:
		trimmingNE = a.leftAnchor
	default:
		trimmingNE = a.leftNextBlock
	}

	trimmingNW := record.Nil
	switch {
	case a.currR == a.left.Head:
	case !a.consumedRightWest:
		trimmingNW = a.rightAnchor
	default:
		trimmingNW = a.rightNextBlock
	}

	m.assert((trimmingNE == record.Nil) != (trimmingNW == record.Nil), a.currHead,
		"exactly one north cut expected")

	// An appended side keeps its whole chain.
	if a.leftAnchorRightHead {
		r[a.leftAnchor].Descend = a.left.Descend
	}
	if !a.leftHeadRightAnchor {
		r[a.rightAnchor].Ascend = a.right.Ascend
	}

	r[a.right.Tail].Descend = trimmingNE
	r[a.left.Tail].Ascend = trimmingNW

	a.descendHead = a.right.Descend
	if a.leftHeadRightHead {
		if a.descendHead == record.Nil {
			a.descendHead = a.trimmingSE
		} else {
			r[a.right.Head].Descend = a.trimmingSE
		}
	}

	a.ascendHead = a.left.Ascend
	if !a.leftHeadRightHead {
		if a.ascendHead == record.Nil {
			a.ascendHead = a.trimmingSW
		} else {
			r[a.left.Head].Ascend = a.trimmingSW
		}
	}
}
