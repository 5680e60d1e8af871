package merge

import "github.com/joshuapare/lozenge/record"

// frontierMerge runs one of the stable strategies that maintain frontier
// chains. The kinds share the surrounding merge and differ in pre-work and
// loop:
//
//	Classic         head comparison    classic loop
//	AnchorClassic   anchor relations   classic loop
//	AnchorSkipless  anchor relations   anchor loop
//	AnchorSkipper   anchor relations   lozenge trim + block-skip loop
//	Legacy          head-first         lozenge trim + block-skip loop
type frontierMerge struct {
	kind      StrategyKind
	blockSkip bool
}

type skipState uint8

const (
	atRoot skipState = iota
	justBeyond
	stepwise
)

// analysis holds the per-merge relations and loop state. Relation fields are
// named by the two records compared: leftAnchorRightHead reports
// key(Middle-1) <= key(right head), and so on.
type analysis struct {
	left, right Run
	leftAnchor  int
	rightAnchor int

	leftHeadRightHead     bool
	leftAnchorRightHead   bool
	leftHeadRightAnchor   bool
	leftAnchorRightTail   bool
	leftTailRightAnchor   bool
	leftAnchorRightAnchor bool
	anchored              bool

	currL, currR      int
	currHead          int
	consumeLeft       bool
	consumedLeftEast  bool
	consumedRightWest bool
	leftNextBlock     int
	rightNextBlock    int
	leftState         skipState
	rightState        skipState

	trimmingSE   int
	trimmingSW   int
	parentsHead  int
	childrenHead int
	restoreSE    int
	restoreSW    int

	allSEAppended   bool
	allSEOverlapped bool
	allSWAppended   bool
	allSWOverlapped bool

	descendHead int // merged descend chain
	ascendHead  int // merged ascend chain
}

func (f frontierMerge) merge(m *merger, left, right Run) Run {
	r := m.recs
	a := &analysis{
		left:        left,
		right:       right,
		leftAnchor:  m.step.Middle - 1,
		rightAnchor: m.step.Middle,
		trimmingSE:  record.Nil,
		trimmingSW:  record.Nil,
		restoreSE:   record.Nil,
		restoreSW:   record.Nil,
	}

	switch f.kind {
	case StrategyClassic:
		a.preMinimal(m)
	case StrategyLegacy:
		a.preHeadFirst(m)
	default:
		a.preAnchor(m)
	}

	r[left.Tail].Next = right.Head
	r[right.Tail].Next = left.Head
	r[right.Head].Prev = left.Tail
	r[left.Head].Prev = right.Tail

	lozenge := f.kind == StrategyAnchorSkipper || f.kind == StrategyLegacy
	switch f.kind {
	case StrategyClassic, StrategyAnchorClassic:
		a.classicLoop(m)
	case StrategyAnchorSkipless:
		a.anchorLoop(m)
	default:
		a.trimLozenge(m)
		if m.check {
			a.checkBlockList(m)
		}
		m.assert(a.leftHeadRightHead == (r[a.parentsHead].Key <= r[a.childrenHead].Key),
			a.parentsHead, "block heads disagree with head relation")
		a.blockSkipLoop(m, f.blockSkip)
	}

	finalHead := right.Head
	if a.leftHeadRightHead {
		finalHead = left.Head
	}
	m.assert((a.consumeLeft && a.currR != left.Head && a.currL == right.Head) ||
		(!a.consumeLeft && a.currL != right.Head && a.currR == left.Head),
		a.currHead, "merge loop ended with both sides remaining")

	// Append whatever remains of the side not consumed last.
	finalTail := left.Tail
	if a.consumeLeft {
		r[a.currHead].Next = a.currR
		r[a.currR].Prev = a.currHead
		finalTail = right.Tail
	} else {
		r[a.currHead].Next = a.currL
		r[a.currL].Prev = a.currHead
	}

	r[finalTail].Next = record.Nil
	r[finalHead].Prev = record.Nil
	r[left.Tail].Descend = record.Nil
	r[right.Tail].Ascend = record.Nil

	if lozenge {
		if a.trimmingSE != record.Nil {
			r[a.trimmingSE].Descend = a.restoreSE
		}
		if a.trimmingSW != record.Nil {
			r[a.trimmingSW].Ascend = a.restoreSW
		}
	}
	a.postWork(m)

	return Run{Head: finalHead, Tail: finalTail, Ascend: a.ascendHead, Descend: a.descendHead}
}
