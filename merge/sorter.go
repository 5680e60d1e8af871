package merge

import (
	"fmt"

	"github.com/joshuapare/lozenge/mergestep"
	"github.com/joshuapare/lozenge/record"
	"github.com/joshuapare/lozenge/verify"
)

// Run is a sorted span of records.
type Run struct {
	Head int // first record of the sorted chain
	Tail int // last record of the sorted chain

	// Ascend heads the ascend frontier chain, Descend the descend frontier
	// chain. Both are record.Nil when empty or not built.
	Ascend  int
	Descend int
}

func single(i int) Run {
	return Run{Head: i, Tail: i, Ascend: record.Nil, Descend: record.Nil}
}

// Result describes a completed sort.
type Result struct {
	Head int
	Tail int

	// Ascend and Descend head the final frontier chains. After FinalReverse
	// the ascend chain ends at record 0 and the descend chain at record n-1.
	Ascend  int
	Descend int

	Steps int
}

// strategy merges two adjacent runs. left covers [Lower, Middle) and right
// covers [Middle, Upper) of the merger's current step.
type strategy interface {
	merge(m *merger, left, right Run) Run
}

func newStrategy(k StrategyKind, o Options) strategy {
	switch k {
	case StrategySwitch:
		return switchMerge{}
	case StrategyCount:
		return countMerge{}
	case StrategyInterlink:
		return interlinkMerge{}
	case StrategyDFS:
		return dfsMerge{upperLozenge: o.UpperLozenge, tree: o.DFSTree}
	default:
		return frontierMerge{kind: k, blockSkip: !o.DisableBlockSkip}
	}
}

// Sorter sorts record slices of one fixed size with validated options.
// A Sorter is not safe for concurrent use when Options.Counter is not.
type Sorter struct {
	size     int
	opts     Options
	upper    strategy
	lower    strategy
	backfill bool // strategy family leaves Prev unset
	stable   bool // every strategy in use keeps equal keys in index order
}

// New validates opts for size records and returns a Sorter.
func New(size int, opts Options) (*Sorter, error) {
	if err := opts.Validate(size); err != nil {
		return nil, err
	}
	used := opts.effective(size)
	stable := true
	for _, k := range used {
		stable = stable && k.Stable()
	}
	return &Sorter{
		size:     size,
		opts:     opts,
		upper:    newStrategy(opts.Upper, opts),
		lower:    newStrategy(opts.Lower, opts),
		backfill: used[0].family() == familyBaseline,
		stable:   stable,
	}, nil
}

// Sort is a convenience wrapper for New(len(recs), opts) followed by Sort.
func Sort(recs []record.Record, opts Options) (Result, error) {
	s, err := New(len(recs), opts)
	if err != nil {
		return Result{}, err
	}
	return s.Sort(recs)
}

// Size returns the record count the sorter was configured for.
func (s *Sorter) Size() int { return s.size }

// Options returns the sorter's options.
func (s *Sorter) Options() Options { return s.opts }

// Sort links recs into ascending key order and returns the chain ends.
// Keys are read, links are overwritten; records are never moved.
func (s *Sorter) Sort(recs []record.Record) (Result, error) {
	if len(recs) != s.size {
		return Result{}, fmt.Errorf("%w: configured for %d, got %d", ErrSizeMismatch, s.size, len(recs))
	}
	switch len(recs) {
	case 0:
		return Result{Head: record.Nil, Tail: record.Nil, Ascend: record.Nil, Descend: record.Nil}, nil
	case 1:
		recs[0].Reset()
		return Result{Head: 0, Tail: 0, Ascend: record.Nil, Descend: record.Nil}, nil
	}

	m := &merger{recs: recs, counter: s.opts.Counter, check: s.opts.CheckInvariants}
	stack := make([]Run, 0, mergestep.StackCapacity)
	log := s.opts.Logger
	steps := 0

	it := mergestep.New(len(recs))
	for step, ok := it.Next(); ok; step, ok = it.Next() {
		m.step = step
		if step.NewSingles == 2 {
			recs[step.Lower].Reset()
			stack = append(stack, single(step.Lower))
		}
		if step.NewSingles > 0 {
			recs[step.Middle].Reset()
			stack = append(stack, single(step.Middle))
		}
		m.assert(len(stack) >= 2, record.Nil, "run stack underflow")

		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		kind, strat := s.opts.Upper, s.upper
		if int(step.Level) < s.opts.SwitchLevel {
			kind, strat = s.opts.Lower, s.lower
		}
		run := strat.merge(m, left, right)

		if m.check {
			s.checkRun(m, kind, run)
		}
		if s.opts.StepHook != nil {
			s.opts.StepHook(step, run)
		}
		if log != nil {
			log.Debug("merge step",
				"lower", step.Lower, "middle", step.Middle, "upper", step.Upper,
				"level", step.Level, "strategy", kind.String())
		}
		stack = append(stack, run)
		steps++
	}

	m.assert(len(stack) == 1, record.Nil, "run stack not reduced to one run")
	final := stack[0]
	res := Result{Head: final.Head, Tail: final.Tail, Ascend: final.Ascend, Descend: final.Descend, Steps: steps}

	if s.backfill {
		backfillPrev(recs, final.Head)
	}
	if s.opts.FinalReverse {
		res.Ascend, res.Descend = reorient(recs, final)
	}
	if log != nil {
		log.Debug("sort complete", "records", len(recs), "steps", steps,
			"upper", s.opts.Upper.String(), "lower", s.opts.Lower.String())
	}
	return res, nil
}

// checkRun verifies the run a step produced. Order among equal keys is only
// checked when the whole configuration is stable: a stable upper merge of
// runs built by an unstable lower one inherits their order.
func (s *Sorter) checkRun(m *merger, kind StrategyKind, run Run) {
	st := m.step
	if err := verify.Run(m.recs, st.Lower, st.Upper, run.Head, run.Tail, s.stable); err != nil {
		panic(m.fail(run.Head, "%w", err))
	}
	if kind.family() == familyBaseline {
		return
	}
	if err := verify.Frontier(m.recs, st.Lower, st.Upper, run.Ascend, run.Descend); err != nil {
		panic(m.fail(record.Nil, "%w", err))
	}
}

// backfillPrev sets Prev along the final chain for strategies that only
// maintain Next.
func backfillPrev(recs []record.Record, head int) {
	prev := record.Nil
	for i := head; i != record.Nil; i = recs[i].Next {
		recs[i].Prev = prev
		prev = i
	}
}
