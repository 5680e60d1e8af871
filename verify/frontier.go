package verify

import (
	"fmt"

	"github.com/joshuapare/lozenge/record"
)

// Frontier checks the frontier chains of a run over [lo, hi). The ascend
// chain moves to higher indices through strict prefix minima, so its keys
// strictly decrease. The descend chain moves to lower indices through
// suffix minima, which keep ties, so equal keys may repeat along it but
// never increase. Both chains must stay in range and end.
func Frontier(recs []record.Record, lo, hi, ascend, descend int) error {
	if err := frontierChain(recs, lo, hi, ascend, true); err != nil {
		return err
	}
	return frontierChain(recs, lo, hi, descend, false)
}

func frontierChain(recs []record.Record, lo, hi, head int, up bool) error {
	name := "DescendChain"
	if up {
		name = "AscendChain"
	}
	prev := record.Nil
	steps := 0
	for cur := head; cur != record.Nil; {
		if cur < lo || cur >= hi {
			return &ValidationError{
				Type:    name,
				Message: fmt.Sprintf("link leaves range [%d, %d)", lo, hi),
				Record:  cur,
				Details: map[string]interface{}{"prev": prev},
			}
		}
		if prev != record.Nil {
			if (cur > prev) != up {
				return &ValidationError{
					Type:    name,
					Message: fmt.Sprintf("position order broken after %d", prev),
					Record:  cur,
				}
			}
			if recs[cur].Key > recs[prev].Key {
				return &ValidationError{
					Type:    name,
					Message: fmt.Sprintf("key %d rises above %d", recs[cur].Key, recs[prev].Key),
					Record:  cur,
					Details: map[string]interface{}{"prev": prev},
				}
			}
			if up && recs[cur].Key == recs[prev].Key {
				return &ValidationError{
					Type:    name,
					Message: fmt.Sprintf("key %d repeats, want strictly below", recs[cur].Key),
					Record:  cur,
					Details: map[string]interface{}{"prev": prev},
				}
			}
		}
		if steps++; steps > hi-lo {
			return &ValidationError{Type: name, Message: "chain does not end", Record: cur}
		}
		prev = cur
		if up {
			cur = recs[cur].Ascend
		} else {
			cur = recs[cur].Descend
		}
	}
	return nil
}

// Lozenge checks the reoriented frontier links after a complete sort.
// Ascend links join prefix maxima left to right and prefix strict minima
// right to left; Descend links join suffix strict maxima right to left
// and suffix minima left to right. Both minimum scans must end at head.
// Links not fixed by those scans are not inspected.
func Lozenge(recs []record.Record, head int) error {
	n := len(recs)
	if n == 0 {
		return nil
	}

	want := make([]int, n)
	for i := range want {
		want[i] = record.Nil
	}
	maxV, minV := recs[0].Key, recs[0].Key
	maxI, minI := 0, 0
	for i := 1; i < n; i++ {
		v := recs[i].Key
		if v >= maxV {
			want[maxI] = i
			maxV, maxI = v, i
		} else if v < minV {
			want[i] = minI
			minV, minI = v, i
		}
	}
	if minI != head {
		return &ValidationError{
			Type:    "Lozenge",
			Message: fmt.Sprintf("ascend scan minimum is %d, head is %d", minI, head),
			Record:  minI,
		}
	}
	if err := compareLinks(recs, want, "Lozenge", func(r *record.Record) int { return r.Ascend }); err != nil {
		return err
	}

	for i := range want {
		want[i] = record.Nil
	}
	maxV, minV = recs[n-1].Key, recs[n-1].Key
	maxI, minI = n-1, n-1
	for i := n - 2; i >= 0; i-- {
		v := recs[i].Key
		if v > maxV {
			want[maxI] = i
			maxV, maxI = v, i
		} else if v <= minV {
			want[i] = minI
			minV, minI = v, i
		}
	}
	if minI != head {
		return &ValidationError{
			Type:    "Lozenge",
			Message: fmt.Sprintf("descend scan minimum is %d, head is %d", minI, head),
			Record:  minI,
		}
	}
	return compareLinks(recs, want, "Lozenge", func(r *record.Record) int { return r.Descend })
}

func compareLinks(recs []record.Record, want []int, kind string, link func(*record.Record) int) error {
	for i, w := range want {
		if w == record.Nil {
			continue
		}
		if got := link(&recs[i]); got != w {
			return &ValidationError{
				Type:    kind,
				Message: fmt.Sprintf("link is %d, want %d", got, w),
				Record:  i,
			}
		}
	}
	return nil
}

// DFSTree checks the ascend links built by the DFS strategy with tree
// construction and final reorientation: every record links to the nearest
// earlier record whose key does not exceed its own, and the remaining
// roots link from head down to record 0. Every link is compared, including
// Nil ones.
func DFSTree(recs []record.Record, head int) error {
	n := len(recs)
	if n == 0 {
		return nil
	}
	want := make([]int, n)
	for i := range want {
		want[i] = record.Nil
	}
	roots := make([]int, 0, n)
	for i := n - 1; i >= 0; i-- {
		for len(roots) > 0 && recs[i].Key <= recs[roots[len(roots)-1]].Key {
			want[roots[len(roots)-1]] = i
			roots = roots[:len(roots)-1]
		}
		roots = append(roots, i)
	}
	if roots[0] != head {
		return &ValidationError{
			Type:    "DFSTree",
			Message: fmt.Sprintf("root scan ends at %d, head is %d", roots[0], head),
			Record:  roots[0],
		}
	}
	for i := 0; i+1 < len(roots); i++ {
		want[roots[i]] = roots[i+1]
	}
	for i, w := range want {
		if got := recs[i].Ascend; got != w {
			return &ValidationError{
				Type:    "DFSTree",
				Message: fmt.Sprintf("ascend link is %d, want %d", got, w),
				Record:  i,
			}
		}
	}
	return nil
}
