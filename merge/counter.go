package merge

// Cost classifies a key comparison for accounting.
type Cost uint8

const (
	// CostMerge is a comparison made while interleaving two runs; its total
	// grows as n log n on random input.
	CostMerge Cost = iota

	// CostWork is a comparison made while deriving relations or trimming
	// frontier chains around a merge.
	CostWork
)

func (c Cost) String() string {
	switch c {
	case CostMerge:
		return "merge"
	case CostWork:
		return "work"
	default:
		return "unknown"
	}
}

// Counter receives one call per key comparison, tagged with the level of
// the merge step that made it.
type Counter interface {
	Count(level uint32, cost Cost)
}
