// Package stats accumulates comparison counts from merge sorts.
package stats

import (
	"github.com/joshuapare/lozenge/merge"
)

// LevelCounts holds the comparisons made at one merge level.
type LevelCounts struct {
	Merge uint64 // main-loop comparisons
	Work  uint64 // pre/post work comparisons
}

// Total returns Merge + Work.
func (c LevelCounts) Total() uint64 { return c.Merge + c.Work }

// Collector counts comparisons by level and cost over any number of sorts.
// It implements merge.Counter. A Collector is not safe for concurrent use;
// give each worker its own and combine them with Add.
type Collector struct {
	levels []LevelCounts
	sorts  int
}

var _ merge.Counter = (*Collector)(nil)

// New returns an empty collector.
func New() *Collector {
	return &Collector{}
}

// Count records one comparison.
func (c *Collector) Count(level uint32, cost merge.Cost) {
	for int(level) >= len(c.levels) {
		c.levels = append(c.levels, LevelCounts{})
	}
	if cost == merge.CostWork {
		c.levels[level].Work++
	} else {
		c.levels[level].Merge++
	}
}

// FinishSort marks the end of one sort; Mean divides by the number of
// finished sorts.
func (c *Collector) FinishSort() { c.sorts++ }

// Sorts returns the number of finished sorts.
func (c *Collector) Sorts() int { return c.sorts }

// Levels returns the number of levels that saw at least one comparison,
// counting from level 0.
func (c *Collector) Levels() int { return len(c.levels) }

// Level returns the counts for level i, zero if none were recorded.
func (c *Collector) Level(i int) LevelCounts {
	if i < 0 || i >= len(c.levels) {
		return LevelCounts{}
	}
	return c.levels[i]
}

// Totals returns the counts summed over all levels.
func (c *Collector) Totals() LevelCounts {
	var t LevelCounts
	for _, l := range c.levels {
		t.Merge += l.Merge
		t.Work += l.Work
	}
	return t
}

// Total returns all comparisons of one cost class.
func (c *Collector) Total(cost merge.Cost) uint64 {
	t := c.Totals()
	if cost == merge.CostWork {
		return t.Work
	}
	return t.Merge
}

// Mean returns the average comparisons per finished sort, both classes
// combined. It returns 0 before the first FinishSort.
func (c *Collector) Mean() float64 {
	if c.sorts == 0 {
		return 0
	}
	return float64(c.Totals().Total()) / float64(c.sorts)
}

// Add merges the counts of o into c.
func (c *Collector) Add(o *Collector) {
	for len(c.levels) < len(o.levels) {
		c.levels = append(c.levels, LevelCounts{})
	}
	for i, l := range o.levels {
		c.levels[i].Merge += l.Merge
		c.levels[i].Work += l.Work
	}
	c.sorts += o.sorts
}

// Reset clears all counts.
func (c *Collector) Reset() {
	c.levels = c.levels[:0]
	c.sorts = 0
}
