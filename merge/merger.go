package merge

import (
	"fmt"

	"github.com/joshuapare/lozenge/mergestep"
	"github.com/joshuapare/lozenge/record"
)

// merger carries the state shared by all strategies during one sort.
type merger struct {
	recs    []record.Record
	step    mergestep.Step
	counter Counter
	check   bool
}

// le reports recs[a].Key <= recs[b].Key and accounts for the comparison.
func (m *merger) le(a, b int, cost Cost) bool {
	if m.counter != nil {
		m.counter.Count(m.step.Level, cost)
	}
	return m.recs[a].Key <= m.recs[b].Key
}

// must returns id, panicking when it is Nil.
func (m *merger) must(id int, what string) int {
	if id == record.Nil {
		panic(m.fail(record.Nil, "%s is nil", what))
	}
	return id
}

func (m *merger) assert(ok bool, rec int, msg string) {
	if !ok {
		panic(m.fail(rec, "%s", msg))
	}
}

func (m *merger) fail(rec int, format string, args ...any) *InvariantError {
	return &InvariantError{Step: m.step, Record: rec, Err: fmt.Errorf(format, args...)}
}

// relation re-checks a derived comparison result when checks are enabled.
func (m *merger) relation(got bool, a, b int, name string) {
	if !m.check {
		return
	}
	if want := m.recs[a].Key <= m.recs[b].Key; got != want {
		panic(m.fail(a, "derived relation %s = %t, keys %d <= %d give %t",
			name, got, m.recs[a].Key, m.recs[b].Key, want))
	}
}
