package trial

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/merge"
	"github.com/joshuapare/lozenge/record"
	"github.com/joshuapare/lozenge/verify"
)

// chunkSize is the number of permutations handed to one pool task.
const chunkSize = 512

// Exhaustive sorts every distinct arrangement of values with opts and
// verifies each result against the reference order. It returns the number
// of arrangements sorted. Repeated values yield repeated arrangements,
// which are sorted again.
func Exhaustive(ctx context.Context, values []uint32, opts merge.Options, workers int, log *slog.Logger) (int, error) {
	n := len(values)
	opts = opts.ForSize(n)
	opts.Counter = nil
	if err := opts.Validate(n); err != nil {
		return 0, err
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	stable := opts.Upper.Stable() && opts.Lower.Stable()

	var chunks [][][]uint32
	var cur [][]uint32
	for perm := range pattern.Permutations(slices.Clone(values)) {
		cur = append(cur, slices.Clone(perm))
		if len(cur) == chunkSize {
			chunks = append(chunks, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}

	b := &batch{}
	err := forEach(ctx, workers, len(chunks), log, func(c int) {
		s, err := merge.New(n, opts)
		if err != nil {
			b.fail(Failure{Trial: c * chunkSize, Err: err})
			return
		}
		recs := make([]record.Record, n)
		for j, keys := range chunks[c] {
			if err := sortOne(s, recs, keys, stable); err != nil {
				b.fail(Failure{Trial: c*chunkSize + j, Keys: keys, Err: err})
				return
			}
		}
	})

	count := 0
	for _, c := range chunks {
		count += len(c)
	}
	log.Debug("exhaustive check complete", "records", n, "arrangements", count,
		"failures", len(b.failures))
	if err != nil {
		return count, err
	}
	if fs := sortFailures(b.failures); len(fs) > 0 {
		return count, fmt.Errorf("%w: %d records, %v", ErrFailed, n, fs[0])
	}
	return count, nil
}

func sortOne(s *merge.Sorter, recs []record.Record, keys []uint32, stable bool) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicError(v)
		}
	}()
	record.Fill(recs, keys)
	res, err := s.Sort(recs)
	if err != nil {
		return err
	}
	if err := verify.All(recs, res.Head, res.Tail, stable); err != nil {
		return err
	}
	return verify.MatchesReference(recs, res.Head, stable)
}
