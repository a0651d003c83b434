// Package combos enumerates every one-side plate loadout that lands inside the
// configured total range and is not made redundant by a merge pattern.
package combos

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aurceive/plate_combos/internal/catalog"
	"github.com/aurceive/plate_combos/internal/merge"
)

// RangeEpsilon absorbs float noise when a rounded total sits on a range bound.
const RangeEpsilon = 1e-9

// DefaultMaxPlates bounds the per-side search.
const DefaultMaxPlates = 12

var ErrInvalidBounds = errors.New("combos: invalid bounds")

// Bounds limits what the enumerator searches and keeps. Min and Max are totals
// in kilograms, bar included.
type Bounds struct {
	Bar       catalog.Mass
	Min       float64
	Max       float64
	MaxPlates int
}

func (b Bounds) Validate() error {
	if b.Min > b.Max {
		return fmt.Errorf("%w: range min %.2f > max %.2f", ErrInvalidBounds, b.Min, b.Max)
	}
	if b.Bar < 0 {
		return fmt.Errorf("%w: negative bar weight", ErrInvalidBounds)
	}
	if b.MaxPlates < 0 {
		return fmt.Errorf("%w: max plates per side %d", ErrInvalidBounds, b.MaxPlates)
	}
	return nil
}

func (b Bounds) inRange(total catalog.Centikg) bool {
	kg := total.Kg()
	return kg >= b.Min-RangeEpsilon && kg <= b.Max+RangeEpsilon
}

// Entry is one surviving loadout: the total it produces and its canonical
// heaviest-first sequence.
type Entry struct {
	Total catalog.Centikg
	Seq   catalog.Sequence
}

type Stats struct {
	Candidates    int64
	RangeRejected int64
	Dominated     int64
	Kept          int
}

type Enumerator struct {
	cat      *catalog.Catalog
	patterns *merge.PatternSet
	bounds   Bounds
	workers  int
	log      *zap.Logger

	stats Stats
}

type Option func(*Enumerator)

func WithWorkers(n int) Option {
	return func(e *Enumerator) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Enumerator) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEnumerator(cat *catalog.Catalog, patterns *merge.PatternSet, bounds Bounds, opts ...Option) (*Enumerator, error) {
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	e := &Enumerator{
		cat:      cat,
		patterns: patterns,
		bounds:   bounds,
		workers:  runtime.GOMAXPROCS(0),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Stats reports counters from the last Enumerate call.
func (e *Enumerator) Stats() Stats { return e.stats }

// Enumerate searches every multiset of 0..MaxPlates plates. Each size is an
// independent partition; partitions run concurrently and are merged into one
// deduplicated, sorted result.
func (e *Enumerator) Enumerate(ctx context.Context) ([]Entry, error) {
	parts := make([]map[string]Entry, e.bounds.MaxPlates+1)
	var candidates, rangeRejected, dominated atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for r := 0; r <= e.bounds.MaxPlates; r++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w := &walker{
				e:     e,
				ctx:   gctx,
				size:  r,
				count: e.cat.NewCounts(),
				out:   make(map[string]Entry),
			}
			if err := w.walk(0, 0); err != nil {
				return err
			}
			parts[r] = w.out
			candidates.Add(w.candidates)
			rangeRejected.Add(w.rangeRejected)
			dominated.Add(w.dominated)
			e.log.Debug("size done",
				zap.Int("plates", r),
				zap.Int64("candidates", w.candidates),
				zap.Int("kept", len(w.out)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]Entry)
	for _, part := range parts {
		for k, v := range part {
			seen[k] = v
		}
	}
	out := make([]Entry, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	SortEntries(out)

	e.stats = Stats{
		Candidates:    candidates.Load(),
		RangeRejected: rangeRejected.Load(),
		Dominated:     dominated.Load(),
		Kept:          len(out),
	}
	e.log.Debug("enumeration done",
		zap.Int64("candidates", e.stats.Candidates),
		zap.Int64("out_of_range", e.stats.RangeRejected),
		zap.Int64("dominated", e.stats.Dominated),
		zap.Int("kept", e.stats.Kept))
	return out, nil
}

// SortEntries orders by total, then by sequence.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total < entries[j].Total
		}
		return entries[i].Seq.Less(entries[j].Seq)
	})
}

func entryKey(total catalog.Centikg, seq catalog.Sequence) string {
	return fmt.Sprintf("%d|%s", total, seq.Key())
}

// walker generates the nondecreasing index tuples of one size. Tuples that
// would exceed a cap are never produced.
type walker struct {
	e     *Enumerator
	ctx   context.Context
	size  int
	count catalog.Counts
	out   map[string]Entry

	candidates    int64
	rangeRejected int64
	dominated     int64
}

const ctxCheckEvery = 1 << 14

func (w *walker) walk(from, placed int) error {
	if placed == w.size {
		w.candidates++
		if w.candidates%ctxCheckEvery == 0 {
			if err := w.ctx.Err(); err != nil {
				return err
			}
		}
		w.visit()
		return nil
	}
	for i := from; i < len(w.count); i++ {
		if w.count[i] >= w.e.cat.Cap(i) {
			continue
		}
		w.count[i]++
		err := w.walk(i, placed+1)
		w.count[i]--
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) visit() {
	total := w.e.cat.Total(w.e.bounds.Bar, w.count)
	if !w.e.bounds.inRange(total) {
		w.rangeRejected++
		return
	}
	if w.e.patterns.Dominates(w.count) {
		w.dominated++
		return
	}
	seq := w.e.cat.Canonical(w.count)
	w.out[entryKey(total, seq)] = Entry{Total: total, Seq: seq}
}
