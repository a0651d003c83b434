// Package rank groups enumerated loadouts by total and keeps, per total, the
// few that are quickest to load.
package rank

import (
	"fmt"
	"sort"

	"github.com/aurceive/plate_combos/internal/catalog"
	"github.com/aurceive/plate_combos/internal/combos"
)

// DefaultLimit is how many loadouts are kept per total.
const DefaultLimit = 10

// Policy names the plates that matter for ordering. Micro plates are the
// fiddly small denominations; HeavyOrder lists preferred heavy plates, most
// preferred first. A Limit of zero or less keeps every survivor.
type Policy struct {
	Micro      []string
	HeavyOrder []string
	Limit      int
}

type Group struct {
	Total  catalog.Centikg
	Combos []catalog.Sequence
}

type Ranker struct {
	cat   *catalog.Catalog
	micro []bool
	heavy []int
	limit int
}

func NewRanker(cat *catalog.Catalog, p Policy) (*Ranker, error) {
	micro, err := cat.Indexes(p.Micro)
	if err != nil {
		return nil, fmt.Errorf("micro plates: %w", err)
	}
	heavy, err := cat.Indexes(p.HeavyOrder)
	if err != nil {
		return nil, fmt.Errorf("heavy preference: %w", err)
	}
	r := &Ranker{
		cat:   cat,
		micro: make([]bool, cat.Len()),
		heavy: heavy,
		limit: p.Limit,
	}
	for _, i := range micro {
		r.micro[i] = true
	}
	return r, nil
}

// scored caches the tie-break inputs of one sequence.
type scored struct {
	seq    catalog.Sequence
	counts catalog.Counts
	micro  int
	plates int
}

func (r *Ranker) score(seq catalog.Sequence) scored {
	s := scored{seq: seq, counts: r.cat.CountsOf(seq), plates: len(seq)}
	for _, i := range seq {
		if r.micro[i] {
			s.micro++
		}
	}
	return s
}

// MicroCount is the number of micro plates in seq.
func (r *Ranker) MicroCount(seq catalog.Sequence) int {
	return r.score(seq).micro
}

// Rank returns one group per distinct total, ascending by total.
func (r *Ranker) Rank(entries []combos.Entry) []Group {
	byTotal := make(map[catalog.Centikg][]catalog.Sequence)
	var totals []catalog.Centikg
	for _, e := range entries {
		if _, ok := byTotal[e.Total]; !ok {
			totals = append(totals, e.Total)
		}
		byTotal[e.Total] = append(byTotal[e.Total], e.Seq)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i] < totals[j] })

	out := make([]Group, 0, len(totals))
	for _, t := range totals {
		out = append(out, Group{Total: t, Combos: r.RankGroup(byTotal[t])})
	}
	return out
}

// RankGroup prunes and orders the loadouts of a single total.
func (r *Ranker) RankGroup(seqs []catalog.Sequence) []catalog.Sequence {
	seen := make(map[string]struct{}, len(seqs))
	cands := make([]scored, 0, len(seqs))
	for _, s := range seqs {
		k := s.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		cands = append(cands, r.score(s))
	}
	if len(cands) == 0 {
		return nil
	}

	minMicro := cands[0].micro
	for _, c := range cands[1:] {
		minMicro = min(minMicro, c.micro)
	}
	cands = keep(cands, func(c scored) bool { return c.micro == minMicro })

	minPlates := cands[0].plates
	for _, c := range cands[1:] {
		minPlates = min(minPlates, c.plates)
	}
	cands = keep(cands, func(c scored) bool { return c.plates == minPlates })

	sort.Slice(cands, func(i, j int) bool { return r.less(cands[i], cands[j]) })

	if r.limit > 0 && len(cands) > r.limit {
		cands = cands[:r.limit]
	}
	out := make([]catalog.Sequence, len(cands))
	for i, c := range cands {
		out[i] = c.seq
	}
	return out
}

// less compares (-count(h) for h in HeavyOrder..., micro, plates), falling back
// to the sequences themselves so the order never depends on input order.
func (r *Ranker) less(a, b scored) bool {
	for _, h := range r.heavy {
		if a.counts[h] != b.counts[h] {
			return a.counts[h] > b.counts[h]
		}
	}
	if a.micro != b.micro {
		return a.micro < b.micro
	}
	if a.plates != b.plates {
		return a.plates < b.plates
	}
	return a.seq.Less(b.seq)
}

func keep(in []scored, pred func(scored) bool) []scored {
	out := in[:0]
	for _, c := range in {
		if pred(c) {
			out = append(out, c)
		}
	}
	return out
}
