// Package merge finds equal-weight substitutions between a few small plates and
// one heavier plate, and uses them to recognise redundant loadouts.
package merge

import (
	"github.com/aurceive/plate_combos/internal/catalog"
)

const (
	MinSourceSize = 2
	MaxSourceSize = 4
)

// DefaultTolerance is 1e-2 kg.
const DefaultTolerance = 10 * catalog.Gram

// Pattern says Source (2 to 4 plates) weighs the same as one Target plate.
type Pattern struct {
	Source catalog.Counts
	Target int
}

// PatternSet is read-only after Build.
type PatternSet struct {
	cat      *catalog.Catalog
	patterns []Pattern
	// needs[p] lists the non-zero entries of patterns[p].Source.
	needs [][]need
}

type need struct {
	index int
	count int
}

// Build enumerates every multiset of MinSourceSize..MaxSourceSize plates, drawn
// with repetition, whose weight matches a catalog plate within tol.
func Build(cat *catalog.Catalog, tol catalog.Mass) *PatternSet {
	ps := &PatternSet{cat: cat}
	n := cat.Len()
	for r := MinSourceSize; r <= MaxSourceSize; r++ {
		CombinationsWithReplacement(n, r, func(idx []int) bool {
			counts := cat.NewCounts()
			var sum catalog.Mass
			for _, i := range idx {
				counts[i]++
				sum += cat.Plate(i).Mass
			}
			for t := 0; t < n; t++ {
				if !withinTolerance(sum, cat.Plate(t).Mass, tol) {
					continue
				}
				if isSelf(counts, t) {
					continue
				}
				ps.add(Pattern{Source: append(catalog.Counts(nil), counts...), Target: t})
			}
			return true
		})
	}
	return ps
}

func withinTolerance(a, b, tol catalog.Mass) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func isSelf(counts catalog.Counts, target int) bool {
	for i, c := range counts {
		if i == target {
			if c != 1 {
				return false
			}
		} else if c != 0 {
			return false
		}
	}
	return true
}

func (ps *PatternSet) add(p Pattern) {
	var ns []need
	for i, c := range p.Source {
		if c > 0 {
			ns = append(ns, need{index: i, count: c})
		}
	}
	ps.patterns = append(ps.patterns, p)
	ps.needs = append(ps.needs, ns)
}

func (ps *PatternSet) Len() int { return len(ps.patterns) }

// Patterns returns a copy of the set.
func (ps *PatternSet) Patterns() []Pattern {
	out := make([]Pattern, len(ps.patterns))
	for i, p := range ps.patterns {
		out[i] = Pattern{Source: append(catalog.Counts(nil), p.Source...), Target: p.Target}
	}
	return out
}

// Dominates reports whether counts holds at least one full copy of some
// pattern's source while its target is still under cap. Only a single
// substitution step is considered; chains of substitutions are not followed.
func (ps *PatternSet) Dominates(counts catalog.Counts) bool {
	_, ok := ps.Match(counts)
	return ok
}

// Match returns the first pattern that dominates counts.
func (ps *PatternSet) Match(counts catalog.Counts) (Pattern, bool) {
	for p, ns := range ps.needs {
		target := ps.patterns[p].Target
		if counts[target] >= ps.cat.Cap(target) {
			continue
		}
		full := true
		for _, nd := range ns {
			if counts[nd.index] < nd.count {
				full = false
				break
			}
		}
		if full {
			return ps.patterns[p], true
		}
	}
	return Pattern{}, false
}
