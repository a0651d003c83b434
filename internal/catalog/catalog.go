// Package catalog holds the immutable table of plate types a run works with.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type Family string

const (
	FamilyKg Family = "kg"
	FamilyLb Family = "lb"
)

var (
	ErrEmptyCatalog      = errors.New("catalog: no plates")
	ErrDuplicateLabel    = errors.New("catalog: duplicate plate label")
	ErrNonPositiveWeight = errors.New("catalog: plate weight must be positive")
	ErrInvalidCap        = errors.New("catalog: per-side cap must be at least 1")
	ErrUnknownLabel      = errors.New("catalog: unknown plate label")
	ErrInvalidFamily     = errors.New("catalog: unsupported plate family")
)

// PlateSpec is the configured form of a plate type.
type PlateSpec struct {
	Label  string
	Mass   Mass
	Family Family
	Color  string
}

// Limits caps how many plates of a label may sit on one side of the bar.
type Limits struct {
	Default   int
	Overrides map[string]int
}

type Plate struct {
	Label      string
	Mass       Mass
	Family     Family
	MaxPerSide int
	Color      string
}

// Catalog is built once per run and never mutated.
type Catalog struct {
	plates []Plate
	index  map[string]int
	limits Limits
	// rank[i] is the position of plate i in canonical (heaviest-first) order.
	rank []int
}

func New(specs []PlateSpec, limits Limits) (*Catalog, error) {
	if len(specs) == 0 {
		return nil, ErrEmptyCatalog
	}
	if limits.Default < 1 {
		return nil, fmt.Errorf("%w: default=%d", ErrInvalidCap, limits.Default)
	}

	c := &Catalog{
		plates: make([]Plate, 0, len(specs)),
		index:  make(map[string]int, len(specs)),
		limits: Limits{Default: limits.Default, Overrides: make(map[string]int, len(limits.Overrides))},
	}
	for i, s := range specs {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return nil, fmt.Errorf("catalog: plate #%d has an empty label", i)
		}
		if _, dup := c.index[label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		if s.Mass <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrNonPositiveWeight, label)
		}
		if s.Family != FamilyKg && s.Family != FamilyLb {
			return nil, fmt.Errorf("%w: %q has family %q", ErrInvalidFamily, label, s.Family)
		}
		c.index[label] = i
		c.plates = append(c.plates, Plate{
			Label:      label,
			Mass:       s.Mass,
			Family:     s.Family,
			MaxPerSide: limits.Default,
			Color:      strings.TrimSpace(s.Color),
		})
	}

	for label, n := range limits.Overrides {
		i, ok := c.index[label]
		if !ok {
			return nil, fmt.Errorf("%w: override for %q", ErrUnknownLabel, label)
		}
		if n < 1 {
			return nil, fmt.Errorf("%w: %q=%d", ErrInvalidCap, label, n)
		}
		c.plates[i].MaxPerSide = n
		c.limits.Overrides[label] = n
	}

	order := make([]int, len(c.plates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return c.heavierFirst(order[a], order[b])
	})
	c.rank = make([]int, len(order))
	for pos, i := range order {
		c.rank[i] = pos
	}
	return c, nil
}

// heavierFirst orders by descending mass; at equal mass kg plates come first.
func (c *Catalog) heavierFirst(a, b int) bool {
	pa, pb := c.plates[a], c.plates[b]
	if pa.Mass != pb.Mass {
		return pa.Mass > pb.Mass
	}
	if pa.Family != pb.Family {
		return pa.Family == FamilyKg
	}
	return a < b
}

func (c *Catalog) Len() int { return len(c.plates) }

func (c *Catalog) Plate(i int) Plate { return c.plates[i] }

// Plates returns a copy of the catalog in configured order.
func (c *Catalog) Plates() []Plate {
	out := make([]Plate, len(c.plates))
	copy(out, c.plates)
	return out
}

func (c *Catalog) Limits() Limits {
	out := Limits{Default: c.limits.Default, Overrides: make(map[string]int, len(c.limits.Overrides))}
	for k, v := range c.limits.Overrides {
		out.Overrides[k] = v
	}
	return out
}

func (c *Catalog) Index(label string) (int, bool) {
	i, ok := c.index[label]
	return i, ok
}

// Indexes resolves labels to plate indices, failing on the first unknown one.
func (c *Catalog) Indexes(labels []string) ([]int, error) {
	out := make([]int, 0, len(labels))
	for _, l := range labels {
		i, ok := c.index[l]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, l)
		}
		out = append(out, i)
	}
	return out, nil
}

func (c *Catalog) Cap(i int) int { return c.plates[i].MaxPerSide }

// Counts is a one-side multiset: Counts[i] plates of catalog index i.
type Counts []int

// Sequence is a one-side multiset expanded to plate indices.
type Sequence []int

func (c *Catalog) NewCounts() Counts { return make(Counts, len(c.plates)) }

// Mass returns the weight of one side.
func (c *Catalog) Mass(counts Counts) Mass {
	var m Mass
	for i, n := range counts {
		m += Mass(n) * c.plates[i].Mass
	}
	return m
}

// Total is bar plus both mirrored sides, rounded to hundredths of a kilogram.
func (c *Catalog) Total(bar Mass, counts Counts) Centikg {
	return (bar + 2*c.Mass(counts)).Centikg()
}

// WithinCaps reports whether no label exceeds its per-side cap.
func (c *Catalog) WithinCaps(counts Counts) bool {
	for i, n := range counts {
		if n > c.plates[i].MaxPerSide {
			return false
		}
	}
	return true
}

// Canonical expands counts heaviest-first, kg before lb at equal weight.
func (c *Catalog) Canonical(counts Counts) Sequence {
	n := 0
	for _, v := range counts {
		n += v
	}
	seq := make(Sequence, 0, n)
	for i, v := range counts {
		for k := 0; k < v; k++ {
			seq = append(seq, i)
		}
	}
	c.SortCanonical(seq)
	return seq
}

func (c *Catalog) SortCanonical(seq Sequence) {
	sort.SliceStable(seq, func(a, b int) bool {
		return c.rank[seq[a]] < c.rank[seq[b]]
	})
}

// IsCanonical reports whether seq is already in heaviest-first order.
func (c *Catalog) IsCanonical(seq Sequence) bool {
	for k := 1; k < len(seq); k++ {
		if c.rank[seq[k-1]] > c.rank[seq[k]] {
			return false
		}
	}
	return true
}

func (c *Catalog) CountsOf(seq Sequence) Counts {
	counts := c.NewCounts()
	for _, i := range seq {
		counts[i]++
	}
	return counts
}

func (c *Catalog) Labels(seq Sequence) []string {
	out := make([]string, len(seq))
	for k, i := range seq {
		out[k] = c.plates[i].Label
	}
	return out
}

// Key is a stable string form of seq, usable as a map key.
func (s Sequence) Key() string {
	var b strings.Builder
	for k, i := range s {
		if k > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}

// Less compares two sequences element-wise, shorter first on a common prefix.
func (s Sequence) Less(o Sequence) bool {
	for k := 0; k < len(s) && k < len(o); k++ {
		if s[k] != o[k] {
			return s[k] < o[k]
		}
	}
	return len(s) < len(o)
}
