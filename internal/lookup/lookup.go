// Package lookup answers "how do I load X kg" over a generated combo table.
package lookup

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/aurceive/plate_combos/internal/output"
)

const (
	DefaultTolerance = 0.05
	DefaultCap       = 6

	epsilon = 1e-9
)

var ErrInvalidQuery = errors.New("invalid query")

type SortMode string

const (
	SortKg       SortMode = "kg"
	SortDistance SortMode = "distance"
	SortPlates   SortMode = "plates"
)

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortKg, nil
	case SortKg, SortDistance, SortPlates:
		return m, nil
	default:
		return "", fmt.Errorf("%w: sort must be kg, distance or plates, got %q", ErrInvalidQuery, s)
	}
}

// Query selects totals either around Target (exact mode) or within [Min, Max]
// (range mode, when Target is nil). MinPlates and MaxPlates filter on the
// fewest plates any shown combo needs; zero leaves that side open.
type Query struct {
	Target    *float64
	Tolerance float64
	Min, Max  float64

	Cap       int
	MinPlates int
	MaxPlates int
	Sort      SortMode
}

func (q Query) Validate() error {
	if q.Target != nil {
		if q.Tolerance < 0 {
			return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidQuery)
		}
	} else if q.Min > q.Max {
		return fmt.Errorf("%w: min %.2f > max %.2f", ErrInvalidQuery, q.Min, q.Max)
	}
	if q.Cap < 0 || q.MinPlates < 0 || q.MaxPlates < 0 {
		return fmt.Errorf("%w: cap and plate filters must not be negative", ErrInvalidQuery)
	}
	if q.MaxPlates > 0 && q.MinPlates > q.MaxPlates {
		return fmt.Errorf("%w: min plates %d > max plates %d", ErrInvalidQuery, q.MinPlates, q.MaxPlates)
	}
	if q.Sort == SortDistance && q.Target == nil {
		return fmt.Errorf("%w: distance sort needs a target weight", ErrInvalidQuery)
	}
	return nil
}

type Item struct {
	Kg        float64
	Combos    [][]int
	MinPlates int
}

// Result holds the matching totals. Nearest is set when nothing fell within
// the tolerance and Items are the closest totals on either side instead.
type Result struct {
	Items   []Item
	Nearest bool
}

// Find runs q against doc. Each total shows at most q.Cap combos, in table
// order.
func Find(doc output.Document, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	var picked []output.Total
	var res Result
	if q.Target != nil {
		target := *q.Target
		for _, t := range doc.Totals {
			if math.Abs(t.Kg-target) <= q.Tolerance+epsilon {
				picked = append(picked, t)
			}
		}
		if len(picked) == 0 {
			picked = nearest(doc.Totals, target)
			res.Nearest = len(picked) > 0
		}
	} else {
		for _, t := range doc.Totals {
			if t.Kg >= q.Min-epsilon && t.Kg <= q.Max+epsilon {
				picked = append(picked, t)
			}
		}
	}

	for _, t := range picked {
		it := toItem(t, q.Cap)
		if len(it.Combos) == 0 {
			continue
		}
		if q.MinPlates > 0 && it.MinPlates < q.MinPlates {
			continue
		}
		if q.MaxPlates > 0 && it.MinPlates > q.MaxPlates {
			continue
		}
		res.Items = append(res.Items, it)
	}
	sortItems(res.Items, q)
	return res, nil
}

func toItem(t output.Total, limit int) Item {
	combos := t.Combos
	if limit > 0 && len(combos) > limit {
		combos = combos[:limit]
	}
	it := Item{Kg: t.Kg, Combos: combos}
	for i, c := range combos {
		if i == 0 || len(c) < it.MinPlates {
			it.MinPlates = len(c)
		}
	}
	return it
}

// nearest returns the closest total below target and the closest above it.
func nearest(totals []output.Total, target float64) []output.Total {
	below, above := -1, -1
	for i, t := range totals {
		switch {
		case t.Kg < target:
			if below == -1 || t.Kg > totals[below].Kg {
				below = i
			}
		case above == -1 || t.Kg < totals[above].Kg:
			above = i
		}
	}
	var out []output.Total
	if below != -1 {
		out = append(out, totals[below])
	}
	if above != -1 {
		out = append(out, totals[above])
	}
	return out
}

func sortItems(items []Item, q Query) {
	dist := func(it Item) float64 {
		if q.Target == nil {
			return 0
		}
		return math.Abs(it.Kg - *q.Target)
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch q.Sort {
		case SortDistance:
			if da, db := dist(a), dist(b); da != db {
				return da < db
			}
		case SortPlates:
			if a.MinPlates != b.MinPlates {
				return a.MinPlates < b.MinPlates
			}
			if da, db := dist(a), dist(b); da != db {
				return da < db
			}
		}
		return a.Kg < b.Kg
	})
}
