package output

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aurceive/plate_combos/internal/catalog"
	"github.com/aurceive/plate_combos/internal/rank"
)

// Document is the combo table as written to disk. Combos hold plate indices
// into Meta.Plates, heaviest first.
type Document struct {
	Meta   Meta    `json:"meta"`
	Totals []Total `json:"totals"`
}

type Meta struct {
	BarKg  float64   `json:"bar_kg"`
	Limits Limits    `json:"limits"`
	Range  RangeKg   `json:"range"`
	Plates []PlateKg `json:"plates"`
}

type Limits struct {
	Default   int            `json:"default"`
	Overrides map[string]int `json:"overrides"`
}

type RangeKg struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type PlateKg struct {
	Label string  `json:"label"`
	Kg    float64 `json:"kg"`
	Fam   string  `json:"fam"`
	Color *string `json:"color"`
}

type Total struct {
	Kg     float64 `json:"kg"`
	Combos [][]int `json:"combos"`
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// BuildDocument lays out ranked groups against the catalog's index space.
func BuildDocument(cat *catalog.Catalog, bar catalog.Mass, minKg, maxKg float64, groups []rank.Group) Document {
	limits := cat.Limits()
	doc := Document{
		Meta: Meta{
			BarKg:  bar.Kg(),
			Limits: Limits{Default: limits.Default, Overrides: limits.Overrides},
			Range:  RangeKg{Min: minKg, Max: maxKg},
			Plates: make([]PlateKg, 0, cat.Len()),
		},
		Totals: make([]Total, 0, len(groups)),
	}
	for _, p := range cat.Plates() {
		pk := PlateKg{Label: p.Label, Kg: round(p.Mass.Kg(), 5), Fam: string(p.Family)}
		if p.Color != "" {
			color := p.Color
			pk.Color = &color
		}
		doc.Meta.Plates = append(doc.Meta.Plates, pk)
	}
	for _, g := range groups {
		t := Total{Kg: g.Total.Kg(), Combos: make([][]int, 0, len(g.Combos))}
		for _, seq := range g.Combos {
			t.Combos = append(t.Combos, append([]int(nil), seq...))
		}
		doc.Totals = append(doc.Totals, t)
	}
	return doc
}

// Labels maps a combo's plate indices back to labels.
func (d Document) Labels(combo []int) ([]string, error) {
	out := make([]string, len(combo))
	for i, idx := range combo {
		if idx < 0 || idx >= len(d.Meta.Plates) {
			return nil, fmt.Errorf("plate index %d out of range [0,%d)", idx, len(d.Meta.Plates))
		}
		out[i] = d.Meta.Plates[idx].Label
	}
	return out, nil
}

// Validate checks that every combo references a known plate.
func (d Document) Validate() error {
	for _, t := range d.Totals {
		for _, c := range t.Combos {
			if _, err := d.Labels(c); err != nil {
				return fmt.Errorf("total %.2f: %w", t.Kg, err)
			}
		}
	}
	return nil
}

// WriteJSON writes doc compactly, or indented when pretty is set. The file is
// replaced atomically.
func WriteJSON(path string, doc Document, pretty bool) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func ReadJSON(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Read loads a document from a .json or .xlsx file.
func Read(path string) (Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ImportXLSX(path)
	}
	return ReadJSON(path)
}
