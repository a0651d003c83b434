package output

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

func parseFloatCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// Handle comma decimal separator.
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseIntsCell(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []int{}, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid plate index %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cellAt(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// ImportXLSX reads a workbook written by ExportXLSX back into a Document.
func ImportXLSX(path string) (Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("open xlsx %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range []string{sheetTotals, sheetPlates, sheetMeta} {
		if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
			return Document{}, fmt.Errorf("xlsx %q: missing sheet %q", filepath.Base(path), sheet)
		}
	}
	raw := excelize.Options{RawCellValue: true}

	var doc Document
	doc.Meta.Limits.Overrides = map[string]int{}

	plateRows, err := f.GetRows(sheetPlates, raw)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", sheetPlates, err)
	}
	for i, r := range plateRows {
		if i == 0 || cellAt(r, 1) == "" {
			continue
		}
		kg, _ := parseFloatCell(cellAt(r, 2))
		p := PlateKg{Label: cellAt(r, 1), Kg: kg, Fam: cellAt(r, 3)}
		if c := cellAt(r, 4); c != "" {
			p.Color = &c
		}
		doc.Meta.Plates = append(doc.Meta.Plates, p)
	}

	metaRows, err := f.GetRows(sheetMeta, raw)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", sheetMeta, err)
	}
	for i, r := range metaRows {
		if i == 0 {
			continue
		}
		key, val := cellAt(r, 0), cellAt(r, 1)
		v, ok := parseFloatCell(val)
		if !ok {
			continue
		}
		switch {
		case key == "bar_kg":
			doc.Meta.BarKg = v
		case key == "range_min":
			doc.Meta.Range.Min = v
		case key == "range_max":
			doc.Meta.Range.Max = v
		case key == "limit_default":
			doc.Meta.Limits.Default = int(v)
		case strings.HasPrefix(key, overridePrefix):
			doc.Meta.Limits.Overrides[strings.TrimPrefix(key, overridePrefix)] = int(v)
		}
	}

	totalRows, err := f.GetRows(sheetTotals, raw)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", sheetTotals, err)
	}
	for i, r := range totalRows {
		if i == 0 {
			continue
		}
		kg, ok := parseFloatCell(cellAt(r, 0))
		if !ok {
			// Skip malformed/partial rows.
			continue
		}
		combo, err := parseIntsCell(cellAt(r, 4))
		if err != nil {
			return Document{}, fmt.Errorf("%s row %d: %w", sheetTotals, i+1, err)
		}
		kg = round(kg, 2)
		n := len(doc.Totals)
		if n == 0 || doc.Totals[n-1].Kg != kg {
			doc.Totals = append(doc.Totals, Total{Kg: kg})
			n++
		}
		doc.Totals[n-1].Combos = append(doc.Totals[n-1].Combos, combo)
	}

	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("xlsx %q: %w", filepath.Base(path), err)
	}
	return doc, nil
}
