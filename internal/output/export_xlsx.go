package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	sheetTotals = "Totals"
	sheetPlates = "Plates"
	sheetMeta   = "Meta"

	// Prefix of Meta rows that carry per-label cap overrides.
	overridePrefix = "limit:"
)

func colName(n int) string {
	// 1-indexed: 1 -> A, 26 -> Z, 27 -> AA
	if n <= 0 {
		return ""
	}
	out := ""
	for n > 0 {
		n--
		out = string(rune('A'+(n%26))) + out
		n /= 26
	}
	return out
}

func cell(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

// ExportXLSX writes doc as a printable workbook: one row per loadout on the
// Totals sheet, the catalog (with plate colors) on Plates, run settings on Meta.
func ExportXLSX(path string, doc Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetTotals); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetPlates); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetMeta); err != nil {
		return err
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeTotals(f, doc, headerStyleID); err != nil {
		return err
	}
	if err := writePlates(f, doc, headerStyleID); err != nil {
		return err
	}
	if err := writeMeta(f, doc, headerStyleID); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeTotals(f *excelize.File, doc Document, headerStyleID int) error {
	headers := []string{"Total kg", "Option", "Plates per side", "Side (heaviest first)", "Plate indices"}
	for i, h := range headers {
		if err := f.SetCellValue(sheetTotals, cell(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetTotals, "A1", cell(len(headers), 1), headerStyleID); err != nil {
		return err
	}

	row := 2
	for _, t := range doc.Totals {
		for i, combo := range t.Combos {
			labels, err := doc.Labels(combo)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheetTotals, cell(1, row), t.Kg)
			_ = f.SetCellValue(sheetTotals, cell(2, row), i+1)
			_ = f.SetCellValue(sheetTotals, cell(3, row), len(combo))
			_ = f.SetCellValue(sheetTotals, cell(4, row), strings.Join(labels, " + "))
			_ = f.SetCellValue(sheetTotals, cell(5, row), joinInts(combo))
			row++
		}
	}

	// Two decimals on the total column.
	if row > 2 {
		styleID, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetTotals, "A2", cell(1, row-1), styleID); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheetTotals, "D", "D", 48)
	return f.SetPanes(sheetTotals, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writePlates(f *excelize.File, doc Document, headerStyleID int) error {
	headers := []string{"Index", "Label", "kg", "Family", "Color"}
	for i, h := range headers {
		if err := f.SetCellValue(sheetPlates, cell(i+1, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetPlates, "A1", cell(len(headers), 1), headerStyleID); err != nil {
		return err
	}

	for i, p := range doc.Meta.Plates {
		row := i + 2
		_ = f.SetCellValue(sheetPlates, cell(1, row), i)
		_ = f.SetCellValue(sheetPlates, cell(2, row), p.Label)
		_ = f.SetCellValue(sheetPlates, cell(3, row), p.Kg)
		_ = f.SetCellValue(sheetPlates, cell(4, row), p.Fam)
		if p.Color == nil {
			continue
		}
		_ = f.SetCellValue(sheetPlates, cell(5, row), *p.Color)
		hex := strings.TrimPrefix(*p.Color, "#")
		if len(hex) != 6 {
			continue
		}
		styleID, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}},
		})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetPlates, cell(5, row), cell(5, row), styleID); err != nil {
			return err
		}
	}
	return nil
}

func writeMeta(f *excelize.File, doc Document, headerStyleID int) error {
	_ = f.SetCellValue(sheetMeta, "A1", "Key")
	_ = f.SetCellValue(sheetMeta, "B1", "Value")
	if err := f.SetCellStyle(sheetMeta, "A1", "B1", headerStyleID); err != nil {
		return err
	}

	rows := [][2]any{
		{"bar_kg", doc.Meta.BarKg},
		{"range_min", doc.Meta.Range.Min},
		{"range_max", doc.Meta.Range.Max},
		{"limit_default", doc.Meta.Limits.Default},
	}
	for _, label := range sortedKeys(doc.Meta.Limits.Overrides) {
		rows = append(rows, [2]any{overridePrefix + label, doc.Meta.Limits.Overrides[label]})
	}
	for i, r := range rows {
		_ = f.SetCellValue(sheetMeta, cell(1, i+2), r[0])
		_ = f.SetCellValue(sheetMeta, cell(2, i+2), r[1])
	}
	return nil
}
