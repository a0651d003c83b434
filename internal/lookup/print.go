package lookup

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/aurceive/plate_combos/internal/output"
)

// Print writes res as plain text, one block per total with one combo per line.
func Print(w io.Writer, doc output.Document, q Query, res Result) error {
	if len(res.Items) == 0 {
		_, err := fmt.Fprintln(w, "No results")
		return err
	}

	if res.Nearest {
		if _, err := fmt.Fprintf(w, "Nothing within %.2f kg of %.2f kg; nearest totals:\n", q.Tolerance, *q.Target); err != nil {
			return err
		}
	}

	for _, it := range res.Items {
		header := fmt.Sprintf("%.2f kg", it.Kg)
		if q.Target != nil {
			header += " (" + signedDiff(it.Kg-*q.Target) + ")"
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		for _, combo := range it.Combos {
			labels, err := doc.Labels(combo)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  - %s\n", strings.Join(labels, " + ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func signedDiff(d float64) string {
	d = math.Round(d*100) / 100
	if d == 0 {
		// avoid "-0.00"
		d = 0
	}
	if d >= 0 {
		return fmt.Sprintf("+%.2f kg", d)
	}
	return fmt.Sprintf("%.2f kg", d)
}
