package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/aurceive/plate_combos/internal/lookup"
)

// Lookup is the resolved plate_lookup invocation.
type Lookup struct {
	InPath string
	Query  lookup.Query
}

// LoadLookup parses plate_lookup flags. Exactly one of --kg or --min/--max
// must be given.
func LoadLookup(args []string) (Lookup, error) {
	fs := pflag.NewFlagSet("plate_lookup", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	in := fs.String("in", "combos.json", "generated table (.json or .xlsx)")
	kg := fs.Float64("kg", 0, "target total in kg")
	tol := fs.Float64("tol", lookup.DefaultTolerance, "tolerance around --kg")
	minKg := fs.Float64("min", 0, "lowest total in kg")
	maxKg := fs.Float64("max", 0, "highest total in kg")
	capPer := fs.Int("cap", lookup.DefaultCap, "combos shown per total (0 shows all)")
	minPlates := fs.Int("min-plates", 0, "hide totals needing fewer plates per side")
	maxPlates := fs.Int("max-plates", 0, "hide totals needing more plates per side")
	sortBy := fs.String("sort", string(lookup.SortKg), "kg, distance or plates")

	if err := fs.Parse(args); err != nil {
		return Lookup{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if fs.NArg() > 0 {
		return Lookup{}, fmt.Errorf("%w: unexpected arguments: %s", ErrInvalidConfig, strings.Join(fs.Args(), " "))
	}

	exact := fs.Changed("kg")
	ranged := fs.Changed("min") || fs.Changed("max")
	switch {
	case exact && ranged:
		return Lookup{}, fmt.Errorf("%w: --kg cannot be combined with --min/--max", ErrInvalidConfig)
	case !exact && !ranged:
		return Lookup{}, fmt.Errorf("%w: give --kg or --min and --max", ErrInvalidConfig)
	case ranged && !(fs.Changed("min") && fs.Changed("max")):
		return Lookup{}, fmt.Errorf("%w: range mode needs both --min and --max", ErrInvalidConfig)
	}

	mode, err := lookup.ParseSortMode(*sortBy)
	if err != nil {
		return Lookup{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	out := Lookup{
		InPath: strings.TrimSpace(*in),
		Query: lookup.Query{
			Tolerance: *tol,
			Min:       *minKg,
			Max:       *maxKg,
			Cap:       *capPer,
			MinPlates: *minPlates,
			MaxPlates: *maxPlates,
			Sort:      mode,
		},
	}
	if exact {
		target := *kg
		out.Query.Target = &target
	}
	if out.InPath == "" {
		return Lookup{}, fmt.Errorf("%w: empty input path", ErrInvalidConfig)
	}
	if err := out.Query.Validate(); err != nil {
		return Lookup{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return out, nil
}
