package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/aurceive/plate_combos/internal/catalog"
	"github.com/aurceive/plate_combos/internal/combos"
	"github.com/aurceive/plate_combos/internal/domain"
	"github.com/aurceive/plate_combos/internal/rank"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// FileName is looked up in the working directory and its parents when no
// -config flag is given.
const FileName = "plate_combos.yaml"

var ErrInvalidConfig = errors.New("invalid config")

type Plate struct {
	Label  string
	Mass   catalog.Mass
	Family catalog.Family
	Color  string
}

// Config is the fully resolved run configuration.
type Config struct {
	Path string // config file that was applied, empty for built-in defaults

	Bar               catalog.Mass
	BarKg             float64
	MinKg             float64
	MaxKg             float64
	DefaultCap        int
	CapOverrides      map[string]int
	MaxPlatesPerSide  int
	MaxCombosPerTotal int
	MergeTolerance    catalog.Mass
	Micro             []string
	HeavyPreference   []string
	Plates            []Plate

	OutPath  string
	Pretty   bool
	XLSXPath string
	Workers  int
	LogLevel string
}

// Defaults returns the built-in configuration.
func Defaults() (Config, error) {
	var cfg Config
	fc, err := decode(defaultsYAML, "defaults.yaml")
	if err != nil {
		return Config{}, err
	}
	if err := cfg.apply(fc); err != nil {
		return Config{}, fmt.Errorf("defaults.yaml: %w", err)
	}
	return cfg, nil
}

// Load resolves defaults, then the config file, then flags. defaultPath is
// used when -config is not given; it may be empty.
func Load(defaultPath string, args []string) (Config, error) {
	fs := pflag.NewFlagSet("plate_combos", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "path to config yaml (default: "+FileName+" in this dir or a parent)")
	out := fs.String("out", "", "output JSON path")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	xlsx := fs.String("xlsx", "", "also write an XLSX workbook to this path")
	workers := fs.Int("workers", 0, "enumeration workers (0 = GOMAXPROCS)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	barKg := fs.Float64("bar-kg", 0, "bar weight in kg")
	minKg := fs.Float64("min", 0, "lowest total in kg")
	maxKg := fs.Float64("max", 0, "highest total in kg")
	maxPlates := fs.Int("max-plates", 0, "most plates per side")
	perTotal := fs.Int("per-total", 0, "combos kept per total (0 keeps all)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg, err := Defaults()
	if err != nil {
		return Config{}, err
	}

	path := strings.TrimSpace(*configPath)
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			fc, err := decode(b, path)
			if err != nil {
				return Config{}, err
			}
			if err := cfg.apply(fc); err != nil {
				return Config{}, fmt.Errorf("%s: %w", path, err)
			}
			cfg.Path = path
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config yaml %s: %w", path, err)
		}
	}

	if fs.Changed("out") {
		cfg.OutPath = strings.TrimSpace(*out)
	}
	if fs.Changed("pretty") {
		cfg.Pretty = *pretty
	}
	if fs.Changed("xlsx") {
		cfg.XLSXPath = strings.TrimSpace(*xlsx)
	}
	if fs.Changed("workers") {
		cfg.Workers = *workers
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = strings.TrimSpace(*logLevel)
	}
	if fs.Changed("bar-kg") {
		cfg.BarKg = *barKg
		cfg.Bar = catalog.KgToMass(*barKg)
	}
	if fs.Changed("min") {
		cfg.MinKg = *minKg
	}
	if fs.Changed("max") {
		cfg.MaxKg = *maxKg
	}
	if fs.Changed("max-plates") {
		cfg.MaxPlatesPerSide = *maxPlates
	}
	if fs.Changed("per-total") {
		cfg.MaxCombosPerTotal = *perTotal
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(b []byte, name string) (domain.Config, error) {
	var fc domain.Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Config{}, nil
		}
		return domain.Config{}, fmt.Errorf("parse config yaml %s: %w", name, err)
	}
	return fc, nil
}

func (c *Config) apply(fc domain.Config) error {
	if fc.BarKg != nil {
		c.BarKg = *fc.BarKg
		c.Bar = catalog.KgToMass(*fc.BarKg)
	}
	if fc.Range != nil {
		if fc.Range.Min != nil {
			c.MinKg = *fc.Range.Min
		}
		if fc.Range.Max != nil {
			c.MaxKg = *fc.Range.Max
		}
	}
	if fc.Limits != nil {
		if fc.Limits.Default != nil {
			c.DefaultCap = *fc.Limits.Default
		}
		if fc.Limits.Overrides != nil {
			c.CapOverrides = make(map[string]int, len(fc.Limits.Overrides))
			for k, v := range fc.Limits.Overrides {
				c.CapOverrides[strings.TrimSpace(k)] = v
			}
		}
	}
	if fc.MaxPlatesPerSide != nil {
		c.MaxPlatesPerSide = *fc.MaxPlatesPerSide
	}
	if fc.MaxCombosPerTotal != nil {
		c.MaxCombosPerTotal = *fc.MaxCombosPerTotal
	}
	if fc.MergeToleranceKg != nil {
		if *fc.MergeToleranceKg < 0 {
			return fmt.Errorf("%w: merge_tolerance_kg must not be negative", ErrInvalidConfig)
		}
		c.MergeTolerance = catalog.KgToMass(*fc.MergeToleranceKg)
	}
	if fc.Micro != nil {
		c.Micro = trimAll(fc.Micro)
	}
	if fc.HeavyPreference != nil {
		c.HeavyPreference = trimAll(fc.HeavyPreference)
	}
	if fc.Plates != nil {
		c.Plates = make([]Plate, 0, len(fc.Plates))
		for _, p := range fc.Plates {
			c.Plates = append(c.Plates, plateFromFile(p))
		}
	}
	if fc.Output != nil {
		if fc.Output.JSONPath != nil {
			c.OutPath = strings.TrimSpace(*fc.Output.JSONPath)
		}
		if fc.Output.Pretty != nil {
			c.Pretty = *fc.Output.Pretty
		}
		if fc.Output.XLSXPath != nil {
			c.XLSXPath = strings.TrimSpace(*fc.Output.XLSXPath)
		}
	}
	if fc.Workers != nil {
		c.Workers = *fc.Workers
	}
	if fc.LogLevel != nil {
		c.LogLevel = strings.TrimSpace(*fc.LogLevel)
	}
	return nil
}

// plateFromFile converts a YAML plate. A plate with neither kg nor lb keeps a
// zero mass so catalog construction reports it.
func plateFromFile(p domain.Plate) Plate {
	out := Plate{Label: strings.TrimSpace(p.Label), Color: strings.TrimSpace(p.Color)}
	if p.Lb != 0 {
		out.Family = catalog.FamilyLb
		out.Mass = catalog.LbToMass(p.Lb)
		return out
	}
	out.Family = catalog.FamilyKg
	out.Mass = catalog.KgToMass(p.Kg)
	return out
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

// Validate checks what can be checked without building the catalog.
func (c Config) Validate() error {
	if c.MinKg > c.MaxKg {
		return fmt.Errorf("%w: range min %.2f > max %.2f", ErrInvalidConfig, c.MinKg, c.MaxKg)
	}
	if c.BarKg < 0 {
		return fmt.Errorf("%w: bar_kg must not be negative", ErrInvalidConfig)
	}
	if c.MaxPlatesPerSide < 0 {
		return fmt.Errorf("%w: max_plates_per_side must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.OutPath == "" {
		return fmt.Errorf("%w: empty output path", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Catalog() (*catalog.Catalog, error) {
	specs := make([]catalog.PlateSpec, 0, len(c.Plates))
	for _, p := range c.Plates {
		specs = append(specs, catalog.PlateSpec{Label: p.Label, Mass: p.Mass, Family: p.Family, Color: p.Color})
	}
	return catalog.New(specs, catalog.Limits{Default: c.DefaultCap, Overrides: c.CapOverrides})
}

func (c Config) Bounds() combos.Bounds {
	return combos.Bounds{Bar: c.Bar, Min: c.MinKg, Max: c.MaxKg, MaxPlates: c.MaxPlatesPerSide}
}

func (c Config) Policy() rank.Policy {
	return rank.Policy{Micro: c.Micro, HeavyOrder: c.HeavyPreference, Limit: c.MaxCombosPerTotal}
}
