package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the YAML schema of a plate_combos config file. Every field is
// optional; absent fields keep the built-in defaults.
type Config struct {
	BarKg *float64 `yaml:"bar_kg"`
	Range *Range   `yaml:"range"`
	// Limits caps plates per side: a default for every label plus per-label overrides.
	Limits *Limits `yaml:"limits"`
	// MaxPlatesPerSide bounds the search; combos with more plates are never generated.
	MaxPlatesPerSide *int `yaml:"max_plates_per_side"`
	// MaxCombosPerTotal keeps at most this many loadouts per total (0 keeps all).
	MaxCombosPerTotal *int     `yaml:"max_combos_per_total"`
	MergeToleranceKg  *float64 `yaml:"merge_tolerance_kg"`
	// Micro lists the small plates whose use is minimised first.
	Micro []string `yaml:"micro"`
	// HeavyPreference lists heavy plates, most preferred first.
	HeavyPreference []string `yaml:"heavy_preference"`
	// Plates replaces the whole catalog when present; order defines plate indices.
	Plates   []Plate `yaml:"plates"`
	Output   *Output `yaml:"output"`
	Workers  *int    `yaml:"workers"`
	LogLevel *string `yaml:"log_level"`
}

type Range struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

type Limits struct {
	Default   *int           `yaml:"default"`
	Overrides map[string]int `yaml:"overrides"`
}

// Plate sets exactly one of Kg or Lb; the one set decides the plate family.
type Plate struct {
	Label string  `yaml:"label"`
	Kg    float64 `yaml:"kg"`
	Lb    float64 `yaml:"lb"`
	Color string  `yaml:"color"`
}

type Output struct {
	JSONPath *string `yaml:"json"`
	Pretty   *bool   `yaml:"pretty"`
	XLSXPath *string `yaml:"xlsx"`
}

func checkKeys(section string, value *yaml.Node, keys ...string) error {
	if value == nil || value.Kind != yaml.MappingNode {
		return nil
	}
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		k := value.Content[i]
		if k.Kind != yaml.ScalarNode {
			continue
		}
		if _, ok := allowed[k.Value]; !ok {
			return fmt.Errorf("%s: unsupported key %q (line %d)", section, k.Value, k.Line)
		}
	}
	return nil
}

func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys("config", value,
		"bar_kg", "range", "limits", "max_plates_per_side", "max_combos_per_total",
		"merge_tolerance_kg", "micro", "heavy_preference", "plates", "output",
		"workers", "log_level",
	); err != nil {
		return err
	}
	type raw Config
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*c = Config(tmp)
	return nil
}

func (r *Range) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys("range", value, "min", "max"); err != nil {
		return err
	}
	type raw Range
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*r = Range(tmp)
	return nil
}

func (l *Limits) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys("limits", value, "default", "overrides"); err != nil {
		return err
	}
	type raw Limits
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*l = Limits(tmp)
	return nil
}

func (p *Plate) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys("plates", value, "label", "kg", "lb", "color"); err != nil {
		return err
	}
	type raw Plate
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	if tmp.Kg != 0 && tmp.Lb != 0 {
		return fmt.Errorf("plates: %q sets both kg and lb", tmp.Label)
	}
	*p = Plate(tmp)
	return nil
}

func (o *Output) UnmarshalYAML(value *yaml.Node) error {
	if err := checkKeys("output", value, "json", "pretty", "xlsx"); err != nil {
		return err
	}
	type raw Output
	var tmp raw
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*o = Output(tmp)
	return nil
}
