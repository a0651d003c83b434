package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/aurceive/plate_combos/internal/combos"
	"github.com/aurceive/plate_combos/internal/config"
	"github.com/aurceive/plate_combos/internal/merge"
	"github.com/aurceive/plate_combos/internal/output"
	"github.com/aurceive/plate_combos/internal/rank"
)

// Options carries the process environment into a run.
type Options struct {
	Args   []string
	Dir    string // where the config file search starts; cwd when empty
	Stdout io.Writer
	Stderr io.Writer
}

func (o Options) withDefaults() (Options, error) {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return o, err
		}
		o.Dir = cwd
	}
	return o, nil
}

// RunWithArgs generates the combo table and returns the desired process exit
// code.
func RunWithArgs(ctx context.Context, args []string) int {
	return RunWithOptions(ctx, Options{Args: args})
}

// RunWithOptions generates the combo table and returns the desired process
// exit code.
func RunWithOptions(ctx context.Context, opts Options) int {
	opts, err := opts.withDefaults()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return codeFailure
	}
	return report(opts.Stderr, run(ctx, opts))
}

func report(stderr io.Writer, err error) int {
	if err == nil {
		return codeOK
	}
	if ee, ok := asExitError(err); ok {
		if ee.Err != nil && ee.Code != codeOK {
			fmt.Fprintln(stderr, ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintln(stderr, err)
	return codeFailure
}

func run(ctx context.Context, opts Options) error {
	totalStart := time.Now()

	cfg, err := config.Load(FindConfig(opts.Dir), opts.Args)
	if err != nil {
		return configError(err)
	}
	log, err := NewLogger(cfg.LogLevel, opts.Stderr)
	if err != nil {
		return configError(err)
	}
	defer func() { _ = log.Sync() }()
	if cfg.Path != "" {
		log.Debug("config loaded", zap.String("path", cfg.Path))
	}

	cat, err := cfg.Catalog()
	if err != nil {
		return configError(fmt.Errorf("plates: %w", err))
	}
	ranker, err := rank.NewRanker(cat, cfg.Policy())
	if err != nil {
		return configError(err)
	}

	patterns := merge.Build(cat, cfg.MergeTolerance)
	log.Info("catalog ready",
		zap.Int("plates", cat.Len()),
		zap.Int("merge_patterns", patterns.Len()),
		zap.Float64("bar_kg", cfg.Bar.Kg()),
		zap.Float64("min_kg", cfg.MinKg),
		zap.Float64("max_kg", cfg.MaxKg))

	en, err := combos.NewEnumerator(cat, patterns, cfg.Bounds(),
		combos.WithWorkers(cfg.Workers),
		combos.WithLogger(log))
	if err != nil {
		return configError(err)
	}

	enumStart := time.Now()
	entries, err := en.Enumerate(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return ExitWithError(codeFailure, fmt.Errorf("interrupted: %w", err))
		}
		return fmt.Errorf("enumerate: %w", err)
	}
	enumElapsed := time.Since(enumStart)

	groups := ranker.Rank(entries)
	doc := output.BuildDocument(cat, cfg.Bar, cfg.MinKg, cfg.MaxKg, groups)

	if err := output.WriteJSON(cfg.OutPath, doc, cfg.Pretty); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutPath, err)
	}
	if cfg.XLSXPath != "" {
		if err := output.ExportXLSX(cfg.XLSXPath, doc); err != nil {
			return fmt.Errorf("export xlsx: %w", err)
		}
		log.Info("exported workbook", zap.String("path", cfg.XLSXPath))
	}
	fmt.Fprintln(opts.Stdout, "Saved:", cfg.OutPath)

	log.Info("finished",
		zap.Int("totals", len(groups)),
		zap.Int("entries", len(entries)),
		zap.Duration("enumerate", enumElapsed.Round(time.Millisecond)),
		zap.Duration("total", time.Since(totalStart).Round(time.Millisecond)))
	return nil
}
