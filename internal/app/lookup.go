package app

import (
	"context"
	"fmt"

	"github.com/aurceive/plate_combos/internal/config"
	"github.com/aurceive/plate_combos/internal/lookup"
	"github.com/aurceive/plate_combos/internal/output"
)

// RunLookup answers a plate_lookup query and returns the desired process exit
// code.
func RunLookup(ctx context.Context, opts Options) int {
	opts, err := opts.withDefaults()
	if err != nil {
		return report(opts.Stderr, err)
	}
	return report(opts.Stderr, runLookup(ctx, opts))
}

func runLookup(ctx context.Context, opts Options) error {
	l, err := config.LoadLookup(opts.Args)
	if err != nil {
		return configError(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := output.Read(l.InPath)
	if err != nil {
		return fmt.Errorf("read table: %w", err)
	}
	res, err := lookup.Find(doc, l.Query)
	if err != nil {
		return configError(err)
	}
	return lookup.Print(opts.Stdout, doc, l.Query, res)
}
