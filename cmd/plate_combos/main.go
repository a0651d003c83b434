package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurceive/plate_combos/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.RunWithArgs(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
