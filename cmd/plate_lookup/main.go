package main

import (
	"context"
	"os"

	"github.com/aurceive/plate_combos/internal/app"
)

func main() {
	os.Exit(app.RunLookup(context.Background(), app.Options{Args: os.Args[1:]}))
}
