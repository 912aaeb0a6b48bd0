// Package main is the questionit command line.
package main

import (
	"context"
	"log/slog"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCommand(version).Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
