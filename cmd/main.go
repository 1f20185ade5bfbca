package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/reminis/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "reminis",
		Usage:    "Capture photos with where, when and what the weather was like",
		Version:  "0.1.0",
		Flags:    runner.globalFlags(),
		Before:   runner.configure,
		After:    runner.shutdown,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
