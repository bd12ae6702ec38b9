// Package main is the entry point for the convcom CLI application.
// convcom turns the staged changes of a git repository into a
// conventional commit message using a hosted language model.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/convcom/convcom/internal/cmd"
	apperrors "github.com/convcom/convcom/internal/pkg/errors"
	"github.com/convcom/convcom/internal/pkg/ui"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	rootCmd := cmd.NewRootCmd(version, commit, date)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		ui.NewManager(os.Stderr, false).ShowError(err, apperrors.IsVerbose())
		os.Exit(apperrors.GetExitCode(err))
	}
}
