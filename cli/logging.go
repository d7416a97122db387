package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// newLogger builds the process logger. It always writes to stderr: when
// serving MCP, stdout belongs to the protocol stream.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
