package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AshikNesin/pushover-mcp/pushover"
)

// NewValidateCmd creates the "validate" subcommand.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Verify credentials against the Pushover API",
		RunE:  runValidate,
	}

	addCredentialFlags(cmd)
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd)
	slog.SetDefault(logger)

	file, err := loadConfigForCmd(cmd)
	if err != nil {
		return err
	}

	creds := resolveCredentials(cmd, file)
	if credErr := creds.Validate(); credErr != nil {
		return exitError(exitFailure, "credentials required: set --token/--user, the config file, or $%s/$%s (%v)", envToken, envUser, credErr)
	}

	client, err := pushover.NewClient(creds, pushover.ClientConfig{})
	if err != nil {
		return exitError(exitFailure, "creating upstream client: %v", err)
	}
	if err := client.ValidateUser(cmd.Context()); err != nil {
		return exitError(exitFailure, "credential validation failed: %v", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Credentials are valid.")
	return nil
}
