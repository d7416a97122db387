package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AshikNesin/pushover-mcp/config"
	"github.com/AshikNesin/pushover-mcp/pushover"
)

// Environment fallbacks used when neither flags nor config supply a value.
const (
	envToken = "PUSHOVER_TOKEN"
	envUser  = "PUSHOVER_USER"
)

// resolveCredentials merges the credential sources in precedence order:
// flags, then config file, then environment.
func resolveCredentials(cmd *cobra.Command, file config.File) pushover.Credentials {
	token, _ := cmd.Flags().GetString("token")
	user, _ := cmd.Flags().GetString("user")

	token = strings.TrimSpace(token)
	user = strings.TrimSpace(user)

	if token == "" {
		token = strings.TrimSpace(file.Token)
	}
	if user == "" {
		user = strings.TrimSpace(file.User)
	}
	if token == "" {
		token = strings.TrimSpace(os.Getenv(envToken))
	}
	if user == "" {
		user = strings.TrimSpace(os.Getenv(envUser))
	}

	return pushover.Credentials{Token: token, User: user}
}

// addCredentialFlags registers the flags shared by every command that talks
// to the upstream API.
func addCredentialFlags(cmd *cobra.Command) {
	cmd.Flags().String("token", "", "Pushover application token (falls back to config, then $"+envToken+")")
	cmd.Flags().String("user", "", "Pushover user key (falls back to config, then $"+envUser+")")
	cmd.Flags().String("config", "", "Path to pushover-mcp.yaml (default: ./pushover-mcp.yaml, then ~/.pushover-mcp/config.yaml)")
}

// loadConfigForCmd loads the discovered or explicit config file.
func loadConfigForCmd(cmd *cobra.Command) (config.File, error) {
	explicitPath, _ := cmd.Flags().GetString("config")
	file, err := config.LoadDiscovered(explicitPath)
	if err != nil {
		return config.File{}, exitError(exitFailure, "loading config: %v", err)
	}
	return file, nil
}
