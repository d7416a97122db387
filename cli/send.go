package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AshikNesin/pushover-mcp/config"
	"github.com/AshikNesin/pushover-mcp/pushover"
)

// NewSendCmd creates the "send" subcommand for one-shot deliveries without
// an MCP host.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one notification and exit",
		Args:  cobra.ExactArgs(1),
		RunE:  runSend,
	}

	addCredentialFlags(cmd)
	cmd.Flags().String("title", "", "Notification title")
	cmd.Flags().Float64("priority", 0, "Priority from -2 (lowest) to 2 (emergency)")
	cmd.Flags().String("sound", "", "Notification sound name")
	cmd.Flags().String("url", "", "Supplementary absolute URL")
	cmd.Flags().String("url-title", "", "Title shown for the supplementary URL")
	cmd.Flags().String("device", "", "Target device name")
	cmd.Flags().Int("retry", 0, "Emergency redelivery interval in seconds")
	cmd.Flags().Int("expire", 0, "Emergency redelivery window in seconds")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
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

	msg := messageFromFlags(cmd, args[0], file)
	client, err := pushover.NewClient(creds, pushover.ClientConfig{})
	if err != nil {
		return exitError(exitFailure, "creating upstream client: %v", err)
	}

	receipt, err := client.Send(cmd.Context(), msg)
	if err != nil {
		return exitError(exitFailure, "%v", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), receipt.Confirmation)
	return nil
}

func messageFromFlags(cmd *cobra.Command, text string, file config.File) pushover.Message {
	msg := pushover.Message{Message: text}
	msg.Title, _ = cmd.Flags().GetString("title")
	msg.Sound, _ = cmd.Flags().GetString("sound")
	msg.URL, _ = cmd.Flags().GetString("url")
	msg.URLTitle, _ = cmd.Flags().GetString("url-title")
	msg.Device, _ = cmd.Flags().GetString("device")

	// Only flags the caller actually set become present fields; priority 0
	// is therefore distinguishable from "no priority".
	if cmd.Flags().Changed("priority") {
		priority, _ := cmd.Flags().GetFloat64("priority")
		msg.Priority = &priority
	}
	if cmd.Flags().Changed("retry") {
		retry, _ := cmd.Flags().GetInt("retry")
		msg.Retry = &retry
	}
	if cmd.Flags().Changed("expire") {
		expire, _ := cmd.Flags().GetInt("expire")
		msg.Expire = &expire
	}

	if msg.Title == "" {
		msg.Title = file.Defaults.Title
	}
	if msg.Sound == "" {
		msg.Sound = file.Defaults.Sound
	}
	if msg.Device == "" {
		msg.Device = file.Defaults.Device
	}
	return msg
}
