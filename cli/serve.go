package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	pushovermcp "github.com/AshikNesin/pushover-mcp"
	"github.com/AshikNesin/pushover-mcp/mcp"
	"github.com/AshikNesin/pushover-mcp/pushover"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the send tool over stdio MCP",
		Long:  "Serve registers the \"send\" notification tool with an MCP host over stdin/stdout and runs until the host disconnects or the process receives a termination signal.",
		RunE:  runServe,
	}

	addCredentialFlags(cmd)
	cmd.Flags().Duration("timeout", 30*time.Second, "Upstream HTTP timeout")
	cmd.Flags().String("health-schedule", "", "UTC cron expression for periodic credential verification (empty disables)")
	cmd.Flags().String("otlp-endpoint", "", "OTLP/HTTP endpoint for trace export (empty disables export)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	otlpEndpoint, _ := cmd.Flags().GetString("otlp-endpoint")
	if otlpEndpoint == "" {
		otlpEndpoint = strings.TrimSpace(file.OTLPEndpoint)
	}
	shutdownTelemetry, err := setupTelemetry(cmd.Context(), otlpEndpoint)
	if err != nil {
		return exitError(exitFailure, "initializing telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()

	observer, err := pushovermcp.NewObserver(
		otelapi.GetMeterProvider().Meter("pushover-mcp"),
		otelapi.GetTracerProvider().Tracer("pushover-mcp"),
	)
	if err != nil {
		return exitError(exitFailure, "initializing observability: %v", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	client, err := pushover.NewClient(creds, pushover.ClientConfig{Timeout: timeout})
	if err != nil {
		return exitError(exitFailure, "creating upstream client: %v", err)
	}

	adapter, err := pushovermcp.NewAdapter(creds, pushovermcp.AdapterOptions{
		Client: client,
		Defaults: pushovermcp.Defaults{
			Title:  file.Defaults.Title,
			Sound:  file.Defaults.Sound,
			Device: file.Defaults.Device,
		},
		Observer: observer,
		Logger:   logger,
	})
	if err != nil {
		return exitError(exitFailure, "creating tool adapter: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthSchedule, _ := cmd.Flags().GetString("health-schedule")
	if healthSchedule == "" {
		healthSchedule = strings.TrimSpace(file.HealthSchedule)
	}
	if healthSchedule != "" {
		checker, checkerErr := pushovermcp.NewHealthChecker(client)
		if checkerErr != nil {
			return exitError(exitFailure, "creating health checker: %v", checkerErr)
		}
		scheduler, schedErr := pushovermcp.NewHealthScheduler(pushovermcp.HealthSchedulerConfig{
			Checker:  checker,
			Schedule: healthSchedule,
			Observer: observer,
			Logger:   logger,
		})
		if schedErr != nil {
			return exitError(exitFailure, "creating health scheduler: %v", schedErr)
		}
		if startErr := scheduler.Start(ctx); startErr != nil {
			return exitError(exitFailure, "starting health scheduler: %v", startErr)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = scheduler.Stop(stopCtx)
		}()
	}

	transport := mcp.NewStdioTransport()
	server, err := mcp.NewServer(transport, mcp.Options{
		ServerInfo: mcp.ServerInfo{Name: "pushover-mcp", Version: cmd.Root().Version},
		Logger:     logger,
	})
	if err != nil {
		return exitError(exitFailure, "creating MCP server: %v", err)
	}
	if err := server.RegisterTool(adapter.Definition()); err != nil {
		return exitError(exitFailure, "registering send tool: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down on signal")
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = transport.Close(closeCtx)
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return exitError(exitFailure, "server error: %v", err)
		}
		return nil
	}
}
