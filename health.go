package pushovermcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AshikNesin/pushover-mcp/pushover"
)

// HealthChecker verifies the configured credentials against the upstream
// user validation endpoint without sending a message.
type HealthChecker struct {
	client *pushover.Client
}

// NewHealthChecker creates a checker for the given client.
func NewHealthChecker(client *pushover.Client) (*HealthChecker, error) {
	if client == nil {
		return nil, errors.New("pushovermcp: health checker client is nil")
	}
	return &HealthChecker{client: client}, nil
}

// Check performs one credential verification round-trip.
func (c *HealthChecker) Check(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("pushovermcp: health checker client is nil")
	}
	return c.client.ValidateUser(ctx)
}

// HealthEvent reports one scheduled check outcome.
type HealthEvent struct {
	At       time.Time
	Duration time.Duration
	Err      error
}

// HealthSchedulerConfig controls background credential checking.
type HealthSchedulerConfig struct {
	Checker *HealthChecker

	// Schedule is a five-field UTC cron expression.
	Schedule string

	Now      func() time.Time
	OnEvent  func(event HealthEvent)
	Observer *Observer
	Logger   *slog.Logger
}

// HealthScheduler runs credential checks on a cron schedule.
type HealthScheduler struct {
	checker  *HealthChecker
	schedule cron.Schedule
	now      func() time.Time
	onEvent  func(event HealthEvent)
	observer *Observer
	logger   *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var standardCronParser = cron.NewParser(
	cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow,
)

// ParseCronSchedule parses a five-field UTC-only cron expression.
func ParseCronSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, fmt.Errorf("cron expression is required")
	}

	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, fmt.Errorf("cron expression must be UTC-only (timezone prefixes are not allowed)")
	}

	schedule, err := standardCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return schedule, nil
}

// NewHealthScheduler creates a scheduler from a cron expression.
func NewHealthScheduler(cfg HealthSchedulerConfig) (*HealthScheduler, error) {
	if cfg.Checker == nil {
		return nil, errors.New("pushovermcp: health scheduler checker is nil")
	}
	schedule, err := ParseCronSchedule(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("pushovermcp: %w", err)
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.OnEvent == nil {
		cfg.OnEvent = func(HealthEvent) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &HealthScheduler{
		checker:  cfg.Checker,
		schedule: schedule,
		now:      cfg.Now,
		onEvent:  cfg.OnEvent,
		observer: cfg.Observer,
		logger:   cfg.Logger,
	}, nil
}

// Start begins scheduler execution. Starting a running scheduler is a no-op.
func (s *HealthScheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("pushovermcp: health scheduler is nil")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for {
			next := s.schedule.Next(s.now())
			timer := time.NewTimer(next.Sub(s.now()))
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce(loopCtx)
			}
		}
	}()

	return nil
}

// Stop terminates scheduler execution and waits for the loop to exit.
func (s *HealthScheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one credential check and reports it.
func (s *HealthScheduler) RunOnce(ctx context.Context) {
	if s == nil || s.checker == nil {
		return
	}

	start := s.now()
	err := s.checker.Check(ctx)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveHealth(HealthObservation{
			DurationMS: elapsed.Milliseconds(),
			Healthy:    err == nil,
			ErrorCode:  invocationErrorCode(err),
		})
	}
	if err != nil {
		s.logger.Warn("credential health check failed", "error", err)
	} else {
		s.logger.Debug("credential health check ok", "duration", elapsed)
	}

	s.onEvent(HealthEvent{At: start, Duration: elapsed, Err: err})
}
