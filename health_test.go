package pushovermcp

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/AshikNesin/pushover-mcp/pushover"
)

func newHealthClient(t *testing.T, rt roundTripFunc) *pushover.Client {
	t.Helper()
	client, err := pushover.NewClient(pushover.Credentials{Token: "T", User: "U"}, pushover.ClientConfig{
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestHealthCheckerCheck(t *testing.T) {
	client := newHealthClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(r.URL.Path, "/users/validate.json") {
			t.Fatalf("path = %s, want users/validate.json", r.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":1}`)),
			Header:     make(http.Header),
		}, nil
	})

	checker, err := NewHealthChecker(client)
	if err != nil {
		t.Fatalf("NewHealthChecker() error = %v", err)
	}
	if err := checker.Check(context.Background()); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestParseCronSchedule(t *testing.T) {
	cases := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "every five minutes", expr: "*/5 * * * *", wantErr: false},
		{name: "hourly", expr: "0 * * * *", wantErr: false},
		{name: "empty", expr: "", wantErr: true},
		{name: "timezone prefix", expr: "CRON_TZ=UTC * * * * *", wantErr: true},
		{name: "too few fields", expr: "* * *", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCronSchedule(tc.expr)
			if tc.wantErr && err == nil {
				t.Fatalf("ParseCronSchedule(%q) error = nil, want non-nil", tc.expr)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("ParseCronSchedule(%q) error = %v, want nil", tc.expr, err)
			}
		})
	}
}

func TestHealthSchedulerRunOnceEmitsEvent(t *testing.T) {
	client := newHealthClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader(`{"status":0,"errors":["application token is invalid"]}`)),
			Header:     make(http.Header),
		}, nil
	})
	checker, err := NewHealthChecker(client)
	if err != nil {
		t.Fatalf("NewHealthChecker() error = %v", err)
	}

	var events []HealthEvent
	scheduler, err := NewHealthScheduler(HealthSchedulerConfig{
		Checker:  checker,
		Schedule: "*/5 * * * *",
		Logger:   testLogger(),
		OnEvent: func(event HealthEvent) {
			events = append(events, event)
		},
	})
	if err != nil {
		t.Fatalf("NewHealthScheduler() error = %v", err)
	}

	scheduler.RunOnce(context.Background())
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Err == nil {
		t.Fatal("event Err = nil, want upstream failure")
	}
}

func TestHealthSchedulerStartStop(t *testing.T) {
	client := newHealthClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":1}`)),
			Header:     make(http.Header),
		}, nil
	})
	checker, err := NewHealthChecker(client)
	if err != nil {
		t.Fatalf("NewHealthChecker() error = %v", err)
	}

	scheduler, err := NewHealthScheduler(HealthSchedulerConfig{
		Checker:  checker,
		Schedule: "0 * * * *",
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewHealthScheduler() error = %v", err)
	}

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	// Second start is a no-op, not an error.
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() twice error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := scheduler.Stop(ctx); err != nil {
		t.Fatalf("Stop() twice error = %v", err)
	}
}

func TestNewHealthSchedulerRejectsBadConfig(t *testing.T) {
	if _, err := NewHealthScheduler(HealthSchedulerConfig{Schedule: "*/5 * * * *"}); err == nil {
		t.Fatal("NewHealthScheduler() without checker error = nil, want non-nil")
	}

	client := newHealthClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, nil
	})
	checker, err := NewHealthChecker(client)
	if err != nil {
		t.Fatalf("NewHealthChecker() error = %v", err)
	}
	if _, err := NewHealthScheduler(HealthSchedulerConfig{Checker: checker, Schedule: "bogus"}); err == nil {
		t.Fatal("NewHealthScheduler() with bad cron error = nil, want non-nil")
	}
}
