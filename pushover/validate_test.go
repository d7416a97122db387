package pushover

import (
	"errors"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestMessageValidateRequiresMessage(t *testing.T) {
	err := Message{}.Validate()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}
	if validationErr.Field != "message" {
		t.Fatalf("Field = %q, want message", validationErr.Field)
	}
}

func TestMessageValidatePriorityRange(t *testing.T) {
	cases := []struct {
		name     string
		priority float64
		wantErr  bool
	}{
		{name: "lowest boundary", priority: -2, wantErr: false},
		{name: "zero", priority: 0, wantErr: false},
		{name: "emergency boundary", priority: 2, wantErr: false},
		{name: "fractional in range", priority: 1.5, wantErr: false},
		{name: "below range", priority: -3, wantErr: true},
		{name: "above range", priority: 3, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{Message: "hi", Priority: floatPtr(tc.priority)}
			err := msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate() error = nil, want non-nil for priority %v", tc.priority)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v, want nil for priority %v", err, tc.priority)
			}
			if tc.wantErr {
				var validationErr *ValidationError
				if !errors.As(err, &validationErr) || validationErr.Field != "priority" {
					t.Fatalf("error = %v, want ValidationError on priority", err)
				}
			}
		})
	}
}

func TestMessageValidateURL(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "absolute https", url: "https://example.com", wantErr: false},
		{name: "absolute with path", url: "https://example.com/a/b?c=1", wantErr: false},
		{name: "no scheme", url: "not a url", wantErr: true},
		{name: "bare host", url: "example.com", wantErr: true},
		{name: "scheme only", url: "https://", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := Message{Message: "hi", URL: tc.url}
			err := msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate() error = nil, want non-nil for url %q", tc.url)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate() error = %v, want nil for url %q", err, tc.url)
			}
		})
	}
}

func TestMessageValidateEmergencyParams(t *testing.T) {
	msg := Message{Message: "hi", Retry: intPtr(10)}
	if err := msg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want retry constraint failure")
	}

	msg = Message{Message: "hi", Expire: intPtr(20000)}
	if err := msg.Validate(); err == nil {
		t.Fatal("Validate() error = nil, want expire constraint failure")
	}

	msg = Message{Message: "hi", Priority: floatPtr(2), Retry: intPtr(30), Expire: intPtr(3600)}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestCredentialsValidate(t *testing.T) {
	if err := (Credentials{Token: "T", User: "U"}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if err := (Credentials{User: "U"}).Validate(); err == nil {
		t.Fatal("Validate() error = nil, want missing token failure")
	}
	if err := (Credentials{Token: "T"}).Validate(); err == nil {
		t.Fatal("Validate() error = nil, want missing user failure")
	}
}
