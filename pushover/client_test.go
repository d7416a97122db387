package pushover

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient(Credentials{Token: "T", User: "U"}, ClientConfig{
		HTTPClient: &http.Client{Transport: rt},
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestClientSend(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if got := r.URL.String(); got != DefaultEndpoint {
			t.Fatalf("endpoint = %s, want %s", got, DefaultEndpoint)
		}
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Fatalf("content type = %s, want form encoding", got)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if got := string(body); got != "message=hi&token=T&user=U" {
			t.Fatalf("body = %q, want message=hi&token=T&user=U", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":1,"request":"abc-123"}`)),
			Header:     make(http.Header),
		}, nil
	})

	receipt, err := client.Send(context.Background(), Message{Message: "hi"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if receipt.Confirmation != "Notification sent successfully" {
		t.Fatalf("Confirmation = %q", receipt.Confirmation)
	}
	if receipt.RequestID != "abc-123" {
		t.Fatalf("RequestID = %q, want abc-123", receipt.RequestID)
	}
}

func TestClientSendValidationFailureSkipsNetwork(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("unexpected network call")
	})

	_, err := client.Send(context.Background(), Message{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Send() error = %v, want *ValidationError", err)
	}
	if calls != 0 {
		t.Fatalf("network calls = %d, want 0", calls)
	}
}

func TestClientSendUpstreamErrorKeepsPayloadVerbatim(t *testing.T) {
	upstreamBody := `{"status":0,"errors":["user identifier is invalid"]}`
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Body:       io.NopCloser(strings.NewReader(upstreamBody)),
			Header:     make(http.Header),
		}, nil
	})

	_, err := client.Send(context.Background(), Message{Message: "hi"})
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("Send() error = %v, want *UpstreamError", err)
	}
	if upstreamErr.Body != upstreamBody {
		t.Fatalf("Body = %q, want verbatim %q", upstreamErr.Body, upstreamBody)
	}
	if upstreamErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("StatusCode = %d, want 400", upstreamErr.StatusCode)
	}
	if len(upstreamErr.Messages) != 1 || upstreamErr.Messages[0] != "user identifier is invalid" {
		t.Fatalf("Messages = %v", upstreamErr.Messages)
	}
}

func TestClientSendTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, cause
	})

	_, err := client.Send(context.Background(), Message{Message: "hi"})
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Send() error = %v, want *TransportError", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("error chain does not include cause: %v", err)
	}
}

func TestClientValidateUser(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if got := r.URL.String(); got != DefaultValidateEndpoint {
			t.Fatalf("endpoint = %s, want %s", got, DefaultValidateEndpoint)
		}
		body, _ := io.ReadAll(r.Body)
		if got := string(body); got != "token=T&user=U" {
			t.Fatalf("body = %q, want token=T&user=U", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"status":1}`)),
			Header:     make(http.Header),
		}, nil
	})

	if err := client.ValidateUser(context.Background()); err != nil {
		t.Fatalf("ValidateUser() error = %v", err)
	}
}

func TestNewClientRejectsEmptyCredentials(t *testing.T) {
	_, err := NewClient(Credentials{}, ClientConfig{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("NewClient() error = %v, want *ValidationError", err)
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{err: &ValidationError{Field: "message"}, want: ErrorCodeValidation},
		{err: &UpstreamError{StatusCode: 400}, want: ErrorCodeUpstreamFailure},
		{err: &TransportError{Err: errors.New("x")}, want: ErrorCodeTransportFailure},
		{err: errors.New("other"), want: ""},
		{err: nil, want: ""},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
