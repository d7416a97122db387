// Package pushover is a minimal client for the Pushover message API: field
// validation, form encoding, and a single synchronous round-trip per send.
package pushover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Upstream endpoints. Overridable in ClientConfig for tests.
const (
	DefaultEndpoint         = "https://api.pushover.net/1/messages.json"
	DefaultValidateEndpoint = "https://api.pushover.net/1/users/validate.json"
)

const defaultTimeout = 30 * time.Second

// Credentials is the application token / user key pair. Immutable once the
// client is constructed.
type Credentials struct {
	Token string
	User  string
}

// ClientConfig tunes a Client. The zero value uses production endpoints and
// the default timeout.
type ClientConfig struct {
	Endpoint         string
	ValidateEndpoint string
	Timeout          time.Duration

	// HTTPClient overrides the shared pooled client, mainly for tests.
	HTTPClient *http.Client
}

// Client sends messages on behalf of one credential pair.
type Client struct {
	creds            Credentials
	endpoint         string
	validateEndpoint string
	httpClient       *http.Client
}

// Receipt confirms a delivered message.
type Receipt struct {
	Confirmation string
	RequestID    string
}

// NewClient builds a client. Credentials are validated once here; a client
// never exists without a usable pair.
func NewClient(creds Credentials, cfg ClientConfig) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	validateEndpoint := strings.TrimSpace(cfg.ValidateEndpoint)
	if validateEndpoint == "" {
		validateEndpoint = DefaultValidateEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = sharedHTTPClientPool.client(timeout)
	}

	return &Client{
		creds:            creds,
		endpoint:         endpoint,
		validateEndpoint: validateEndpoint,
		httpClient:       httpClient,
	}, nil
}

// Send validates, encodes, and delivers one message. Exactly one POST; no
// retry or backoff.
func (c *Client) Send(ctx context.Context, msg Message) (Receipt, error) {
	if c == nil {
		return Receipt{}, errors.New("pushover: client is nil")
	}
	if err := msg.Validate(); err != nil {
		return Receipt{}, err
	}

	body, err := c.postForm(ctx, c.endpoint, msg.Encode(c.creds))
	if err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{Confirmation: "Notification sent successfully"}
	var parsed struct {
		Request string `json:"request"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		receipt.RequestID = parsed.Request
	}
	return receipt, nil
}

// ValidateUser checks the credential pair against the users/validate
// endpoint without sending a message.
func (c *Client) ValidateUser(ctx context.Context) error {
	if c == nil {
		return errors.New("pushover: client is nil")
	}

	values := url.Values{}
	values.Set("token", c.creds.Token)
	values.Set("user", c.creds.User)

	_, err := c.postForm(ctx, c.validateEndpoint, values)
	return err
}

func (c *Client) postForm(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("pushover: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, upstreamErrorFrom(resp.StatusCode, body)
	}
	return body, nil
}

// upstreamErrorFrom keeps the diagnostic payload verbatim and lifts the
// structured status/errors fields out of it when the body is the expected
// JSON error shape.
func upstreamErrorFrom(statusCode int, body []byte) *UpstreamError {
	upstreamErr := &UpstreamError{
		StatusCode: statusCode,
		Body:       string(body),
	}
	var parsed struct {
		Status int      `json:"status"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		upstreamErr.Status = parsed.Status
		upstreamErr.Messages = parsed.Errors
	}
	return upstreamErr
}
