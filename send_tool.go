package pushovermcp

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/AshikNesin/pushover-mcp/mcp"
	"github.com/AshikNesin/pushover-mcp/pushover"
)

// ToolNameSend is the capability name registered with the host.
const ToolNameSend = "send"

// ErrUninitialized is returned when the tool is invoked before the adapter
// was constructed with credentials.
var ErrUninitialized = errors.New("pushovermcp: adapter is not initialized with credentials")

// ErrorCodeUninitialized marks pre-initialization invocations in
// observability attributes.
const ErrorCodeUninitialized = "UNINITIALIZED"

// errorCodeInvocationFailed is the generic fallback for failures without a
// more specific code.
const errorCodeInvocationFailed = "INVOCATION_FAILED"

// SendTool describes the "send" capability: its parameter shape mirrors the
// notification request fields accepted upstream.
func SendTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolNameSend,
		Description: "Send a push notification via Pushover",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "The notification text (required)",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "Notification title",
				},
				"priority": map[string]any{
					"type":        "number",
					"description": "Priority from -2 (lowest) to 2 (emergency)",
					"minimum":     pushover.PriorityLowest,
					"maximum":     pushover.PriorityEmergency,
				},
				"sound": map[string]any{
					"type":        "string",
					"description": "Notification sound name",
				},
				"url": map[string]any{
					"type":        "string",
					"description": "Supplementary absolute URL",
				},
				"url_title": map[string]any{
					"type":        "string",
					"description": "Title shown for the supplementary URL",
				},
				"device": map[string]any{
					"type":        "string",
					"description": "Target device name",
				},
				"retry": map[string]any{
					"type":        "integer",
					"description": "Emergency redelivery interval in seconds (>= 30)",
				},
				"expire": map[string]any{
					"type":        "integer",
					"description": "Emergency redelivery window in seconds (<= 10800)",
				},
			},
			"required": []string{"message"},
		},
	}
}

// Defaults fill message fields the caller omitted.
type Defaults struct {
	Title  string
	Sound  string
	Device string
}

// AdapterOptions configures an Adapter beyond its credentials.
type AdapterOptions struct {
	// Client overrides the upstream client, mainly for tests.
	Client       *pushover.Client
	ClientConfig pushover.ClientConfig
	Defaults     Defaults
	Observer     *Observer
	Logger       *slog.Logger

	// NewRequestID overrides request ID generation, mainly for tests.
	NewRequestID func() string
}

// Adapter owns the credentials and the validate -> translate -> send
// pipeline. Credentials are set exactly once at construction; there is no
// re-initialization.
type Adapter struct {
	client       *pushover.Client
	defaults     Defaults
	observer     *Observer
	logger       *slog.Logger
	newRequestID func() string
	ready        bool
}

// NewAdapter constructs a ready adapter. Empty credentials fail here, before
// the adapter can ever be invoked.
func NewAdapter(creds pushover.Credentials, opts AdapterOptions) (*Adapter, error) {
	client := opts.Client
	if client == nil {
		built, err := pushover.NewClient(creds, opts.ClientConfig)
		if err != nil {
			return nil, err
		}
		client = built
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	newRequestID := opts.NewRequestID
	if newRequestID == nil {
		newRequestID = uuid.NewString
	}

	return &Adapter{
		client:       client,
		defaults:     opts.Defaults,
		observer:     opts.Observer,
		logger:       logger,
		newRequestID: newRequestID,
		ready:        true,
	}, nil
}

// Definition returns the tool registration for an MCP server.
func (a *Adapter) Definition() mcp.ToolDef {
	return mcp.ToolDef{
		Tool:    SendTool(),
		Handler: a.Invoke,
	}
}

// Invoke runs one send: validate, translate, deliver, short-circuiting on
// the first failure. The returned error carries the field or upstream
// diagnostic for the host.
func (a *Adapter) Invoke(ctx context.Context, args map[string]any) (mcp.ToolsCallResult, error) {
	if a == nil || !a.ready || a.client == nil {
		return mcp.ToolsCallResult{}, ErrUninitialized
	}

	requestID := a.newRequestID()
	start := time.Now()

	msg, err := a.messageFromArgs(args)
	if err == nil {
		var receipt pushover.Receipt
		receipt, err = a.client.Send(ctx, msg)
		if err == nil {
			a.observe(SendObservation{
				RequestID:  requestID,
				DurationMS: time.Since(start).Milliseconds(),
				Success:    true,
			})
			a.logger.Info("notification sent", "request_id", requestID, "upstream_request", receipt.RequestID)
			return mcp.ToolsCallResult{Content: mcp.TextContent(receipt.Confirmation)}, nil
		}
	}

	a.observe(SendObservation{
		RequestID:  requestID,
		DurationMS: time.Since(start).Milliseconds(),
		Success:    false,
		ErrorCode:  invocationErrorCode(err),
	})
	a.logger.Warn("notification failed", "request_id", requestID, "error", err)
	return mcp.ToolsCallResult{}, err
}

func (a *Adapter) observe(observation SendObservation) {
	if a.observer == nil {
		return
	}
	a.observer.ObserveSend(observation)
}

// messageFromArgs converts the host's raw argument map into a typed message,
// applying configured defaults to omitted fields. Type mismatches are
// validation failures, not protocol errors.
func (a *Adapter) messageFromArgs(args map[string]any) (pushover.Message, error) {
	var msg pushover.Message

	text, err := stringArg(args, "message")
	if err != nil {
		return pushover.Message{}, err
	}
	msg.Message = text

	if msg.Title, err = stringArg(args, "title"); err != nil {
		return pushover.Message{}, err
	}
	if msg.Sound, err = stringArg(args, "sound"); err != nil {
		return pushover.Message{}, err
	}
	if msg.URL, err = stringArg(args, "url"); err != nil {
		return pushover.Message{}, err
	}
	if msg.URLTitle, err = stringArg(args, "url_title"); err != nil {
		return pushover.Message{}, err
	}
	if msg.Device, err = stringArg(args, "device"); err != nil {
		return pushover.Message{}, err
	}
	if msg.Priority, err = numberArg(args, "priority"); err != nil {
		return pushover.Message{}, err
	}
	if msg.Retry, err = integerArg(args, "retry"); err != nil {
		return pushover.Message{}, err
	}
	if msg.Expire, err = integerArg(args, "expire"); err != nil {
		return pushover.Message{}, err
	}

	if msg.Title == "" {
		msg.Title = a.defaults.Title
	}
	if msg.Sound == "" {
		msg.Sound = a.defaults.Sound
	}
	if msg.Device == "" {
		msg.Device = a.defaults.Device
	}
	return msg, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return "", nil
	}
	value, ok := raw.(string)
	if !ok {
		return "", &pushover.ValidationError{Field: key, Constraint: "must be a string"}
	}
	return value, nil
}

func numberArg(args map[string]any, key string) (*float64, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok {
		return nil, &pushover.ValidationError{Field: key, Constraint: "must be a number"}
	}
	return &value, nil
}

func integerArg(args map[string]any, key string) (*int, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return nil, nil
	}
	value, ok := toFloat(raw)
	if !ok || value != math.Trunc(value) {
		return nil, &pushover.ValidationError{Field: key, Constraint: "must be an integer"}
	}
	truncated := int(value)
	return &truncated, nil
}

// toFloat accepts the numeric shapes JSON decoding and direct Go callers
// produce.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func invocationErrorCode(err error) string {
	if errors.Is(err, ErrUninitialized) {
		return ErrorCodeUninitialized
	}
	if code := pushover.ErrorCode(err); code != "" {
		return code
	}
	if err != nil {
		return errorCodeInvocationFailed
	}
	return ""
}
