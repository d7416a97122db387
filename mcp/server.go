// Package mcp implements a minimal Model Context Protocol server: a JSON-RPC
// 2.0 dispatch loop over a stream transport exposing registered tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// ToolHandler executes one tool invocation. A returned error becomes an
// isError tool result carrying the error text; protocol-level failures are
// produced by the server itself.
type ToolHandler func(ctx context.Context, args map[string]any) (ToolsCallResult, error)

// ToolDef pairs a tool description with its handler.
type ToolDef struct {
	Tool    Tool
	Handler ToolHandler
}

// Options configures server identity and logging.
type Options struct {
	ServerInfo ServerInfo
	Logger     *slog.Logger
}

// Server dispatches MCP requests from one transport to registered tools.
// Registration happens before Serve; the tool set is read-only afterwards.
type Server struct {
	transport Transport
	info      ServerInfo
	logger    *slog.Logger

	mu    sync.Mutex
	tools map[string]ToolDef
	order []string
}

// NewServer creates a server for the given transport.
func NewServer(transport Transport, options Options) (*Server, error) {
	if transport == nil {
		return nil, errors.New("mcp: transport is nil")
	}
	info := options.ServerInfo
	if info.Name == "" {
		info.Name = "mcp-server"
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		transport: transport,
		info:      info,
		logger:    logger,
		tools:     make(map[string]ToolDef),
	}, nil
}

// RegisterTool adds a tool. Names must be unique and non-empty.
func (s *Server) RegisterTool(def ToolDef) error {
	name := strings.TrimSpace(def.Tool.Name)
	if name == "" {
		return errors.New("mcp: tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("mcp: tool %q has no handler", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tools[name]; exists {
		return fmt.Errorf("mcp: tool %q is already registered", name)
	}
	s.tools[name] = def
	s.order = append(s.order, name)
	return nil
}

// Serve reads and dispatches messages until the host closes the stream or the
// context is cancelled. A closed stream is a clean shutdown, not an error.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil || s.transport == nil {
		return errors.New("mcp: server transport is nil")
	}

	s.logger.Info("mcp server ready", "server", s.info.Name, "version", s.info.Version)

	for {
		message, err := s.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("mcp host closed the stream")
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return err
		}
		s.dispatch(ctx, message)
	}
}

func (s *Server) dispatch(ctx context.Context, message Message) {
	switch {
	case message.IsNotification():
		// notifications/initialized and close need no action or reply.
		s.logger.Debug("notification received", "method", message.Method)
	case message.IsRequest():
		s.handleRequest(ctx, message)
	default:
		// Responses are not expected on a server transport; drop them.
		s.logger.Debug("ignoring non-request message")
	}
}

func (s *Server) handleRequest(ctx context.Context, message Message) {
	var result any
	var rpcErr *RPCError

	switch message.Method {
	case "initialize":
		result, rpcErr = s.handleInitialize(message.Params)
	case "ping":
		result = map[string]any{}
	case "tools/list":
		result = s.handleToolsList()
	case "tools/call":
		result, rpcErr = s.handleToolsCall(ctx, message.Params)
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %q not found", message.Method)}
	}

	s.reply(ctx, message.ID, result, rpcErr)
}

func (s *Server) handleInitialize(params json.RawMessage) (InitializeResult, *RPCError) {
	var parsed InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &parsed); err != nil {
			return InitializeResult{}, &RPCError{Code: CodeInvalidParams, Message: "invalid initialize params"}
		}
	}
	s.logger.Info("initialize", "client", parsed.ClientInfo.Name, "protocol", parsed.ProtocolVersion)

	return InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: map[string]any{
			"tools": map[string]any{},
		},
		ServerInfo: s.info,
	}, nil
}

func (s *Server) handleToolsList() ToolsListResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	tools := make([]Tool, 0, len(s.order))
	for _, name := range s.order {
		tools = append(tools, s.tools[name].Tool)
	}
	return ToolsListResult{Tools: tools}
}

func (s *Server) handleToolsCall(ctx context.Context, params json.RawMessage) (ToolsCallResult, *RPCError) {
	var parsed ToolsCallParams
	if err := json.Unmarshal(params, &parsed); err != nil {
		return ToolsCallResult{}, &RPCError{Code: CodeInvalidParams, Message: "invalid tools/call params"}
	}

	s.mu.Lock()
	def, ok := s.tools[parsed.Name]
	s.mu.Unlock()
	if !ok {
		return ToolsCallResult{}, &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown tool %q", parsed.Name)}
	}

	result, err := def.Handler(ctx, parsed.Arguments)
	if err != nil {
		s.logger.Warn("tool invocation failed", "tool", parsed.Name, "error", err)
		return ToolsCallResult{
			Content: TextContent(err.Error()),
			IsError: true,
		}, nil
	}
	return result, nil
}

func (s *Server) reply(ctx context.Context, id json.RawMessage, result any, rpcErr *RPCError) {
	response := Message{JSONRPC: jsonRPCVersion, ID: id}
	if rpcErr != nil {
		response.Error = rpcErr
	} else {
		data, err := json.Marshal(result)
		if err != nil {
			response.Error = &RPCError{Code: CodeInternalError, Message: "encode result"}
		} else {
			response.Result = data
		}
	}

	if err := s.transport.Send(ctx, response); err != nil {
		s.logger.Error("send response failed", "error", err)
	}
}
