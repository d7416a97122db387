package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Transport carries JSON-RPC messages between the server and its host.
type Transport interface {
	Receive(ctx context.Context) (Message, error)
	Send(ctx context.Context, message Message) error
	Close(ctx context.Context) error
}

// StreamTransport frames newline-delimited JSON over a reader/writer pair.
// The stdio transport and the in-memory test transport are both instances
// of it.
type StreamTransport struct {
	mu     sync.Mutex
	writer io.Writer
	closer io.Closer
	recvCh chan Message
	errCh  chan error
	closed bool
}

// NewStdioTransport serves the process's own stdin/stdout. Stdout is the
// protocol channel; nothing else may write to it while serving.
func NewStdioTransport() *StreamTransport {
	return NewStreamTransport(os.Stdin, os.Stdout)
}

// NewStreamTransport starts a read loop over the given stream pair. When the
// writer is also an io.Closer it is closed on Close.
func NewStreamTransport(reader io.Reader, writer io.Writer) *StreamTransport {
	t := &StreamTransport{
		writer: writer,
		recvCh: make(chan Message, 16),
		errCh:  make(chan error, 1),
	}
	if closer, ok := writer.(io.Closer); ok {
		t.closer = closer
	}
	go t.readLoop(reader)
	return t
}

func (t *StreamTransport) readLoop(reader io.Reader) {
	decoder := json.NewDecoder(bufio.NewReader(reader))
	for {
		var message Message
		if err := decoder.Decode(&message); err != nil {
			if errors.Is(err, io.EOF) {
				t.sendErr(io.EOF)
				return
			}
			t.sendErr(fmt.Errorf("mcp: decode message: %w", err))
			return
		}
		t.recvCh <- message
	}
}

// Receive returns the next inbound message. It reports io.EOF when the host
// closed its end of the stream.
func (t *StreamTransport) Receive(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case err := <-t.errCh:
		return Message{}, err
	case message := <-t.recvCh:
		return message, nil
	}
}

// Send writes one newline-terminated JSON message.
func (t *StreamTransport) Send(ctx context.Context, message Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New("mcp: transport is closed")
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("mcp: encode message: %w", err)
	}
	data = append(data, '\n')

	if _, err := t.writer.Write(data); err != nil {
		return fmt.Errorf("mcp: write message: %w", err)
	}
	return nil
}

// Close marks the transport closed and closes the write side when possible.
func (t *StreamTransport) Close(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *StreamTransport) sendErr(err error) {
	select {
	case t.errCh <- err:
	default:
	}
}
