package providers

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// SSEDone is the sentinel payload OpenAI-family backends send to terminate a
// stream.
const SSEDone = "[DONE]"

// SSEEvent is one Server-Sent Event: an optional event type and the joined
// data payload.
type SSEEvent struct {
	// Type is the value of the "event:" field, empty when the backend sends
	// bare data lines.
	Type string

	// Data is the payload, multi-line data fields joined with newlines.
	Data string
}

// SSEReader reads Server-Sent Events from a streaming response body. Events
// are delimited by blank lines; "id:" and "retry:" fields and comment lines
// are ignored. A data payload of [DONE] terminates the stream as io.EOF.
type SSEReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	closed  bool
}

// NewSSEReader wraps a streaming response body.
func NewSSEReader(body io.ReadCloser) *SSEReader {
	scanner := bufio.NewScanner(body)
	// Completion chunks are small, but tool-call fragments and long deltas
	// can exceed the default 64 KiB token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	return &SSEReader{
		body:    body,
		scanner: scanner,
	}
}

// Next returns the next event. It returns io.EOF when the stream ends or the
// [DONE] sentinel arrives, and the scanner's error on a broken connection.
func (r *SSEReader) Next(ctx context.Context) (*SSEEvent, error) {
	if r.closed {
		return nil, io.EOF
	}

	var eventType string
	var dataLines []string

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			// Stream ended; flush a trailing event without a blank line.
			if len(dataLines) > 0 {
				break
			}
			return nil, io.EOF
		}

		line := r.scanner.Text()

		// Blank line ends the event.
		if line == "" {
			if eventType != "" || len(dataLines) > 0 {
				break
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "event: "):
			eventType = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data:"))
		}
		// Other fields (id, retry) and ":" comments are skipped.
	}

	data := strings.Join(dataLines, "\n")
	if data == SSEDone {
		return nil, io.EOF
	}

	return &SSEEvent{Type: eventType, Data: data}, nil
}

// Close closes the underlying response body.
func (r *SSEReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.body.Close()
}
