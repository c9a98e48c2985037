// Package capture rebinds the daemon's output streams while a run executes.
package capture

import (
	"fmt"
	"io"
	"sync"
)

// StreamID names a rebindable output stream
type StreamID string

const (
	Stdout StreamID = "stdout"
	Stderr StreamID = "stderr"
)

// Streams holds the current binding of each output stream. Writers handed out
// by Writer always write to whatever the stream is bound to at write time.
type Streams struct {
	mu       sync.Mutex
	bindings map[StreamID]io.Writer
}

// NewStreams binds the standard streams to stdout and stderr
func NewStreams(stdout, stderr io.Writer) *Streams {
	return &Streams{
		bindings: map[StreamID]io.Writer{
			Stdout: stdout,
			Stderr: stderr,
		},
	}
}

// Writer returns a writer following the binding of id
func (s *Streams) Writer(id StreamID) io.Writer {
	return &streamWriter{streams: s, id: id}
}

// Stdout follows the stdout binding
func (s *Streams) Stdout() io.Writer { return s.Writer(Stdout) }

// Stderr follows the stderr binding
func (s *Streams) Stderr() io.Writer { return s.Writer(Stderr) }

// Capture binds id to a fresh buffer for the duration of body and returns what
// was written to it. The previous binding is restored on every path, panics
// included.
func (s *Streams) Capture(id StreamID, body func() error) (string, error) {
	s.mu.Lock()
	prev, ok := s.bindings[id]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("unknown stream %q", id)
	}
	buf := &Buffer{}
	s.bindings[id] = buf
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.bindings[id] = prev
		s.mu.Unlock()
	}()

	err := body()
	return buf.String(), err
}

func (s *Streams) current(id StreamID) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bindings[id]
}

type streamWriter struct {
	streams *Streams
	id      StreamID
}

func (w *streamWriter) Write(p []byte) (int, error) {
	dst := w.streams.current(w.id)
	if dst == nil {
		return len(p), nil
	}
	return dst.Write(p)
}
