package interp

import (
	"fmt"
	"io"
	"sync"
)

// StreamDiagnostics writes each diagnostic to out as it arrives and keeps a
// mutex-guarded record of everything seen, mirroring the reporter's
// append-only history discipline.
type StreamDiagnostics struct {
	out io.Writer

	mu   sync.Mutex
	seen []string
}

// NewStreamDiagnostics builds a Diagnostics sink writing to out.
func NewStreamDiagnostics(out io.Writer) *StreamDiagnostics {
	return &StreamDiagnostics{out: out}
}

// Warn records and writes one diagnostic line.
func (d *StreamDiagnostics) Warn(code, msg string) {
	line := fmt.Sprintf("[%s] %s", code, msg)
	d.mu.Lock()
	d.seen = append(d.seen, line)
	d.mu.Unlock()
	fmt.Fprintln(d.out, line)
}

// Seen returns every diagnostic recorded so far, in order.
func (d *StreamDiagnostics) Seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.seen))
	copy(out, d.seen)
	return out
}
