package gradle

import (
	"bytes"
	"strings"
	"sync"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/entity"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/clock"
)

// lineWriter reports every complete line written to it as a progress event.
type lineWriter struct {
	mu       sync.Mutex
	clock    clock.Clock
	listener entity.ProgressListener
	pending  []byte
}

func newLineWriter(c clock.Clock, listener entity.ProgressListener) *lineWriter {
	return &lineWriter{clock: c, listener: listener}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = append(w.pending, p...)
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		w.emit(string(w.pending[:i]))
		w.pending = w.pending[i+1:]
	}
	return len(p), nil
}

// Flush reports a trailing line without a newline.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) > 0 {
		w.emit(string(w.pending))
		w.pending = nil
	}
}

func (w *lineWriter) emit(line string) {
	line = strings.TrimRight(line, "\r")
	if w.listener == nil || strings.TrimSpace(line) == "" {
		return
	}
	w.listener.ProgressChanged(entity.ProgressEvent{Description: line, Time: w.clock.Now()})
}

// tailBuffer keeps the last lines written to it.
type tailBuffer struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial []byte
}

func newTailBuffer(maxLines int) *tailBuffer {
	return &tailBuffer{max: maxLines}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.partial = append(b.partial, p...)
	for {
		i := bytes.IndexByte(b.partial, '\n')
		if i < 0 {
			break
		}
		b.add(strings.TrimRight(string(b.partial[:i]), "\r"))
		b.partial = b.partial[i+1:]
	}
	return len(p), nil
}

func (b *tailBuffer) add(line string) {
	b.lines = append(b.lines, line)
	if len(b.lines) > b.max {
		b.lines = b.lines[len(b.lines)-b.max:]
	}
}

// String returns the retained lines, including an unterminated last line.
func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	lines := b.lines
	if len(b.partial) > 0 {
		lines = append(lines[:len(lines):len(lines)], string(b.partial))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
