package log

import (
	"io"
	"os"
	"sync"
)

// Output defines the interface for log outputs.
type Output interface {
	Write(entry *Entry, formatted []byte) error
}

// WriterOutput writes formatted entries to an io.Writer, serializing writes.
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput returns an Output writing to w.
func NewWriterOutput(w io.Writer) *WriterOutput { return &WriterOutput{w: w} }

// NewConsoleOutput returns an Output writing to stderr.
func NewConsoleOutput() *WriterOutput { return &WriterOutput{w: os.Stderr} }

// Write writes the formatted entry.
func (o *WriterOutput) Write(_ *Entry, formatted []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, err := o.w.Write(formatted)
	return err
}
