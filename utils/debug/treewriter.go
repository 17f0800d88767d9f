// Package debug has helpers producing human readable dumps of internal
// structures for logs and debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented, line oriented tree representation.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at the given depth.
func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Node writes tree node line prefixed with its id.
func (tw TreeWriter) Node(depth, id int, label string) {
	tw.Line(depth, "[%d] %s", id, label)
}

// TextBlock writes label and quoted value, so whitespace and newlines in
// value stay visible and do not break tree layout.
func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(Quote(value))
	tw.w.WriteByte('\n')
}

// Quote returns Go-quoted value, empty values are returned as is.
func Quote(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
