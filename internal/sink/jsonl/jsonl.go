// Package jsonl persists triplets as append-only JSON Lines files, one
// triplet per line, named {subject}_{name}_{shape}.jsonl under the output
// directory. This is the default backend.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pairgen/internal/sample"
	"pairgen/internal/sink"
)

func init() {
	sink.Register("jsonl", func(_ context.Context, cfg sink.Config) (sink.Sink, error) {
		return Open(cfg)
	})
}

// Writer appends triplets to one JSONL file. Not safe for concurrent use;
// each pipeline owns its own Writer.
type Writer struct {
	f   *os.File
	buf *bufio.Writer
	enc *json.Encoder
}

// Open creates or opens the output file in append mode. Re-running a
// generation extends the existing file rather than truncating it.
func Open(cfg sink.Config) (*Writer, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonl: create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(cfg.Subject, cfg.Name, cfg.Shape))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	return &Writer{f: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// FileName builds the output file name for one pipeline. Subject names keep
// their dots ("dataModel.Device"); path separators are flattened.
func FileName(subject, name string, shape sample.Shape) string {
	clean := func(s string) string {
		return strings.NewReplacer("/", "-", string(filepath.Separator), "-").Replace(s)
	}
	return fmt.Sprintf("%s_%s_%s.jsonl", clean(subject), clean(name), shape)
}

// Append implements sink.Sink. json.Encoder terminates each value with a
// newline, which is exactly the JSONL framing.
func (w *Writer) Append(_ context.Context, t *sample.Triplet) error {
	if err := w.enc.Encode(t); err != nil {
		return fmt.Errorf("jsonl: encode triplet: %w", err)
	}
	return nil
}

// Close flushes buffered lines and closes the file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("jsonl: flush: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("jsonl: close: %w", err)
	}
	return nil
}

var _ sink.Sink = (*Writer)(nil)
