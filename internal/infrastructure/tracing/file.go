package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileExporter serializes each span as a pretty-printed JSON document and
// appends it to a log file. The result is a stream of concatenated JSON
// documents, not a single array; consumers must parse it with a decoder
// loop rather than one Unmarshal.
//
// The file is opened with O_APPEND and closed on every export cycle, so
// concurrent flush cycles interleave whole documents instead of bytes.
type FileExporter struct {
	path string
	mu   sync.Mutex
}

// NewFileExporter creates an exporter appending to the given path. The
// containing directory is created on first export if absent.
func NewFileExporter(path string) *FileExporter {
	return &FileExporter{path: path}
}

// Export appends every span in the batch to the log file.
func (e *FileExporter) Export(_ context.Context, spans []*Span) error {
	if len(spans) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, span := range spans {
		data, err := json.MarshalIndent(span.Record(), "", "    ")
		if err != nil {
			// Skip the one unserializable span, keep the batch going.
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("create span log directory: %w", err)
	}

	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open span log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write span log: %w", err)
	}
	return nil
}

// Shutdown is a no-op; the file is not held open between exports.
func (e *FileExporter) Shutdown(context.Context) error {
	return nil
}

// Name identifies the exporter in logs and metrics.
func (e *FileExporter) Name() string {
	return "file"
}

// Path returns the span log file path.
func (e *FileExporter) Path() string {
	return e.path
}
