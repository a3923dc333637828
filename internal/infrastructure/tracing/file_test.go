package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readSpanStream parses a span log file as a stream of concatenated JSON
// documents, the way a real consumer has to.
func readSpanStream(t *testing.T, path string) []Record {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec Record
		require.NoError(t, dec.Decode(&rec))
		records = append(records, rec)
	}
	return records
}

func TestFileExporterAppendsDocuments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	exp := NewFileExporter(path)

	first := newSpan("course_catalog")
	first.End()
	second := newSpan("load_courses")
	second.End()

	require.NoError(t, exp.Export(context.Background(), []*Span{first}))
	require.NoError(t, exp.Export(context.Background(), []*Span{second}))

	records := readSpanStream(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "course_catalog", records[0].Name)
	assert.Equal(t, "load_courses", records[1].Name)
	assert.Equal(t, first.TraceID().String(), records[0].TraceID)
}

func TestFileExporterPrettyPrints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	exp := NewFileExporter(path)

	span := newSpan("manual-span")
	span.End()
	require.NoError(t, exp.Export(context.Background(), []*Span{span}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Pretty-printed block, not a single JSON line.
	assert.True(t, strings.HasPrefix(string(data), "{\n"))
	assert.Contains(t, string(data), "    \"name\"")
}

func TestFileExporterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "spans.json")
	exp := NewFileExporter(path)

	span := newSpan("mkdir")
	span.End()
	require.NoError(t, exp.Export(context.Background(), []*Span{span}))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestFileExporterEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	exp := NewFileExporter(path)

	require.NoError(t, exp.Export(context.Background(), nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty export must not touch the file")
}

func TestFileExporterConcurrentExports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spans.json")
	exp := NewFileExporter(path)

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				span := newSpan("concurrent")
				span.End()
				_ = exp.Export(context.Background(), []*Span{span})
			}
		}()
	}
	wg.Wait()

	// Every document must still parse: whole documents interleave,
	// bytes do not.
	records := readSpanStream(t, path)
	assert.Len(t, records, workers*perWorker)
}
