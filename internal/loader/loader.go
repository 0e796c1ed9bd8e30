// Package loader reads match log files from disk and drives a decoder over
// them. Files may be plain text or gzip-compressed; the format is picked by
// peeking at the header line.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/rcviewer/rclog/internal/parser"
	"github.com/rcviewer/rclog/internal/task"
	"github.com/rcviewer/rclog/pkg/core"
)

// defaultChunkSize is how much text one Parse call receives. Large logs are
// fed through the incremental protocol in chunks of this size so decoding
// stays cooperative.
const defaultChunkSize = 256 << 10

var gzipMagic = []byte{0x1f, 0x8b}

// Result is one fully decoded log file.
type Result struct {
	Log         core.SimLog
	Diagnostics []parser.Diagnostic
}

// Loader decodes log files into simulation logs.
type Loader struct {
	logger    *slog.Logger
	chunkSize int
}

// New creates a loader.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, chunkSize: defaultChunkSize}
}

// Load reads the file at path, auto-detects compression and format, and
// decodes it completely.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	text, err := readSource(path)
	if err != nil {
		return nil, err
	}

	resource := filepath.Base(path)
	if strings.HasSuffix(resource, ".gz") {
		resource = strings.TrimSuffix(resource, ".gz")
	}

	return l.decode(ctx, text, resource)
}

// decode feeds the text through the incremental protocol, pumping the task
// runner between chunks.
func (l *Loader) decode(ctx context.Context, text, resource string) (*Result, error) {
	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = text[:idx]
	}

	runner := task.NewRunner()
	dec, err := parser.ForSource(firstLine, l.logger, runner)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resource, err)
	}
	defer dec.Dispose(false)

	for start := 0; start < len(text); start += l.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + l.chunkSize
		if end > len(text) {
			end = len(text)
		}

		_, err := dec.Parse(text[start:end], resource, end < len(text), start > 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", resource, err)
		}

		// Run scheduled continuations before handing over more data.
		runner.Drain()
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", resource, err)
		}
	}

	log := dec.Log()
	if log == nil {
		return nil, fmt.Errorf("%s: %w", resource, parser.ErrEmptyLog)
	}

	diags := append([]parser.Diagnostic(nil), dec.Diagnostics()...)
	if len(diags) > 0 {
		l.logger.Warn("Decoded with recoverable line failures",
			"resource", resource, "count", len(diags))
	}

	return &Result{Log: log, Diagnostics: diags}, nil
}

// readSource reads the whole file, transparently decompressing gzip input.
func readSource(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read log file: %w", err)
	}

	if bytes.HasPrefix(raw, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return "", fmt.Errorf("open gzip log: %w", err)
		}
		defer zr.Close()

		raw, err = io.ReadAll(zr)
		if err != nil {
			return "", fmt.Errorf("decompress log: %w", err)
		}
	}

	return string(raw), nil
}
