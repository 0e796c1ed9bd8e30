// Package parser decodes RoboCup simulation match recordings into normalized,
// time-ordered world snapshots. Two unrelated line-oriented text formats are
// supported, each with several historical sub-versions: the Replay format
// (2D and 3D) and the ULG format written by the 2D sserver.
//
// Decoding is resumable and cooperative: a parse pass decodes a bounded batch
// of lines, then schedules its own continuation on a task runner instead of
// looping, so multi-megabyte logs never block the host.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rcviewer/rclog/internal/cursor"
	"github.com/rcviewer/rclog/internal/task"
	"github.com/rcviewer/rclog/pkg/core"
)

// Structural errors, fatal for the resource being decoded.
var (
	// ErrNoHeader is returned when the first line is not a recognized
	// format header.
	ErrNoHeader = errors.New("parser: missing or malformed header")
	// ErrEmptyLog is returned when a fully loaded source yields zero
	// snapshots.
	ErrEmptyLog = errors.New("parser: log contains no snapshots")
	// ErrDisposed is returned when Parse is called on a disposed decoder.
	ErrDisposed = errors.New("parser: decoder is disposed")
)

// Decoder is the shared contract of the format decoders. Parse may be called
// repeatedly with more data (see the input modes below); it returns true the
// first time the resulting log becomes non-empty. Callers must not issue a
// new Parse call while a scheduled continuation of a previous one is still
// pending (single-writer discipline).
//
// Input modes:
//   - full in-memory text: partial=false, incremental=false
//   - partial text replaced wholesale on the next call: partial=true, incremental=false
//   - growing text delivered as only-the-new-suffix: partial=true, incremental=true
type Decoder interface {
	Parse(data, resource string, partial, incremental bool) (bool, error)
	// Log returns the decoded log, or nil while the header has not been
	// seen yet.
	Log() core.SimLog
	// Err returns the structural error of an asynchronously finished
	// decode, if any.
	Err() error
	// Diagnostics returns the recoverable per-line decode failures
	// collected so far, oldest first, bounded.
	Diagnostics() []Diagnostic
	// Dispose cancels pending continuations and releases buffers. With
	// keepCursorAlive the line cursor survives for a follow-up decoder.
	Dispose(keepCursorAlive bool)
}

// ForSource picks a decoder by peeking at the first line of the source text.
// The choice is heuristic: Replay headers start with "RPL", "T " or "V ",
// ULG headers with "ULG".
func ForSource(firstLine string, logger *slog.Logger, runner *task.Runner) (Decoder, error) {
	trimmed := strings.TrimSpace(firstLine)
	switch {
	case strings.HasPrefix(trimmed, "ULG"):
		return NewUlgDecoder(logger, runner), nil
	case strings.HasPrefix(trimmed, "RPL"),
		strings.HasPrefix(trimmed, "T "),
		strings.HasPrefix(trimmed, "V "):
		return NewReplayDecoder(logger, runner), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrNoHeader, firstLine)
	}
}

// Diagnostic records one recoverable per-line decode failure.
type Diagnostic struct {
	Line int
	Tag  string
	Err  error
}

// maxDiagnostics bounds the retained diagnostics per decoder.
const maxDiagnostics = 32

// decoderBase carries the state shared by both format decoders: the line
// cursor, the cooperative scheduling plumbing and the diagnostics ring.
type decoderBase struct {
	logger *slog.Logger
	runner *task.Runner

	cur     *cursor.Cursor
	token   *task.Token
	partial bool

	lineNo   int
	disposed bool
	done     bool
	err      error

	diags []Diagnostic
}

func newDecoderBase(logger *slog.Logger, runner *task.Runner) decoderBase {
	if logger == nil {
		logger = slog.Default()
	}
	return decoderBase{
		logger: logger,
		runner: runner,
		token:  task.NewToken(),
	}
}

// updateCursor feeds new data into the line cursor, creating it on first use.
// Returns whether the body loop must restart from the cursor's current line
// (cursor created or buffer replaced non-incrementally).
func (d *decoderBase) updateCursor(data string, partial, incremental bool) bool {
	d.partial = partial
	if d.cur == nil {
		d.cur = cursor.New(data, partial)
		return true
	}
	d.cur.Update(data, partial, incremental)
	return !incremental
}

// diagnose records a recoverable per-line failure and skips the line.
func (d *decoderBase) diagnose(tag string, err error) {
	if len(d.diags) >= maxDiagnostics {
		d.diags = d.diags[1:]
	}
	d.diags = append(d.diags, Diagnostic{Line: d.lineNo, Tag: tag, Err: err})
	linesSkipped.Add(bgCtx, 1)
	d.logger.Debug("skipping undecodable line", "line", d.lineNo, "tag", tag, "error", err)
}

// Err returns the structural error of a finished decode, if any.
func (d *decoderBase) Err() error { return d.err }

// Diagnostics returns the collected recoverable failures, oldest first.
func (d *decoderBase) Diagnostics() []Diagnostic { return d.diags }

func (d *decoderBase) dispose(keepCursorAlive bool) {
	d.disposed = true
	d.token.Cancel()
	if d.cur != nil && !keepCursorAlive {
		d.cur.Dispose()
		d.cur = nil
	}
	d.diags = nil
}

// schedule enqueues fn as a zero-delay continuation that no-ops if the
// decoder was disposed before it fires.
func (d *decoderBase) schedule(fn func()) {
	if d.runner == nil {
		// no host task queue: degrade to synchronous looping
		fn()
		return
	}
	tok := d.token
	d.runner.Schedule(func() {
		if tok.Cancelled() {
			return
		}
		fn()
	})
}

// Numeric helpers shared by the decoders.

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseFlags parses a status bit-flag word given in hex, with or without a
// "0x" prefix.
func parseFlags(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad flags field: %w", err)
	}
	return uint32(v), nil
}

// splitTag splits a body line into its one/two-character tag and the rest.
func splitTag(line string) (tag, rest string) {
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		return line[:idx], strings.TrimLeft(line[idx+1:], " ")
	}
	return line, ""
}

// sideForTag maps an agent line tag to its team side.
func sideForTag(tag string) core.Side {
	switch tag {
	case "l", "L":
		return core.SideLeft
	default:
		return core.SideRight
	}
}
