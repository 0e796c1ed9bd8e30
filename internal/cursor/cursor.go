// Package cursor provides an incremental, restartable line tokenizer over a
// text buffer that may still be growing while it is consumed.
package cursor

import "strings"

// Cursor walks a text buffer line by line. While the underlying data is
// marked partial, a trailing line without a terminator is not yet available;
// once the stream ends the trailing remainder counts as a final line.
type Cursor struct {
	buffer  string
	pos     int
	partial bool
}

// New creates a cursor over the given buffer.
func New(data string, partial bool) *Cursor {
	return &Cursor{buffer: data, partial: partial}
}

// Update replaces or extends the buffer. When incremental, only the
// unconsumed remainder is kept and the new data appended; otherwise the whole
// buffer is replaced and the scan position reset.
func (c *Cursor) Update(data string, partial, incremental bool) {
	if incremental {
		c.buffer = c.buffer[c.pos:] + data
	} else {
		c.buffer = data
	}
	c.pos = 0
	c.partial = partial
}

// HasNext reports whether a complete line is available at the current
// position.
func (c *Cursor) HasNext() bool {
	if c.pos >= len(c.buffer) {
		return false
	}
	if strings.IndexByte(c.buffer[c.pos:], '\n') >= 0 {
		return true
	}
	// trailing line without terminator: only complete once the stream ended
	return !c.partial
}

// Next consumes and returns the next complete line without its terminator.
// Returns false when no complete line is available.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.buffer) {
		return "", false
	}

	rest := c.buffer[c.pos:]
	idx := strings.IndexByte(rest, '\n')
	if idx < 0 {
		if c.partial {
			return "", false
		}
		c.pos = len(c.buffer)
		return strings.TrimSuffix(rest, "\r"), true
	}

	c.pos += idx + 1
	return strings.TrimSuffix(rest[:idx], "\r"), true
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int { return len(c.buffer) - c.pos }

// Dispose drops the retained buffer so no history stays reachable.
func (c *Cursor) Dispose() {
	c.buffer = ""
	c.pos = 0
}
