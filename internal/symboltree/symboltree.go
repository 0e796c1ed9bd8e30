// Package symboltree parses the parenthesized, space-delimited token grammar
// used by the ULG format and by newer Replay agent lines: a line is one node,
// a node is a sequence of raw tokens and nested parenthesized nodes, and the
// order of both is semantically significant.
package symboltree

import (
	"errors"
	"fmt"
	"strings"
)

// Structural parse errors.
var (
	ErrNotWrapped    = errors.New("symboltree: input is not wrapped in parentheses")
	ErrMultipleRoots = errors.New("symboltree: more than one top-level node")
	ErrUnclosed      = errors.New("symboltree: node is never closed")
)

// Node is one parenthesized group: its raw string values and its child nodes,
// both in source order.
type Node struct {
	Values   []string
	Children []*Node
}

// Value returns the value at the given index, or "".
func (n *Node) Value(idx int) string {
	if idx < 0 || idx >= len(n.Values) {
		return ""
	}
	return n.Values[idx]
}

// Child returns the child node at the given index, or nil.
func (n *Node) Child(idx int) *Node {
	if idx < 0 || idx >= len(n.Children) {
		return nil
	}
	return n.Children[idx]
}

// ChildTagged returns the first child whose first value equals tag, or nil.
func (n *Node) ChildTagged(tag string) *Node {
	for _, c := range n.Children {
		if len(c.Values) > 0 && c.Values[0] == tag {
			return c
		}
	}
	return nil
}

// String renders the node back into its source form.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteByte('(')
	for i, v := range n.Values {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(v)
	}
	for i, c := range n.Children {
		if i > 0 || len(n.Values) > 0 {
			b.WriteByte(' ')
		}
		c.write(b)
	}
	b.WriteByte(')')
}

// Parse parses one line into its node tree. The whole input must be a single
// parenthesized node, optionally surrounded by whitespace.
func Parse(input string) (*Node, error) {
	i := skipSpace(input, 0)
	if i >= len(input) || input[i] != '(' {
		return nil, ErrNotWrapped
	}

	root, next, err := parseNode(input, i+1)
	if err != nil {
		return nil, err
	}

	if rest := skipSpace(input, next); rest < len(input) {
		if input[rest] == '(' {
			return nil, ErrMultipleRoots
		}
		return nil, fmt.Errorf("%w: trailing %q", ErrNotWrapped, input[rest:])
	}
	return root, nil
}

// parseNode scans the node body starting just past its opening parenthesis
// and returns the position just past the closing one.
func parseNode(input string, pos int) (*Node, int, error) {
	node := &Node{}
	start := pos

	flush := func(end int) {
		if end > start {
			node.Values = append(node.Values, input[start:end])
		}
	}

	for pos < len(input) {
		switch input[pos] {
		case '(':
			flush(pos)
			child, next, err := parseNode(input, pos+1)
			if err != nil {
				return nil, 0, err
			}
			node.Children = append(node.Children, child)
			pos = next
			start = pos
		case ')':
			flush(pos)
			return node, pos + 1, nil
		case ' ', '\t':
			flush(pos)
			pos++
			start = pos
		default:
			pos++
		}
	}
	return nil, 0, ErrUnclosed
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
