// Package adf flattens Atlassian Document Format trees into plain text
package adf

import (
	"bytes"
	"encoding/json"
	"strings"
)

// DefaultMaxDepth bounds the walk; deeper nodes are skipped
const DefaultMaxDepth = 64

// Node is one ADF node; unknown attributes are ignored
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Content []Node `json:"content,omitempty"`
}

type frame struct {
	n     *Node
	depth int
}

// Text concatenates the text nodes under root in document order.
// Nodes deeper than maxDepth (root is depth 1) are not visited
func Text(root *Node, maxDepth int) string {
	if root == nil {
		return ""
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	var b strings.Builder
	stack := []frame{{root, 1}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.n.Type == "text" {
			b.WriteString(f.n.Text)
			continue
		}
		if f.depth >= maxDepth {
			continue
		}
		for i := len(f.n.Content) - 1; i >= 0; i-- {
			stack = append(stack, frame{&f.n.Content[i], f.depth + 1})
		}
	}
	return b.String()
}

// PlainText accepts a stored description: a JSON ADF document, a JSON string,
// or plain text, and returns its text
func PlainText(raw string, maxDepth int) string {
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '{':
		var n Node
		if err := json.Unmarshal(trimmed, &n); err != nil || n.Type == "" {
			return raw
		}
		return Text(&n, maxDepth)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return raw
}
