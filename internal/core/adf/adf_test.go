package adf

import (
	"strings"
	"testing"
)

const doc = `{"type":"doc","version":1,"content":[
  {"type":"paragraph","content":[{"type":"text","text":"Login "},{"type":"text","text":"fails"}]},
  {"type":"bulletList","content":[{"type":"listItem","content":[{"type":"paragraph","content":[{"type":"text","text":" on SSO"}]}]}]},
  {"type":"rule"}
]}`

func TestPlainText(t *testing.T) {
	if got := PlainText(doc, 0); got != "Login fails on SSO" {
		t.Fatalf("doc = %q", got)
	}
	if got := PlainText(`"quoted"`, 0); got != "quoted" {
		t.Fatalf("string = %q", got)
	}
	if got := PlainText("just text", 0); got != "just text" {
		t.Fatalf("plain = %q", got)
	}
	if got := PlainText(`{"not":"adf"}`, 0); got != `{"not":"adf"}` {
		t.Fatalf("non adf object = %q", got)
	}
	if PlainText("  ", 0) != "" {
		t.Fatalf("blank not empty")
	}
}

func nested(depth int) *Node {
	leaf := &Node{Type: "text", Text: "deep"}
	n := leaf
	for i := 0; i < depth-1; i++ {
		n = &Node{Type: "paragraph", Content: []Node{*n}}
	}
	return n
}

func TestDepthBound(t *testing.T) {
	// the text node sits at depth 10
	root := nested(10)
	if Text(root, 10) != "deep" {
		t.Fatalf("text at the bound must be read")
	}
	if Text(root, 9) != "" {
		t.Fatalf("text beyond the bound must be skipped")
	}

	// far deeper than the default does not blow the stack
	huge := nested(100000)
	if Text(huge, 0) != "" {
		t.Fatalf("expected skip beyond default depth")
	}
	if !strings.Contains(Text(nested(DefaultMaxDepth), 0), "deep") {
		t.Fatalf("default depth should reach its own bound")
	}
	if Text(nil, 0) != "" {
		t.Fatalf("nil root")
	}
}
