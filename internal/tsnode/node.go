// Package tsnode is the syntax adapter (C1): a thin, read-only view over a
// Tree-sitter parse tree exposing exactly what the debloater, call-site
// harvester, and abstract interpreter need — node kind, text, range, a
// stable id, parent, next sibling, and deterministic pre-order iteration.
// Nothing downstream touches *sitter.Node directly.
package tsnode

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	javascript "github.com/smacker/go-tree-sitter/javascript"
)

// Range is a node's source span, both as row/column points and byte offsets.
// Rows and columns are 1-indexed, matching the annotation format the
// debloater emits.
type Range struct {
	StartRow, StartCol int
	EndRow, EndCol     int
	StartByte, EndByte int
}

// after reports whether r ends strictly later than other — the "has this
// traversal already passed this point" check WalkSubtree's skip hint
// relies on.
func (r Range) after(other Range) bool {
	return r.EndByte > other.EndByte
}

// Node is a read-only, source-buffer-scoped view over a single Tree-sitter
// node. All Node values borrow the same immutable source buffer for the
// life of a walk; no Node owns or copies the underlying bytes.
type Node struct {
	raw *sitter.Node
	src []byte
}

// Tree is a parsed source file plus the buffer it borrows text from.
type Tree struct {
	tree *sitter.Tree
	src  []byte
}

// Parse parses src as SL (modeled as JavaScript) source and returns its Tree.
// The returned Tree, and every Node handed out from it, is valid only while
// src is not mutated or garbage collected — the tree holds no owned copy.
func Parse(ctx context.Context, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	t, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, err
	}
	return &Tree{tree: t, src: src}, nil
}

// Close releases the underlying Tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Root returns the root node of the parse tree (kind "program").
func (t *Tree) Root() *Node {
	return wrap(t.tree.RootNode(), t.src)
}

// Source returns the buffer every Node in this tree borrows text from.
func (t *Tree) Source() []byte {
	return t.src
}

func wrap(n *sitter.Node, src []byte) *Node {
	if n == nil {
		return nil
	}
	return &Node{raw: n, src: src}
}

// Kind returns the grammar's node type string, e.g. "binary_expression".
func (n *Node) Kind() string {
	return n.raw.Type()
}

// Text returns the source slice this node spans, borrowed from the buffer.
func (n *Node) Text() string {
	return n.raw.Content(n.src)
}

// Range returns the node's source span, 1-indexed.
func (n *Node) Range() Range {
	start := n.raw.StartPoint()
	end := n.raw.EndPoint()
	return Range{
		StartRow:  int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndRow:    int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
		StartByte: int(n.raw.StartByte()),
		EndByte:   int(n.raw.EndByte()),
	}
}

// ID returns a stable identifier for this node within its tree: stable
// across repeated lookups of the same underlying Tree-sitter node, not
// across separate parses.
func (n *Node) ID() uintptr {
	return n.raw.ID()
}

// Parent returns the enclosing node, or nil at the root.
func (n *Node) Parent() *Node {
	return wrap(n.raw.Parent(), n.src)
}

// NextSibling returns the following sibling under the same parent, or nil.
func (n *Node) NextSibling() *Node {
	return wrap(n.raw.NextSibling(), n.src)
}

// ChildCount returns the number of direct children, named and anonymous.
func (n *Node) ChildCount() int {
	return int(n.raw.ChildCount())
}

// Child returns the i-th direct child.
func (n *Node) Child(i int) *Node {
	return wrap(n.raw.Child(i), n.src)
}

// ChildByFieldName returns the child stored under the given grammar field,
// or nil if the node has no such field.
func (n *Node) ChildByFieldName(field string) *Node {
	return wrap(n.raw.ChildByFieldName(field), n.src)
}

// ChildrenPreOrder returns every descendant of n (not including n itself)
// in deterministic pre-order: the same order source text would be read in.
func (n *Node) ChildrenPreOrder() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		for i := 0; i < cur.ChildCount(); i++ {
			child := cur.Child(i)
			out = append(out, child)
			walk(child)
		}
	}
	walk(n)
	return out
}

// IsInControlFlow reports whether any ancestor of n is a branching
// construct (if/else), i.e. whether n sits under conditional control flow.
// It is the predicate behind the debloater's "Non-branch" annotation.
func (n *Node) IsInControlFlow() bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "if_statement", "else_clause":
			return true
		case "function_declaration", "function", "arrow_function", "program":
			return false
		}
	}
	return false
}

// Dump renders n and every descendant as one line per node, in pre-order,
// indented by nesting depth — a debugging aid for inspecting exactly what
// the debloater and interpreter see before any renaming or flattening.
func Dump(n *Node) string {
	var b strings.Builder
	var walk func(cur *Node, depth int)
	walk = func(cur *Node, depth int) {
		r := cur.Range()
		fmt.Fprintf(&b, "%s%s [%d:%d-%d:%d]\n", strings.Repeat("  ", depth), cur.Kind(), r.StartRow, r.StartCol, r.EndRow, r.EndCol)
		for i := 0; i < cur.ChildCount(); i++ {
			walk(cur.Child(i), depth+1)
		}
	}
	walk(n, 0)
	return b.String()
}

// WalkSubtree performs the pre-order, skip-aware traversal described in the
// debloater's design notes: visit is called once per descendant of node (in
// source order), and if it returns a non-nil Range, every subsequent
// descendant whose span does not extend past that range is skipped — this
// is how a visitor that handles a subtree "in bulk" (e.g. a whole call
// expression) avoids being re-invoked on that subtree's children.
func WalkSubtree(node *Node, visit func(child *Node) *Range) {
	var skip *Range
	for _, child := range node.ChildrenPreOrder() {
		r := child.Range()
		if skip != nil && !r.after(*skip) {
			continue
		}
		if next := visit(child); next != nil {
			skip = next
		}
	}
}
