// Package debloat implements the debloater/SSA-renamer (C3): given a parsed
// function, it flattens branching control flow into a straight-line,
// annotated statement stream and renames every identifier occurrence to
// base_level_visit form.
package debloat

import (
	"context"
	"fmt"
	"strings"

	"github.com/oxhq/typeinfer/internal/annot"
	"github.com/oxhq/typeinfer/internal/report"
	"github.com/oxhq/typeinfer/internal/tsnode"
)

type debloater struct {
	filename string
	renamer  *renamer
	lines    []string
}

// Run debloats src looking for the first function declaration (in pre-order,
// at any nesting depth) named targetFunc, returning the debloated source text. filename is recorded
// verbatim into every emitted [Loc] annotation.
func Run(ctx context.Context, src []byte, filename, targetFunc string) (string, error) {
	tree, err := tsnode.Parse(ctx, src)
	if err != nil {
		return "", report.Wrap(report.ErrParse, "cannot parse source for debloating", err)
	}
	defer tree.Close()

	fn := findFunction(tree.Root(), targetFunc)
	if fn == nil {
		return "", report.Wrap(report.ErrUnsupported, "target function not found: "+targetFunc, nil)
	}
	body := fn.ChildByFieldName("body")
	if body == nil {
		return "", report.Wrap(report.ErrParse, "target function has no body: "+targetFunc, nil)
	}

	var openBrace *tsnode.Node
	for i := 0; i < body.ChildCount(); i++ {
		if c := body.Child(i); c.Kind() == "{" {
			openBrace = c
			break
		}
	}
	if openBrace == nil {
		return "", report.Wrap(report.ErrParse, "function body has no opening brace: "+targetFunc, nil)
	}

	d := &debloater{filename: filename, renamer: newRenamer()}

	headerStart := fn.Range().StartByte
	headerEnd := openBrace.Range().EndByte
	d.lines = append(d.lines, string(src[headerStart:headerEnd]))

	if params := fn.ChildByFieldName("parameters"); params != nil {
		for _, child := range params.ChildrenPreOrder() {
			if child.Kind() == "identifier" {
				d.renamer.renameIdent(child)
			}
		}
	}

	d.walkBlockChildren(body)
	d.lines = append(d.lines, "}")

	return strings.Join(d.lines, "\n"), nil
}

// findFunction locates the first function_declaration named name, searching
// pre-order from root.
func findFunction(root *tsnode.Node, name string) *tsnode.Node {
	if root.Kind() == "function_declaration" {
		if n := root.ChildByFieldName("name"); n != nil && n.Text() == name {
			return root
		}
	}
	for _, c := range root.ChildrenPreOrder() {
		if c.Kind() != "function_declaration" {
			continue
		}
		if n := c.ChildByFieldName("name"); n != nil && n.Text() == name {
			return c
		}
	}
	return nil
}

// walk dispatches one direct statement-position node: branching and looping
// constructs are flattened (their bodies are walked, the construct itself is
// never emitted); everything else is emitted as one debloated line.
func (d *debloater) walk(node *tsnode.Node) {
	switch node.Kind() {
	case "statement_block":
		d.renamer.scope.enter()
		d.walkBlockChildren(node)
		d.renamer.scope.leave()

	case "if_statement":
		if cons := node.ChildByFieldName("consequence"); cons != nil {
			d.walk(cons)
		}
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			d.walk(alt)
		}

	case "else_clause":
		d.walkBlockChildren(node)

	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		if b := node.ChildByFieldName("body"); b != nil {
			d.walk(b)
		}

	case "switch_statement":
		d.walkSwitch(node)

	case "empty_statement", "break_statement", "continue_statement":
		// ; attached to these is dropped: they carry no analyzable effect.

	default:
		d.emit(node)
	}
}

// walkBlockChildren walks every direct child of a block-shaped node in
// source order, skipping the brace tokens themselves.
func (d *debloater) walkBlockChildren(block *tsnode.Node) {
	for i := 0; i < block.ChildCount(); i++ {
		child := block.Child(i)
		switch child.Kind() {
		case "{", "}", "else":
			continue
		}
		d.walk(child)
	}
}

func (d *debloater) walkSwitch(node *tsnode.Node) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < body.ChildCount(); i++ {
		clause := body.Child(i)
		switch clause.Kind() {
		case "switch_case":
			label := "default:"
			if value := clause.ChildByFieldName("value"); value != nil {
				label = "case " + value.Text() + ":"
			}
			d.emitLabel(clause, label)
			d.walkCaseBody(clause)
		case "switch_default":
			d.emitLabel(clause, "default:")
			d.walkCaseBody(clause)
		}
	}
}

func (d *debloater) walkCaseBody(clause *tsnode.Node) {
	for i := 0; i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "case", "default", ":":
			continue
		}
		if same := clause.ChildByFieldName("value"); same != nil && sameNode(same, child) {
			continue
		}
		d.walk(child)
	}
}

// emit renames node's identifiers and appends the resulting statement (with
// its trailing annotation) to the output.
func (d *debloater) emit(node *tsnode.Node) {
	text := strings.TrimSpace(d.renameStatementText(node))
	if text == "" {
		return
	}
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	d.appendLine(node, text)
}

// emitLabel appends a synthesized statement (a switch case/default label)
// that has no direct source node of its own to rename.
func (d *debloater) emitLabel(clause *tsnode.Node, label string) {
	d.appendLine(clause, label)
}

func (d *debloater) appendLine(node *tsnode.Node, text string) {
	r := node.Range()
	loc := fmt.Sprintf("%s:%d:%d", d.filename, r.StartRow, r.StartCol)
	parentID := 0
	if p := node.Parent(); p != nil {
		parentID = int(p.ID())
	}
	nonBranch := !node.IsInControlFlow()
	d.lines = append(d.lines, text+"  "+annot.Format(loc, nonBranch, parentID))
}

// renameStatementText reconstructs node's text with every qualifying
// identifier substituted for its renamed form, leaving callee identifiers,
// property identifiers, and all non-identifier text untouched.
func (d *debloater) renameStatementText(node *tsnode.Node) string {
	base := node.Range().StartByte
	text := node.Text()

	type splice struct {
		start, end int
		text       string
	}
	var splices []splice

	for _, n := range node.ChildrenPreOrder() {
		if n.Kind() != "identifier" {
			continue
		}
		if isCalleeIdentifier(n) {
			continue
		}
		renamed := d.renamer.renameIdent(n)
		r := n.Range()
		splices = append(splices, splice{r.StartByte - base, r.EndByte - base, renamed})
	}

	var b strings.Builder
	cur := 0
	for _, sp := range splices {
		if sp.start < cur || sp.start > len(text) || sp.end > len(text) {
			continue
		}
		b.WriteString(text[cur:sp.start])
		b.WriteString(sp.text)
		cur = sp.end
	}
	b.WriteString(text[cur:])
	return b.String()
}
