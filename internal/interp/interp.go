// Package interp implements the abstract interpreter (C6): it walks a
// debloated function body, maintains the kind environment, applies the
// operator algebra from package kind, and routes operator violations to a
// report.Reporter.
package interp

import (
	"fmt"
	"strings"

	"github.com/oxhq/typeinfer/internal/annot"
	"github.com/oxhq/typeinfer/internal/kind"
	"github.com/oxhq/typeinfer/internal/report"
	"github.com/oxhq/typeinfer/internal/tsnode"
)

// funcScope is the single scope every binding in a RunFunc invocation lives
// in — the debloater has already linearised block nesting into the
// renamed-identifier strings themselves, so the interpreter only ever needs
// one lexical frame per call.
const funcScope = 0

// Diagnostics receives non-fatal findings that are not themselves
// violations: unknown-variable reads and unsupported syntax. The default
// implementation writes to a stream; tests may substitute a recording one.
type Diagnostics interface {
	Warn(code, msg string)
}

// Interpreter runs C6 over one debloated function body.
type Interpreter struct {
	env      *Env
	reporter report.Reporter
	diag     Diagnostics
	filename string
}

// New builds an Interpreter reporting violations to reporter and
// diagnostics to diag.
func New(reporter report.Reporter, diag Diagnostics, filename string) *Interpreter {
	return &Interpreter{env: NewEnv(), reporter: reporter, diag: diag, filename: filename}
}

// Env exposes the interpreter's kind environment, mainly for tests that
// assert on its post-run state.
func (ip *Interpreter) Env() *Env { return ip.env }

// RunFunc seeds the environment from paramKinds (positionally, missing
// arguments default to Undefined) under each parameter's canonical
// base_1_1 name, then walks the function body statement by statement.
func (ip *Interpreter) RunFunc(fn *tsnode.Node, paramKinds []kind.Kind) error {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return report.Wrap(report.ErrParse, "function has no body", nil)
	}

	introducer := int(body.ID())
	if params := fn.ChildByFieldName("parameters"); params != nil {
		i := 0
		for j := 0; j < params.ChildCount(); j++ {
			child := params.Child(j)
			if child.Kind() != "identifier" {
				continue
			}
			k := kind.Undefined
			if i < len(paramKinds) {
				k = paramKinds[i]
			}
			ip.env.Declare(funcScope, child.Text()+"_1_1", introducer, k)
			i++
		}
	}

	for i := 0; i < body.ChildCount(); i++ {
		stmt := body.Child(i)
		switch stmt.Kind() {
		case "{", "}", "comment":
			continue
		}
		if err := ip.execStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interpreter) execStatement(stmt *tsnode.Node) error {
	ann, err := ip.resolveAnnotation(stmt)
	if err != nil {
		return err
	}

	switch stmt.Kind() {
	case "lexical_declaration", "variable_declaration":
		for i := 0; i < stmt.ChildCount(); i++ {
			decl := stmt.Child(i)
			if decl.Kind() != "variable_declarator" {
				continue
			}
			name := decl.ChildByFieldName("name")
			if name == nil {
				continue
			}
			value := decl.ChildByFieldName("value")
			k := ip.evalExprKind(value, ann)
			ip.env.Declare(funcScope, name.Text(), ann.ParentID, k)
		}

	case "expression_statement":
		expr := firstNonTrivialChild(stmt)
		if expr == nil {
			return nil
		}
		switch expr.Kind() {
		case "assignment_expression":
			left := expr.ChildByFieldName("left")
			right := expr.ChildByFieldName("right")
			if left == nil || left.Kind() != "identifier" {
				ip.warnUnsupported(stmt, "assignment target is not a simple identifier")
				return nil
			}
			k := ip.evalExprKind(right, ann)
			ip.env.Assign(funcScope, left.Text(), ann.ParentID, k, ann.NonBranch)
		case "binary_expression":
			ip.evalBinary(expr, ann)
		default:
			// bare call/other expression statements have no kind effect.
		}

	case "return_statement":
		// No env mutation; nothing further to do — there is no diagnostic
		// sink wired for a dump of the live environment at this point.

	default:
		ip.warnUnsupported(stmt, "statement kind not modeled: "+stmt.Kind())
	}
	return nil
}

// evalExprKind computes the kind of an arbitrary expression node: the
// literal table of §4.5, extended with identifier lookups and recursive
// binary-expression evaluation.
func (ip *Interpreter) evalExprKind(n *tsnode.Node, ann annot.Annotation) kind.Kind {
	if n == nil {
		return kind.Undefined
	}
	switch n.Kind() {
	case "true", "false":
		return kind.Bool
	case "null":
		return kind.Null
	case "number":
		if strings.HasSuffix(n.Text(), "n") {
			return kind.BigInt
		}
		return kind.Number
	case "string":
		return kind.String
	case "object":
		return kind.Object
	case "undefined":
		return kind.Undefined
	case "identifier":
		if n.Text() == "undefined" {
			return kind.Undefined
		}
		k, ok := ip.env.Get(funcScope, n.Text())
		if !ok {
			ip.warnUnknownVariable(n)
			return kind.Unknown
		}
		return k
	case "call_expression":
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Kind() == "identifier" && fn.Text() == "Symbol" {
			return kind.Symbol
		}
		ip.warnUnsupported(n, "call expression not modeled")
		return kind.Unknown
	case "binary_expression":
		return ip.evalBinary(n, ann)
	case "parenthesized_expression":
		return ip.evalExprKind(firstNonTrivialChild(n), ann)
	default:
		ip.warnUnsupported(n, "expression kind not modeled: "+n.Kind())
		return kind.Unknown
	}
}

// evalBinary implements §4.6's binary-expression evaluation: left-
// associative folding where a nested binary sub-expression's result
// becomes the outer lhs if the outer lhs is still unset, then invokes the
// operator algebra and routes any violation to the reporter.
func (ip *Interpreter) evalBinary(n *tsnode.Node, ann annot.Annotation) kind.Kind {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")

	lhsKind := ip.evalExprKind(left, ann)
	rhsKind := ip.evalExprKind(right, ann)

	opText := operatorText(n, left, right)
	op := kind.Operator(opText)
	if !isKnownOperator(op) {
		ip.warnUnsupported(n, "operator not modeled: "+opText)
		return kind.Unknown
	}

	result, violation := kind.Execute(op, lhsKind, rhsKind)
	if violation != nil {
		ip.reportViolation(n, lhsKind, op, rhsKind, *violation, ann)
	}
	return result
}

func isKnownOperator(op kind.Operator) bool {
	switch op {
	case kind.Eq, kind.Neq, kind.Seq, kind.Sneq, kind.Gt, kind.Ge, kind.Lt, kind.Le,
		kind.Add, kind.Sub, kind.Mul, kind.Div:
		return true
	}
	return false
}

// operatorText finds the operator token between left and right: the
// "operator" field when the grammar exposes one, otherwise the first
// child strictly between the two operand spans.
func operatorText(n, left, right *tsnode.Node) string {
	if opNode := n.ChildByFieldName("operator"); opNode != nil {
		return opNode.Text()
	}
	if left == nil {
		return ""
	}
	leftEnd := left.Range().EndByte
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Range().StartByte >= leftEnd {
			if right != nil && c.Range().StartByte >= right.Range().StartByte {
				break
			}
			return c.Text()
		}
	}
	return ""
}

func (ip *Interpreter) reportViolation(n *tsnode.Node, lhs kind.Kind, op kind.Operator, rhs kind.Kind, tag kind.ViolationTag, ann annot.Annotation) {
	severity := report.SeverityArith
	if tag == kind.CmpViolation {
		severity = report.SeverityCmp
	}
	// n lives in the debloated tree, so its own row is not a row of the
	// original file; the annotation's loc carries the original row.
	sourceLine := ""
	if _, row, err := report.ParseLocRow(ann.Loc); err == nil {
		sourceLine, _ = report.SourceLine(ip.filename, row)
	}
	ip.reporter.Report(report.Violation{
		KindLeft:   lhs,
		Op:         op,
		KindRight:  rhs,
		Loc:        ann.Loc,
		SourceLine: sourceLine,
		Severity:   severity,
	})
}

func (ip *Interpreter) warnUnknownVariable(n *tsnode.Node) {
	ip.diag.Warn(report.ErrUnknownVariable, fmt.Sprintf("read of undeclared variable %q at %s", n.Text(), locString(n)))
}

func (ip *Interpreter) warnUnsupported(n *tsnode.Node, msg string) {
	ip.diag.Warn(report.ErrUnsupported, msg+" at "+locString(n))
}

func locString(n *tsnode.Node) string {
	r := n.Range()
	return fmt.Sprintf("%d:%d", r.StartRow, r.StartCol)
}

// resolveAnnotation finds and parses the annotation comment attached to
// stmt: its own next sibling, or (ascending) the nearest enclosing node's
// next sibling, per §4.4.
func (ip *Interpreter) resolveAnnotation(stmt *tsnode.Node) (annot.Annotation, error) {
	for cur := stmt; cur != nil; cur = cur.Parent() {
		if sib := cur.NextSibling(); sib != nil && sib.Kind() == "comment" {
			return annot.Parse(sib.Text())
		}
	}
	return annot.Annotation{}, report.Wrap(report.ErrAnnotationMissing,
		"no reachable annotation for statement at "+locString(stmt), nil)
}

func firstNonTrivialChild(n *tsnode.Node) *tsnode.Node {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		switch c.Kind() {
		case ";", "{", "}":
			continue
		}
		return c
	}
	return nil
}
