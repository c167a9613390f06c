// Package callsite implements the call-site harvester (C5): it finds every
// call to the target function in the original, pre-debloat tree and infers
// each argument's kind from literal syntax alone.
package callsite

import (
	"strings"

	"github.com/oxhq/typeinfer/internal/kind"
	"github.com/oxhq/typeinfer/internal/tsnode"
)

// Call is one call expression targeting the harvested function, together
// with the kinds inferred for its literal arguments.
type Call struct {
	Node  *tsnode.Node
	Kinds []kind.Kind
}

// Gather walks root (the program node) pre-order and returns one Call per
// call expression whose callee identifier is targetFunc. A call nested
// inside another call expression (e.g. bar(foo(1))) is not visited.
func Gather(root *tsnode.Node, targetFunc string) []Call {
	var calls []Call
	tsnode.WalkSubtree(root, func(child *tsnode.Node) *tsnode.Range {
		if child.Kind() != "call_expression" {
			return nil
		}
		r := child.Range()
		if isTargetCall(child, targetFunc) {
			calls = append(calls, Call{Node: child, Kinds: argumentKinds(child)})
		}
		return &r
	})
	return calls
}

func isTargetCall(callExpr *tsnode.Node, targetFunc string) bool {
	fn := callExpr.ChildByFieldName("function")
	return fn != nil && fn.Kind() == "identifier" && fn.Text() == targetFunc
}

// argumentKinds infers one Kind per argument from literal syntax, per the
// table in §4.5. An argument whose syntax doesn't match any literal form is
// skipped entirely — it contributes no entry to the result, rather than an
// Unknown placeholder, so callers must not assume positional alignment with
// the raw argument list when any non-literal argument is present.
func argumentKinds(callExpr *tsnode.Node) []kind.Kind {
	args := callExpr.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	var kinds []kind.Kind
	for i := 0; i < args.ChildCount(); i++ {
		arg := args.Child(i)
		switch arg.Kind() {
		case ",", "(", ")":
			continue
		}
		if k, ok := literalKind(arg); ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// literalKind classifies a single argument expression's syntax.
func literalKind(n *tsnode.Node) (kind.Kind, bool) {
	switch n.Kind() {
	case "true", "false":
		return kind.Bool, true
	case "null":
		return kind.Null, true
	case "undefined":
		return kind.Undefined, true
	case "identifier":
		if n.Text() == "undefined" {
			return kind.Undefined, true
		}
		return kind.Unknown, false
	case "number":
		if strings.HasSuffix(n.Text(), "n") {
			return kind.BigInt, true
		}
		return kind.Number, true
	case "string":
		return kind.String, true
	case "object":
		return kind.Object, true
	case "call_expression":
		if isSymbolCall(n) {
			return kind.Symbol, true
		}
		return kind.Unknown, false
	default:
		return kind.Unknown, false
	}
}

// isSymbolCall reports whether n is a call to the global Symbol(...)
// constructor — the one kind of nested call the harvester looks inside,
// per §4.5's "Nested calls... are visited but not recursed into except
// when identifying Symbol(...)".
func isSymbolCall(callExpr *tsnode.Node) bool {
	fn := callExpr.ChildByFieldName("function")
	return fn != nil && fn.Kind() == "identifier" && fn.Text() == "Symbol"
}
