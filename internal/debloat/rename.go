package debloat

import (
	"fmt"

	"github.com/oxhq/typeinfer/internal/tsnode"
)

// declFrame is one name's declaration site: lvl/visit are the numbers the
// renamed identifier carries; visLvl is the block depth it remains visible
// from. For an ordinary local, visLvl == lvl: it goes out of scope the
// moment the enclosing block closes. A formal parameter is visible from
// anywhere in the function body, so its frame's visLvl is pinned to 0 even
// though it is numbered base_1_1.
type declFrame struct {
	visLvl, lvl, visit int
}

// renamer implements the four-case identifier rename rule of §4.3: a
// formal parameter always becomes base_1_1; a declaring occurrence gets the
// current (lvl, visit); a previously-seen name resolves to the nearest
// enclosing scope that introduced it; anything else (an unseen write
// target) is treated as a fresh introduction at the current scope.
type renamer struct {
	scope *scopeCounter
	known map[string]bool
	decls map[string][]declFrame
}

func newRenamer() *renamer {
	return &renamer{scope: newScopeCounter(), known: make(map[string]bool), decls: make(map[string][]declFrame)}
}

// renameIdent computes the base_lvl_visit form for one identifier node,
// given its parent in the original (pre-rename) tree.
func (r *renamer) renameIdent(ident *tsnode.Node) string {
	name := ident.Text()
	parent := ident.Parent()

	switch {
	case parent != nil && parent.Kind() == "formal_parameters":
		r.known[name] = true
		r.push(name, declFrame{visLvl: 0, lvl: 1, visit: 1})
		return name + "_1_1"

	case parent != nil && parent.Kind() == "variable_declarator" && sameNode(parent.ChildByFieldName("name"), ident):
		lvl, visit := r.scope.lvl, r.scope.visit
		r.known[name] = true
		r.push(name, declFrame{visLvl: lvl, lvl: lvl, visit: visit})
		return fmt.Sprintf("%s_%d_%d", name, lvl, visit)

	case r.known[name]:
		if frame, ok := r.resolve(name); ok {
			return fmt.Sprintf("%s_%d_%d", name, frame.lvl, frame.visit)
		}
		lvl, visit := r.scope.lvl, r.scope.visit
		return fmt.Sprintf("%s_%d_%d", name, lvl, visit)

	default:
		lvl, visit := r.scope.lvl, r.scope.visit
		r.known[name] = true
		r.push(name, declFrame{visLvl: lvl, lvl: lvl, visit: visit})
		return fmt.Sprintf("%s_%d_%d", name, lvl, visit)
	}
}

// push records a new declaration site for name, most-recent last.
func (r *renamer) push(name string, f declFrame) {
	r.decls[name] = append(r.decls[name], f)
}

// resolve returns name's innermost still-visible declaration: frames whose
// visLvl sits deeper than the current block depth belong to a block that
// has since closed and are discarded, last to first, before reading the new
// top of the stack. A formal parameter's frame (visLvl 0) is never
// discarded this way, so it remains the fallback once every closer local
// shadow has gone out of scope.
func (r *renamer) resolve(name string) (declFrame, bool) {
	frames := r.decls[name]
	for len(frames) > 0 && frames[len(frames)-1].visLvl > r.scope.lvl {
		frames = frames[:len(frames)-1]
	}
	r.decls[name] = frames
	if len(frames) == 0 {
		return declFrame{}, false
	}
	return frames[len(frames)-1], true
}

func sameNode(a, b *tsnode.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

// isCalleeIdentifier reports whether ident is the "function" field of a
// call_expression — callee identifiers and function-declaration headers are
// never renamed.
func isCalleeIdentifier(ident *tsnode.Node) bool {
	parent := ident.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "call_expression":
		return sameNode(parent.ChildByFieldName("function"), ident)
	case "function_declaration":
		return sameNode(parent.ChildByFieldName("name"), ident)
	default:
		return false
	}
}
