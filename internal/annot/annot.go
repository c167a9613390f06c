// Package annot implements the annotation parser (C4): it extracts the
// Loc/Non-branch/Parent-ID markers the debloater (C3) attaches to every
// emitted statement, and builds that same suffix during emission so C3 and
// C4 stay in lockstep on one wire format.
package annot

import (
	"strconv"
	"strings"

	"github.com/oxhq/typeinfer/internal/report"
)

const (
	// LocMarker prefixes the source-location field.
	LocMarker = "[Loc]"
	// NonBranchMarker is present iff no enclosing conditional existed in
	// the pre-debloat tree.
	NonBranchMarker = "[Non-branch]"
	// ParentIDMarker prefixes the syntactic parent node id.
	ParentIDMarker = "[Parent-ID]"
)

// Annotation is the parsed form of a debloated statement's trailing comment.
type Annotation struct {
	Loc        string
	NonBranch  bool
	ParentID   int
}

// Format renders loc/nonBranch/parentID into the exact annotation suffix the
// debloater appends to every emitted statement:
//
//	// [Loc] file:row:col[, [Non-branch]], [Parent-ID] <integer>,
//
// The trailing comma after Parent-ID is mandatory.
func Format(loc string, nonBranch bool, parentID int) string {
	var b strings.Builder
	b.WriteString("// ")
	b.WriteString(LocMarker)
	b.WriteByte(' ')
	b.WriteString(loc)
	if nonBranch {
		b.WriteString(", ")
		b.WriteString(NonBranchMarker)
	}
	b.WriteString(", ")
	b.WriteString(ParentIDMarker)
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(parentID))
	b.WriteByte(',')
	return b.String()
}

// Parse extracts loc, non-branch, and parent-id from a debloated statement's
// annotation text (the full line, or just the trailing comment — Parse
// searches for the markers rather than requiring an exact offset).
//
// Failure modes: a missing annotation yields report.ErrAnnotationMissing; a
// present-but-malformed Parent-ID integer yields report.ErrAnnotationParse.
func Parse(text string) (Annotation, error) {
	locIdx := strings.Index(text, LocMarker)
	parentIdx := strings.Index(text, ParentIDMarker)
	if locIdx < 0 || parentIdx < 0 {
		return Annotation{}, report.Wrap(report.ErrAnnotationMissing,
			"statement has no reachable annotation", nil)
	}

	locField := text[locIdx+len(LocMarker):]
	loc := strings.TrimSpace(firstField(locField))

	parentField := text[parentIdx+len(ParentIDMarker):]
	idText := strings.TrimSpace(firstField(parentField))
	idText = strings.TrimSuffix(idText, ",")
	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return Annotation{}, report.Wrap(report.ErrAnnotationParse,
			"malformed Parent-ID integer: "+idText, err)
	}

	return Annotation{
		Loc:       loc,
		NonBranch: strings.Contains(text, NonBranchMarker),
		ParentID:  id,
	}, nil
}

// firstField returns s up to (excluding) its first comma, or all of s if
// there is no comma.
func firstField(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[:i]
	}
	return s
}
