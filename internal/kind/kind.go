// Package kind implements the abstract-value domain used by the kind
// inference engine: a small, closed lattice of value kinds plus a total
// per-operator algebra over pairs of kinds.
package kind

// Kind is an abstract value domain element — not a runtime type tag, an
// analysis-time label standing in for every concrete value of that shape.
type Kind string

const (
	// Unknown is the top kind: joining it with any kind yields Unknown. It
	// absorbs in arithmetic and suppresses
	// both arithmetic and comparison violations: a deliberate
	// precision-vs-noise tradeoff, never "helpfully" warned on.
	Unknown   Kind = "unknown"
	Bool      Kind = "bool"
	Null      Kind = "null"
	Undefined Kind = "undefined"
	Number    Kind = "number"
	BigInt    Kind = "bigint"
	String    Kind = "string"
	Symbol    Kind = "symbol"
	Object    Kind = "object"
)

// String renders the kind's name, e.g. for violation reports.
func (k Kind) String() string {
	return string(k)
}

// Join combines two kind hypotheses for the same variable. The kind
// environment only ever needs same/different, not a richer lattice meet:
// identical kinds collapse, anything else degrades to Unknown.
func Join(a, b Kind) Kind {
	if a == b {
		return a
	}
	return Unknown
}
