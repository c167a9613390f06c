package kind

// Operator is a binary operator recognized by the kind algebra.
type Operator string

const (
	Eq   Operator = "=="
	Neq  Operator = "!="
	Seq  Operator = "==="
	Sneq Operator = "!=="
	Gt   Operator = ">"
	Ge   Operator = ">="
	Lt   Operator = "<"
	Le   Operator = "<="

	Add Operator = "+"
	Sub Operator = "-"
	Mul Operator = "*"
	Div Operator = "/"
)

// String renders the operator's textual form, e.g. for violation reports.
func (op Operator) String() string {
	return string(op)
}

// ViolationTag classifies why an operator application was flagged.
type ViolationTag string

const (
	// CmpViolation is a loose equality/relational operator applied to two
	// different, non-Unknown kinds.
	CmpViolation ViolationTag = "cmp"
	// ArithViolation is +, -, *, / applied to operand kinds outside the
	// sanctioned pairs.
	ArithViolation ViolationTag = "arithmetic"
)

var comparisonFamily = map[Operator]bool{
	Eq: true, Neq: true, Gt: true, Ge: true, Lt: true, Le: true,
}

var strictFamily = map[Operator]bool{
	Seq: true, Sneq: true,
}

// Execute applies op to the (lhs, rhs) kind pair and returns the result kind
// plus an optional violation tag. It is total over Kind x Kind and never
// panics, and deterministic: the result depends only on (op, a, b).
func Execute(op Operator, a, b Kind) (Kind, *ViolationTag) {
	switch {
	case strictFamily[op]:
		return Bool, nil
	case comparisonFamily[op]:
		if a != Unknown && b != Unknown && a != b {
			tag := CmpViolation
			return Bool, &tag
		}
		return Bool, nil
	case op == Add:
		return executeAdd(a, b)
	case op == Sub, op == Mul, op == Div:
		return executeSubMulDiv(a, b)
	default:
		return Unknown, nil
	}
}

func executeAdd(a, b Kind) (Kind, *ViolationTag) {
	switch {
	case a == Unknown || b == Unknown:
		return Unknown, nil
	case a == String || b == String:
		return String, nil
	case a == BigInt && b == BigInt:
		return BigInt, nil
	case (a == BigInt && b == Object) || (a == Object && b == BigInt):
		// String-coercion fallback: a legal (if surprising) path, not flagged.
		return String, nil
	case a == BigInt || b == BigInt:
		// BigInt paired with anything but BigInt/Object: kept as BigInt by
		// fiat so the analysis can keep making forward progress.
		return BigInt, violationTagged()
	case a == Symbol || b == Symbol:
		return Unknown, violationTagged()
	case a == Object || b == Object:
		// Flagged, but a concrete kind is returned so analysis continues.
		return String, violationTagged()
	default:
		return Number, violationUnless(a == Number && b == Number)
	}
}

func executeSubMulDiv(a, b Kind) (Kind, *ViolationTag) {
	if a == Unknown || b == Unknown {
		return Unknown, nil
	}
	if a == BigInt && b == BigInt {
		return BigInt, nil
	}
	if a == Symbol || b == Symbol || a == BigInt || b == BigInt {
		return Unknown, violationTagged()
	}
	if a == Object || b == Object {
		// A real type error in SL; the algebra returns a concrete kind so
		// that analysis can continue past it.
		return String, violationTagged()
	}
	return Number, violationUnless(a == Number && b == Number)
}

func violationTagged() *ViolationTag {
	tag := ArithViolation
	return &tag
}

func violationUnless(ok bool) *ViolationTag {
	if ok {
		return nil
	}
	return violationTagged()
}
