package report

import "encoding/json"

// Error codes, one per §7 error kind. ParseError, AnnotationMissing,
// AnnotationParse, and IOError are fatal — they propagate as errors and the
// CLI exits non-zero. UnknownVariable, Unsupported, and TypeViolation are
// diagnostics: they are recorded and analysis continues.
const (
	ErrParse            = "ERR_PARSE"
	ErrAnnotationMissing = "ERR_ANNOTATION_MISSING"
	ErrAnnotationParse   = "ERR_ANNOTATION_PARSE"
	ErrUnknownVariable   = "ERR_UNKNOWN_VARIABLE"
	ErrUnsupported       = "ERR_UNSUPPORTED"
	ErrTypeViolation     = "ERR_TYPE_VIOLATION"
	ErrIO                = "ERR_IO"
)

// CLIError is a uniform error payload for both human and JSON output.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e CLIError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// JSON renders the error as a JSON payload, for --json CLI output.
func (e CLIError) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Wrap builds a CLIError with code and message, folding inner's message in
// as Detail when inner is non-nil.
func Wrap(code, msg string, inner error) error {
	e := CLIError{Code: code, Message: msg}
	if inner != nil {
		e.Detail = inner.Error()
	}
	return e
}
