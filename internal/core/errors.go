package core

import (
	"errors"
	"strings"
)

// Kind is the closed set of failure categories the pipeline reports.
type Kind int

const (
	KindInternal Kind = iota
	// KindFormat: the stream is not parseable as the claimed structure.
	KindFormat
	// KindSchema: required columns are missing.
	KindSchema
	// KindRowValidation: one or more rows failed validation.
	KindRowValidation
	// KindNotFound: the referenced record does not exist for this user.
	KindNotFound
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format_error"
	case KindSchema:
		return "schema_error"
	case KindRowValidation:
		return "row_validation_error"
	case KindNotFound:
		return "not_found_error"
	case KindConflict:
		return "conflict_error"
	case KindUnauthorized:
		return "auth_error"
	default:
		return "internal_error"
	}
}

// Error is the typed error carried across package boundaries. Details holds
// per-row messages for batch failures.
type Error struct {
	Kind    Kind
	Msg     string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reasons reported by Validate.
var (
	ErrInvalidDate      = errors.New("invalid date format")
	ErrAmountNotNumeric = errors.New("amount must be numeric")
)

// FormatError reports a stream that could not be read at all.
func FormatError(msg string, err error) *Error {
	return &Error{Kind: KindFormat, Msg: msg, Err: err}
}

// SchemaError reports missing required columns.
func SchemaError(missing []string) *Error {
	return &Error{Kind: KindSchema, Msg: "missing required columns: " + strings.Join(missing, ", ")}
}

// NotFoundError reports a mutation against an absent record.
func NotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// ConflictError reports a unique resource that already exists.
func ConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// UnauthorizedError reports missing or rejected credentials.
func UnauthorizedError(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// BatchError wraps the row errors of a rejected import.
func BatchError(msg string, b BatchResult) *Error {
	return &Error{Kind: KindRowValidation, Msg: msg, Details: b.Details()}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
