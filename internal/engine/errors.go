package engine

import (
	"errors"
	"fmt"

	"github.com/leengari/primdb/internal/domain/schema"
)

// Kind classifies engine failures. All kinds are recoverable.
type Kind string

const (
	KindAlreadyExists     Kind = "already_exists"
	KindNotFound          Kind = "not_found"
	KindMalformedColumn   Kind = "malformed_column"
	KindUnsupportedType   Kind = "unsupported_type"
	KindArityMismatch     Kind = "arity_mismatch"
	KindConversion        Kind = "conversion_error"
	KindNoMatchingRecords Kind = "no_matching_records"
	KindUserCancelled     Kind = "user_cancelled"
)

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrMalformedColumn   = &Error{Kind: KindMalformedColumn}
	ErrUnsupportedType   = &Error{Kind: KindUnsupportedType}
	ErrArityMismatch     = &Error{Kind: KindArityMismatch}
	ErrConversion        = &Error{Kind: KindConversion}
	ErrNoMatchingRecords = &Error{Kind: KindNoMatchingRecords}
	ErrUserCancelled     = &Error{Kind: KindUserCancelled}
)

// Error is a failure of a single engine operation.
type Error struct {
	Kind   Kind
	Table  string // table name (empty if not table-specific)
	Column string // column name or raw column spec
	Value  string // offending raw value
	Reason string // human-readable explanation (optional)
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAlreadyExists:
		return fmt.Sprintf("table %q already exists", e.Table)
	case KindNotFound:
		return fmt.Sprintf("table %q does not exist", e.Table)
	case KindMalformedColumn:
		if e.Reason != "" {
			return fmt.Sprintf("invalid column %q: %s", e.Column, e.Reason)
		}
		return fmt.Sprintf("invalid column %q: expected format \"name:type\"", e.Column)
	case KindUnsupportedType:
		return fmt.Sprintf("invalid data type %q for column %q; allowed: %s", e.Value, e.Column, schema.SupportedTypeNames())
	case KindArityMismatch:
		return fmt.Sprintf("table %q %s", e.Table, e.Reason)
	case KindConversion:
		return fmt.Sprintf("value %q is not a valid %s for column %q", e.Value, e.Reason, e.Column)
	case KindNoMatchingRecords:
		return fmt.Sprintf("no records in table %q match %s = %s", e.Table, e.Column, e.Value)
	case KindUserCancelled:
		return "operation cancelled"
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
}

// Is matches any *Error with the same Kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the Kind of an engine error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func alreadyExists(table string) *Error {
	return &Error{Kind: KindAlreadyExists, Table: table}
}

func notFound(table string) *Error {
	return &Error{Kind: KindNotFound, Table: table}
}

func malformedColumn(spec, reason string) *Error {
	return &Error{Kind: KindMalformedColumn, Column: spec, Reason: reason}
}

func unsupportedType(column, typ string) *Error {
	return &Error{Kind: KindUnsupportedType, Column: column, Value: typ}
}

func arityMismatch(table string, expected, got int) *Error {
	return &Error{
		Kind:   KindArityMismatch,
		Table:  table,
		Reason: fmt.Sprintf("expects %d values, got %d", expected, got),
	}
}

func conversionError(table string, col schema.Column, raw string) *Error {
	return &Error{Kind: KindConversion, Table: table, Column: col.Name, Value: raw, Reason: string(col.Type)}
}

func noMatchingRecords(table string, where Condition) *Error {
	return &Error{Kind: KindNoMatchingRecords, Table: table, Column: where.Column, Value: where.Value}
}

// Cancelled reports that the user declined the confirmation for action.
func Cancelled(action string) *Error {
	return &Error{Kind: KindUserCancelled, Reason: action}
}
