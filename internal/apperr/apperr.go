// Package apperr defines the error kinds the reconciliation core reports,
// so callers can branch on kind instead of matching message text.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	ParseError         Kind = "parse_error"
	IneligibleRecord   Kind = "ineligible_record"
	DuplicateMatch     Kind = "duplicate_match"
	PersistenceFailure Kind = "persistence_failure"
)

// Error carries a kind plus the structured context that used to live in
// freeform message strings.
type Error struct {
	Kind  Kind
	Field string // offending field, when known
	Row   int    // 1-based data row number, 0 if not row-scoped
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("%s: row %d, field %q: %s", e.Kind, e.Row, e.Field, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on a bare-kind sentinel, e.g.
// errors.Is(err, &Error{Kind: DuplicateMatch}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
