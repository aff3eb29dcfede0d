// Package herrors defines the typed error kinds shared across
// hashtree's core components.
package herrors

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the core emits. Every error
// the core returns wraps exactly one Kind so callers can discriminate with
// errors.Is instead of string-matching.
type Kind string

const (
	UnknownAlgorithm Kind = "unknown_algorithm"
	UnsupportedMode  Kind = "unsupported_mode"
	IoOpen           Kind = "io_open"
	IoRead           Kind = "io_read"
	IoWrite          Kind = "io_write"
	Truncated        Kind = "truncated"
	ParseLine        Kind = "parse_line"
	FormatMismatch   Kind = "format_mismatch"
	PatternSyntax    Kind = "pattern_syntax"
	NoMatches        Kind = "no_matches"
	DatabaseMissing  Kind = "database_missing"
)

// Error carries a Kind along with the path and operation it occurred
// under, so every error surfaced to a user or a --json errors[] entry
// carries the full {path, kind, message} triple.
type Error struct {
	Op    string
	Path  string
	Kind  Kind
	Err   error
	Line  int    // non-zero for ParseLine
	Extra string // short content snippet, used by ParseLine
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s: %s", e.Op, e.Path, e.Kind)
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d: %q)", msg, e.Line, e.Extra)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the same Kind, letting callers write
// errors.Is(err, herrors.New("", "", herrors.Truncated)) style checks, or
// more conveniently HasKind below.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// New builds an *Error for op/path/kind with no wrapped cause.
func New(op, path string, kind Kind) *Error {
	return &Error{Op: op, Path: path, Kind: kind}
}

// Wrap builds an *Error for op/path/kind wrapping a lower-level cause.
func Wrap(op, path string, kind Kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}

// WrapParseLine builds a ParseLine error carrying the offending line
// number and a short content snippet.
func WrapParseLine(op, path string, line int, snippet string, cause error) *Error {
	if len(snippet) > 80 {
		snippet = snippet[:80] + "..."
	}
	return &Error{Op: op, Path: path, Kind: ParseLine, Line: line, Extra: snippet, Err: cause}
}

// HasKind reports whether err (or something it wraps) is a *Error of kind.
func HasKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
