// Package predicate implements the WHERE-clause grammar from spec.md
// §4.4: a small infix expression language of id/username/email
// comparisons joined by AND/OR, parsed into an AST and evaluated against
// a row.
package predicate

import "errors"

var (
	// ErrParse covers malformed expressions, unknown columns, and
	// unknown operators.
	ErrParse = errors.New("predicate: parse error")

	// ErrType is returned when id is compared to a non-integer literal.
	ErrType = errors.New("predicate: type error")
)
