package shell

import (
	"errors"
	"fmt"

	"pagedb/internal/btree"
	"pagedb/internal/predicate"
	"pagedb/internal/row"
	"pagedb/internal/txn"
)

// formatError renders err in spec.md §6's "Error: <message>." line
// format, using the exact wording SPEC_FULL.md §4.10 calls for on the two
// row-validation sentinels.
func formatError(err error) string {
	switch {
	case errors.Is(err, ErrIDMustBePositive):
		return "Error: ID must be positive."
	case errors.Is(err, row.ErrUsernameTooLong), errors.Is(err, row.ErrEmailTooLong):
		return "Error: String is too long."
	case errors.Is(err, btree.ErrDuplicateKey):
		return "Error: Duplicate key."
	case errors.Is(err, btree.ErrNotFound):
		return "Error: Not found."
	case errors.Is(err, predicate.ErrParse):
		return fmt.Sprintf("Error: %s.", err)
	case errors.Is(err, predicate.ErrType):
		return fmt.Sprintf("Error: %s.", err)
	case errors.Is(err, txn.ErrTransactionState), errors.Is(err, txn.ErrAlreadyOpen):
		return fmt.Sprintf("Error: %s.", err)
	case errors.Is(err, ErrBadCommand):
		return fmt.Sprintf("Error: %s.", err)
	default:
		return fmt.Sprintf("Error: %s.", err)
	}
}

// formatRow renders a row in the shell's print format: (id, username, email).
func formatRow(r row.Row) string {
	return r.String()
}
