package predicate

import (
	"fmt"
	"strconv"

	"pagedb/internal/row"
)

// Eval reports whether r satisfies expr.
func Eval(expr Expr, r row.Row) (bool, error) {
	switch e := expr.(type) {
	case *Or:
		for _, op := range e.Operands {
			ok, err := Eval(op, r)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case *And:
		for _, op := range e.Operands {
			ok, err := Eval(op, r)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case *Comparison:
		return evalComparison(e, r)
	}
	return false, fmt.Errorf("%w: unknown expression node", ErrParse)
}

func evalComparison(c *Comparison, r row.Row) (bool, error) {
	switch c.Column {
	case ColumnID:
		lit, err := strconv.ParseInt(c.Literal, 10, 64)
		if err != nil {
			return false, fmt.Errorf("%w: id compared to non-integer literal %q", ErrType, c.Literal)
		}
		return compareInt(int64(r.ID), lit, c.Op), nil
	case ColumnUsername:
		return compareStringOp(row.CompareStrings(r.Username, c.Literal), c.Op), nil
	case ColumnEmail:
		return compareStringOp(row.CompareStrings(r.Email, c.Literal), c.Op), nil
	}
	return false, fmt.Errorf("%w: unknown column", ErrParse)
}

func compareInt(a, b int64, op Op) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpGT:
		return a > b
	case OpLT:
		return a < b
	case OpGE:
		return a >= b
	case OpLE:
		return a <= b
	}
	return false
}

func compareStringOp(cmp int, op Op) bool {
	switch op {
	case OpEQ:
		return cmp == 0
	case OpNE:
		return cmp != 0
	case OpGT:
		return cmp > 0
	case OpLT:
		return cmp < 0
	case OpGE:
		return cmp >= 0
	case OpLE:
		return cmp <= 0
	}
	return false
}
