package planner

import "pagedb/internal/predicate"

// Stats is the subset of the statistics blob the planner consults. A
// zero Stats (no known bounds) never rejects a range — it just skips the
// trivially-empty-range short-circuit.
type Stats struct {
	HasMinID bool
	MinID    uint32
	HasMaxID bool
	MaxID    uint32
}

// Build chooses a Plan for expr. expr == nil means an unqualified scan
// ("select" with no WHERE), which is always a full scan.
func Build(expr predicate.Expr, stats Stats) Plan {
	if expr == nil {
		return Plan{Kind: FullScan, Full: nil}
	}

	atoms, ok := topLevelIDAtoms(expr)
	if !ok {
		return Plan{Kind: FullScan, Full: expr}
	}

	for _, a := range atoms {
		if a.Op == predicate.OpEQ {
			if key, isInt := intLiteral(a.Literal); isInt {
				return Plan{Kind: PointLookup, PointKey: key, Full: expr}
			}
		}
	}

	var lo, hi uint32
	var hasLo, hasHi bool
	for _, a := range atoms {
		key, isInt := intLiteral(a.Literal)
		if !isInt {
			continue
		}
		switch a.Op {
		case predicate.OpGT:
			b := key + 1
			if !hasLo || b > lo {
				lo, hasLo = b, true
			}
		case predicate.OpGE:
			if !hasLo || key > lo {
				lo, hasLo = key, true
			}
		case predicate.OpLT:
			b := key - 1
			if !hasHi || b < hi {
				hi, hasHi = b, true
			}
		case predicate.OpLE:
			if !hasHi || key < hi {
				hi, hasHi = key, true
			}
		}
	}

	if !hasLo && !hasHi {
		return Plan{Kind: FullScan, Full: expr}
	}

	// Stats can only ever prove a range empty, never safely narrow it:
	// OnInsert (stats.go) reseeds an invalidated MinID/MaxID from
	// whatever row happens to be inserted next, which can leave the
	// bound stale-high or stale-low relative to rows already present.
	// Clamping lo/hi to such a bound would silently drop real rows, so
	// the bound is used only to short-circuit the unsatisfiable case.
	if (stats.HasMaxID && hasLo && lo > stats.MaxID) || (stats.HasMinID && hasHi && hi < stats.MinID) {
		return Plan{Kind: RangeScan, Lo: 1, Hi: 0, HasLo: true, HasHi: true, Full: expr}
	}

	return Plan{Kind: RangeScan, Lo: lo, Hi: hi, HasLo: hasLo, HasHi: hasHi, Full: expr}
}

// topLevelIDAtoms extracts the id-column atoms conjunctively required for
// a match, per spec.md §4.5: safe only for a single atom, or a top-level
// AND whose direct operands are all plain atoms (no nested AND/OR).
func topLevelIDAtoms(expr predicate.Expr) ([]*predicate.Comparison, bool) {
	switch e := expr.(type) {
	case *predicate.Comparison:
		if e.Column == predicate.ColumnID {
			return []*predicate.Comparison{e}, true
		}
		return nil, true
	case *predicate.And:
		var atoms []*predicate.Comparison
		for _, op := range e.Operands {
			c, isAtom := op.(*predicate.Comparison)
			if !isAtom {
				return nil, false
			}
			if c.Column == predicate.ColumnID {
				atoms = append(atoms, c)
			}
		}
		return atoms, true
	default:
		// top-level OR (or anything else): extraction isn't safe.
		return nil, false
	}
}

func intLiteral(s string) (uint32, bool) {
	var v uint32
	neg := false
	i := 0
	if len(s) == 0 {
		return 0, false
	}
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		v = v*10 + uint32(s[i]-'0')
	}
	if neg {
		return 0, false // row ids are non-negative; a negative literal can never match
	}
	return v, true
}
