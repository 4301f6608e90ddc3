// Package planner chooses an access path for a WHERE-qualified scan, per
// spec.md §4.5: a point lookup when the predicate pins id to an exact
// value, a range scan when it bounds id without pinning it, or a full
// scan otherwise.
package planner

import "pagedb/internal/predicate"

// Kind identifies which access path a Plan drives.
type Kind int

const (
	PointLookup Kind = iota
	RangeScan
	FullScan
)

// Plan is the planner's decision: how to drive the cursor, plus the full
// predicate that must still be applied to every candidate row (the
// planner's bounds are necessary but not sufficient — e.g. a range scan
// for "id > 5" still needs the rest of an AND applied per row).
type Plan struct {
	Kind Kind

	// PointKey is valid when Kind == PointLookup.
	PointKey uint32

	// Lo/Hi bound a RangeScan; HasLo/HasHi report whether each bound is
	// present (an absent bound means "to the start"/"to the end").
	Lo, Hi       uint32
	HasLo, HasHi bool

	Full predicate.Expr
}
