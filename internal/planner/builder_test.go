package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/predicate"
)

func parseExpr(t *testing.T, s string) predicate.Expr {
	t.Helper()
	e, err := predicate.Parse(s)
	require.NoError(t, err)
	return e
}

func TestBuild_NilExprIsFullScan(t *testing.T) {
	plan := Build(nil, Stats{})
	assert.Equal(t, FullScan, plan.Kind)
}

func TestBuild_TopLevelEqualityIsPointLookup(t *testing.T) {
	plan := Build(parseExpr(t, "id = 7"), Stats{})
	require.Equal(t, PointLookup, plan.Kind)
	assert.Equal(t, uint32(7), plan.PointKey)
}

func TestBuild_RangeBoundsFromGTAndLT(t *testing.T) {
	plan := Build(parseExpr(t, "id > 2 AND id < 8"), Stats{})
	require.Equal(t, RangeScan, plan.Kind)
	assert.True(t, plan.HasLo)
	assert.Equal(t, uint32(3), plan.Lo)
	assert.True(t, plan.HasHi)
	assert.Equal(t, uint32(7), plan.Hi)
}

func TestBuild_SingleSidedRange(t *testing.T) {
	plan := Build(parseExpr(t, "id >= 10"), Stats{})
	require.Equal(t, RangeScan, plan.Kind)
	assert.True(t, plan.HasLo)
	assert.Equal(t, uint32(10), plan.Lo)
	assert.False(t, plan.HasHi)
}

func TestBuild_TopLevelORFallsBackToFullScan(t *testing.T) {
	plan := Build(parseExpr(t, "id = 1 OR id = 2"), Stats{})
	assert.Equal(t, FullScan, plan.Kind)
}

func TestBuild_NonIDPredicateIsFullScan(t *testing.T) {
	plan := Build(parseExpr(t, "username = bob"), Stats{})
	assert.Equal(t, FullScan, plan.Kind)
}

func TestBuild_StatsNeverNarrowARequestedRange(t *testing.T) {
	stats := Stats{HasMinID: true, MinID: 5, HasMaxID: true, MaxID: 50}

	// Requested range wider than known bounds: stats must not clamp it
	// inward, since an invalidated bound can be stale rather than tight.
	plan := Build(parseExpr(t, "id > 0 AND id < 100"), stats)
	require.Equal(t, RangeScan, plan.Kind)
	assert.Equal(t, uint32(1), plan.Lo)
	assert.Equal(t, uint32(99), plan.Hi)

	// Requested range already tighter than known bounds: unaffected.
	plan = Build(parseExpr(t, "id > 10 AND id < 20"), stats)
	require.Equal(t, RangeScan, plan.Kind)
	assert.Equal(t, uint32(11), plan.Lo)
	assert.Equal(t, uint32(19), plan.Hi)
}

func TestBuild_StatsRejectRangeProvenEmpty(t *testing.T) {
	stats := Stats{HasMinID: true, MinID: 5, HasMaxID: true, MaxID: 50}

	// Entirely above the known max: no row can satisfy it.
	plan := Build(parseExpr(t, "id > 100"), stats)
	require.Equal(t, RangeScan, plan.Kind)
	assert.True(t, plan.HasLo)
	assert.True(t, plan.HasHi)
	assert.Greater(t, plan.Lo, plan.Hi)

	// Entirely below the known min: no row can satisfy it.
	plan = Build(parseExpr(t, "id < 1"), stats)
	require.Equal(t, RangeScan, plan.Kind)
	assert.True(t, plan.HasLo)
	assert.True(t, plan.HasHi)
	assert.Greater(t, plan.Lo, plan.Hi)
}

func TestBuild_NestedAndUnderOrIsUnsafeForExtraction(t *testing.T) {
	plan := Build(parseExpr(t, "(id = 1 AND username = a) OR id = 2"), Stats{})
	assert.Equal(t, FullScan, plan.Kind)
}
