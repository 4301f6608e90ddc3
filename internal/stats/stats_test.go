package stats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/btree"
	"pagedb/internal/row"
	"pagedb/internal/storage"
)

func newHeaderAndTree(t *testing.T) (*storage.Header, *btree.Tree, *storage.Pager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	pager, err := storage.Open(path, 0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pager.Close() })
	return pager.Header(), btree.New(pager), pager
}

func TestRead_FreshHeaderHasNoBounds(t *testing.T) {
	h, _, _ := newHeaderAndTree(t)
	snap := Read(h)
	assert.False(t, snap.HasMinID)
	assert.False(t, snap.HasMaxID)
	assert.Zero(t, snap.RowCount)
}

func TestOnInsert_TracksRowCountAndBounds(t *testing.T) {
	h, _, _ := newHeaderAndTree(t)
	OnInsert(h, 5)
	OnInsert(h, 1)
	OnInsert(h, 9)

	snap := Read(h)
	assert.EqualValues(t, 3, snap.RowCount)
	require.True(t, snap.HasMinID)
	assert.Equal(t, uint32(1), snap.MinID)
	require.True(t, snap.HasMaxID)
	assert.Equal(t, uint32(9), snap.MaxID)
}

func TestOnDelete_InvalidatesExtremeBound(t *testing.T) {
	h, _, _ := newHeaderAndTree(t)
	OnInsert(h, 1)
	OnInsert(h, 5)
	OnInsert(h, 9)

	OnDelete(h, 9)
	snap := Read(h)
	assert.EqualValues(t, 2, snap.RowCount)
	assert.False(t, snap.HasMaxID, "deleting the max must invalidate it until ANALYZE/insert repairs it")
	assert.True(t, snap.HasMinID)
}

func TestOnDelete_RowCountNeverGoesNegative(t *testing.T) {
	h, _, _ := newHeaderAndTree(t)
	OnDelete(h, 1)
	assert.Zero(t, Read(h).RowCount)
}

func TestAnalyze_FullRecomputeFromTree(t *testing.T) {
	h, tree, _ := newHeaderAndTree(t)

	for i, id := range []uint32{3, 1, 2} {
		r, err := row.New(id, "user", "user@example.com")
		require.NoError(t, err)
		require.NoError(t, tree.Insert(id, r))
		_ = i
	}
	// Corrupt the incremental stats so ANALYZE must fix them from scratch.
	h.SetRowCount(0)
	h.SetMinID(storage.NoBound)

	require.NoError(t, Analyze(h, tree))
	snap := Read(h)
	assert.EqualValues(t, 3, snap.RowCount)
	require.True(t, snap.HasMinID)
	assert.Equal(t, uint32(1), snap.MinID)
	require.True(t, snap.HasMaxID)
	assert.Equal(t, uint32(3), snap.MaxID)
	assert.EqualValues(t, 1, snap.DistinctUsernameEst)
	assert.EqualValues(t, 1, snap.DistinctEmailEst)
	assert.NotZero(t, snap.LastAnalyzeEpoch)
}

func TestAnalyze_EmptyTreeResetsBounds(t *testing.T) {
	h, tree, _ := newHeaderAndTree(t)
	require.NoError(t, Analyze(h, tree))
	snap := Read(h)
	assert.Zero(t, snap.RowCount)
	assert.False(t, snap.HasMinID)
	assert.False(t, snap.HasMaxID)
}
