package btree

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/row"
	"pagedb/internal/storage"
)

// smallPageTree opens a pager with a 4096-byte page, which holds 13 rows
// per leaf (row.Size is 291 bytes), so splits and merges happen after a
// modest number of inserts rather than needing many thousands of rows to
// exercise.
func smallPageTree(t *testing.T) (*Tree, *storage.Pager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	pager, err := storage.Open(path, 4096, 50)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pager.Close() })
	return New(pager), pager
}

func insertRow(t *testing.T, tr *Tree, id uint32) {
	t.Helper()
	r, err := row.New(id, "u", "e")
	require.NoError(t, err)
	require.NoError(t, tr.Insert(id, r))
}

// collectAll walks the tree start to end and returns every key in
// ascending order, to check P1 (sorted order) and P7 (no lost/duplicated
// keys) style invariants after a sequence of mutations.
func collectAll(t *testing.T, tr *Tree) []uint32 {
	t.Helper()
	cur, err := tr.SeekStart()
	require.NoError(t, err)
	var keys []uint32
	for !cur.End() {
		k, err := cur.Key()
		require.NoError(t, err)
		keys = append(keys, k)
		cur.Advance()
	}
	return keys
}

func assertSortedNoDup(t *testing.T, keys []uint32) {
	t.Helper()
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i], "keys must be strictly increasing")
	}
}

func TestInsertSearch_Basic(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 1)

	r, found, err := tr.Search(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint32(1), r.ID)

	_, found, err = tr.Search(2)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInsert_DuplicateKeyRejected(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 5)
	r, _ := row.New(5, "x", "y")
	err := tr.Insert(5, r)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsert_ForcesLeafSplit(t *testing.T) {
	tr, pager := smallPageTree(t)
	maxCells := LeafMaxCells(pager.PageSize())

	for i := uint32(0); i < uint32(maxCells)+5; i++ {
		insertRow(t, tr, i)
	}

	keys := collectAll(t, tr)
	assertSortedNoDup(t, keys)
	assert.Len(t, keys, maxCells+5)
}

func TestInsert_AscendingOrderForcesMultipleSplitsAndInternalGrowth(t *testing.T) {
	tr, _ := smallPageTree(t)
	const n = 200
	for i := uint32(0); i < n; i++ {
		insertRow(t, tr, i)
	}
	keys := collectAll(t, tr)
	assertSortedNoDup(t, keys)
	require.Len(t, keys, n)
	for i, k := range keys {
		assert.Equal(t, uint32(i), k)
	}
}

func TestInsert_RandomOrderStaysSorted(t *testing.T) {
	tr, _ := smallPageTree(t)
	order := []uint32{50, 10, 90, 30, 70, 20, 80, 40, 60, 0, 99, 1, 49, 51, 25, 75}
	for _, id := range order {
		insertRow(t, tr, id)
	}
	keys := collectAll(t, tr)
	assertSortedNoDup(t, keys)
	assert.Len(t, keys, len(order))
}

func TestUpdate_ReplacesRowInPlace(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 10)

	r, err := row.New(10, "newname", "new@example.com")
	require.NoError(t, err)
	require.NoError(t, tr.Update(10, r))

	got, found, err := tr.Search(10)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "newname", got.Username)
}

func TestUpdate_NotFound(t *testing.T) {
	tr, _ := smallPageTree(t)
	r, _ := row.New(1, "a", "b")
	err := tr.Update(1, r)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_SingleKeyOnRootLeaf(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 1)
	require.NoError(t, tr.Delete(1))

	_, found, err := tr.Search(1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDelete_NotFound(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 1)
	err := tr.Delete(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_TriggersMergeAcrossManyRows(t *testing.T) {
	tr, _ := smallPageTree(t)
	const n = 300
	for i := uint32(0); i < n; i++ {
		insertRow(t, tr, i)
	}

	// Delete every other row, forcing repeated leaf/internal underflow
	// repair (redistribute and merge) across most of the tree.
	for i := uint32(0); i < n; i += 2 {
		require.NoError(t, tr.Delete(i))
	}

	keys := collectAll(t, tr)
	assertSortedNoDup(t, keys)
	require.Len(t, keys, n/2)
	for _, k := range keys {
		assert.Equal(t, uint32(1), k%2)
	}
}

func TestDelete_AllRowsCollapsesToEmptyRoot(t *testing.T) {
	tr, pager := smallPageTree(t)
	const n = 150
	for i := uint32(0); i < n; i++ {
		insertRow(t, tr, i)
	}
	for i := uint32(0); i < n; i++ {
		require.NoError(t, tr.Delete(i))
	}

	keys := collectAll(t, tr)
	assert.Empty(t, keys)

	root, err := pager.Get(pager.Header().RootPageID())
	require.NoError(t, err)
	assert.True(t, getIsRoot(root))
	assert.Equal(t, NodeLeaf, getNodeType(root))
}

func TestDelete_ReverseOrderAlsoCollapses(t *testing.T) {
	tr, _ := smallPageTree(t)
	const n = 150
	for i := uint32(0); i < n; i++ {
		insertRow(t, tr, i)
	}
	for i := int(n) - 1; i >= 0; i-- {
		require.NoError(t, tr.Delete(uint32(i)))
	}
	assert.Empty(t, collectAll(t, tr))
}

func TestCursor_SeekFirstGEAndRangeBounds(t *testing.T) {
	tr, _ := smallPageTree(t)
	for _, id := range []uint32{1, 3, 5, 7, 9, 11} {
		insertRow(t, tr, id)
	}

	cur, err := tr.SeekFirstGE(6)
	require.NoError(t, err)
	require.False(t, cur.End())
	key, err := cur.Key()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), key)

	cur, err = tr.SeekFirstGE(100)
	require.NoError(t, err)
	assert.True(t, cur.End())
}

func TestCursor_SeekKeyMissing(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 1)
	cur, err := tr.SeekKey(2)
	require.NoError(t, err)
	assert.True(t, cur.End())
}

func TestDump_WritesIndentedTree(t *testing.T) {
	tr, _ := smallPageTree(t)
	insertRow(t, tr, 1)
	insertRow(t, tr, 2)

	var buf strings.Builder
	require.NoError(t, tr.Dump(&buf))
	out := buf.String()
	assert.Contains(t, out, "leaf (size 2)")
	assert.Contains(t, out, "- 1")
	assert.Contains(t, out, "- 2")
}

func TestComputeConstants_FieldsMatchDerivation(t *testing.T) {
	c := ComputeConstants(4096)
	assert.Equal(t, row.Size, c.RowSize)
	assert.Equal(t, CommonNodeHeaderSize, c.CommonNodeHeaderSize)
	assert.Equal(t, LeafNodeHeaderSize, c.LeafNodeHeaderSize)
	assert.Equal(t, LeafNodeCellSize, c.LeafNodeCellSize)
	assert.Equal(t, 4096-LeafNodeHeaderSize, c.LeafNodeSpaceForCells)
	assert.Equal(t, c.LeafNodeSpaceForCells/c.LeafNodeCellSize, c.LeafNodeMaxCells)
}
