package txn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagedb/internal/storage"
)

func newManager(t *testing.T) (*Manager, *storage.Pager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")
	pager, err := storage.Open(path, 0, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pager.Close() })
	return NewManager(pager), pager
}

func TestBegin_RejectsNestedBegin(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Begin())
	err := m.Begin()
	require.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestCommit_WithoutBeginIsTransactionStateError(t *testing.T) {
	m, _ := newManager(t)
	err := m.Commit()
	require.ErrorIs(t, err, ErrTransactionState)
}

func TestRollback_WithoutBeginIsTransactionStateError(t *testing.T) {
	m, _ := newManager(t)
	err := m.Rollback()
	require.ErrorIs(t, err, ErrTransactionState)
}

func TestCommit_ClosesTransactionState(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Begin())
	require.True(t, m.Open())
	require.NoError(t, m.Commit())
	assert.False(t, m.Open())
}

func TestRollback_UndoesPageMutations(t *testing.T) {
	m, pager := newManager(t)
	id, err := pager.Allocate()
	require.NoError(t, err)
	require.NoError(t, pager.Flush())

	require.NoError(t, m.Begin())
	pg, err := pager.GetMut(id)
	require.NoError(t, err)
	pg.Buf[0] = 9

	require.NoError(t, m.Rollback())
	assert.False(t, m.Open())

	restored, err := pager.Get(id)
	require.NoError(t, err)
	assert.Equal(t, byte(0), restored.Buf[0])
}

func TestRunAutoCommit_WrapsInImplicitTransaction(t *testing.T) {
	m, _ := newManager(t)
	ran := false
	err := m.RunAutoCommit(func() error {
		ran = true
		assert.True(t, m.Open())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, m.Open())
}

func TestRunAutoCommit_RollsBackOnError(t *testing.T) {
	m, pager := newManager(t)
	id, err := pager.Allocate()
	require.NoError(t, err)
	require.NoError(t, pager.Flush())

	sentinel := assert.AnError
	err = m.RunAutoCommit(func() error {
		pg, err := pager.GetMut(id)
		require.NoError(t, err)
		pg.Buf[0] = 77
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.False(t, m.Open())

	restored, err := pager.Get(id)
	require.NoError(t, err)
	assert.Equal(t, byte(0), restored.Buf[0])
}

func TestRunAutoCommit_InsideExplicitTransactionLeavesItOpenOnError(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Begin())

	err := m.RunAutoCommit(func() error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, m.Open())
	require.NoError(t, m.Rollback())
}
