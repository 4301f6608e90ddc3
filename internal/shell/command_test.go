package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand_Insert(t *testing.T) {
	cmd, err := parseCommand("insert 1 alice alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, cmdInsert, cmd.kind)
	assert.Equal(t, uint32(1), cmd.id)
	assert.Equal(t, "alice", cmd.username)
	assert.Equal(t, "alice@example.com", cmd.email)
}

func TestParseCommand_InsertRejectsNegativeID(t *testing.T) {
	_, err := parseCommand("insert -1 alice alice@example.com")
	require.ErrorIs(t, err, ErrIDMustBePositive)
}

func TestParseCommand_InsertWrongArity(t *testing.T) {
	_, err := parseCommand("insert 1 alice")
	require.ErrorIs(t, err, ErrBadCommand)
}

func TestParseCommand_SelectAll(t *testing.T) {
	cmd, err := parseCommand("select")
	require.NoError(t, err)
	assert.Equal(t, cmdSelectAll, cmd.kind)
}

func TestParseCommand_SelectWhere(t *testing.T) {
	cmd, err := parseCommand("select where id = 5")
	require.NoError(t, err)
	assert.Equal(t, cmdSelectWhere, cmd.kind)
	assert.Equal(t, "id = 5", cmd.whereSrc)
}

func TestParseCommand_UpdateByID(t *testing.T) {
	cmd, err := parseCommand("update 1 bob bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, cmdUpdateByID, cmd.kind)
	assert.Equal(t, uint32(1), cmd.id)
}

func TestParseCommand_UpdateWhere(t *testing.T) {
	cmd, err := parseCommand("update bob bob@example.com where id > 5")
	require.NoError(t, err)
	assert.Equal(t, cmdUpdateWhere, cmd.kind)
	assert.Equal(t, "bob", cmd.username)
	assert.Equal(t, "bob@example.com", cmd.email)
	assert.Equal(t, "id > 5", cmd.whereSrc)
}

func TestParseCommand_DeleteByID(t *testing.T) {
	cmd, err := parseCommand("delete 3")
	require.NoError(t, err)
	assert.Equal(t, cmdDeleteByID, cmd.kind)
	assert.Equal(t, uint32(3), cmd.id)
}

func TestParseCommand_DeleteWhere(t *testing.T) {
	cmd, err := parseCommand("delete where id < 5")
	require.NoError(t, err)
	assert.Equal(t, cmdDeleteWhere, cmd.kind)
}

func TestParseCommand_MetaAndTxnCommands(t *testing.T) {
	for in, kind := range map[string]commandKind{
		".exit":      cmdExit,
		".analyze":   cmdAnalyze,
		".stats":     cmdStats,
		".btree":     cmdBtree,
		".constants": cmdConstants,
		"begin":      cmdBegin,
		"commit":     cmdCommit,
		"rollback":   cmdRollback,
	} {
		cmd, err := parseCommand(in)
		require.NoError(t, err, in)
		assert.Equal(t, kind, cmd.kind, in)
	}
}

func TestParseCommand_CaseInsensitiveKeyword(t *testing.T) {
	cmd, err := parseCommand("INSERT 1 alice alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, cmdInsert, cmd.kind)
}

func TestParseCommand_UnknownVerb(t *testing.T) {
	_, err := parseCommand("frobnicate everything")
	require.ErrorIs(t, err, ErrBadCommand)
}

func TestParseCommand_EmptyLine(t *testing.T) {
	_, err := parseCommand("   ")
	require.ErrorIs(t, err, ErrBadCommand)
}
