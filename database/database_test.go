package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigrates(t *testing.T) {
	db, err := Open("file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer db.Close()

	version, dirty, err := Version(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)

	for _, table := range []string{"user", "token", "document"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestIsMemory(t *testing.T) {
	assert.True(t, isMemory(":memory:"))
	assert.True(t, isMemory("file:x?mode=memory&cache=shared"))
	assert.False(t, isMemory("qform.sqlite"))
}
