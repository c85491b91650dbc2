package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "neptune.db")

	db, err := InitDB(path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for _, table := range []string{"users", "sessions", "session_messages"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// A second run finds nothing to do.
	assert.NoError(t, Migrate(db))
}

func TestInitDB_NotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neptune.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not an sqlite file, just plain text padding it out"), 0o600))

	db, err := InitDB(path)
	assert.Error(t, err)
	assert.Nil(t, db)
}
