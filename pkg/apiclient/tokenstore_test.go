package apiclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStorePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	store := NewFileTokenStore(path)
	access, refresh := store.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)

	store.Set("acc1", "ref1")

	// A fresh store over the same file resumes the session.
	restarted := NewFileTokenStore(path)
	access, refresh = restarted.Tokens()
	assert.Equal(t, "acc1", access)
	assert.Equal(t, "ref1", refresh)
}

func TestFileTokenStoreClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")

	store := NewFileTokenStore(path)
	store.Set("acc1", "ref1")
	require.FileExists(t, path)

	store.Clear()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clear must remove the mirror file")

	access, refresh := store.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestFileTokenStoreIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store := NewFileTokenStore(path)
	access, refresh := store.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	store.Set("a", "r")

	access, refresh := store.Tokens()
	assert.Equal(t, "a", access)
	assert.Equal(t, "r", refresh)

	store.Clear()
	access, refresh = store.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}
