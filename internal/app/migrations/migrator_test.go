package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "001", Version("001_schools.sql"))
	assert.Equal(t, "010", Version("migrations/010_add_index_on_x.sql"))
	assert.Equal(t, "init.sql", Version("init.sql"))
}

func TestPendingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "notes.txt", "010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	files, err := PendingFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
		filepath.Join(dir, "010_c.sql"),
	}, files)
}

func TestPendingFilesMissingDir(t *testing.T) {
	_, err := PendingFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsAreOrdered(t *testing.T) {
	files, err := PendingFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	seen := map[string]bool{}
	for _, f := range files {
		v := Version(f)
		assert.False(t, seen[v], "duplicate migration version %s", v)
		seen[v] = true
	}
}
