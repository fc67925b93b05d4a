package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/denismitr/storekeeper/internal/logger"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func Test_LocalFileSourceSelect(t *testing.T) {
	t.Run("units are ordered by filename and non sql entries are ignored", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "010_add_orders.sql", "CREATE TABLE orders (id INTEGER);")
		writeFile(t, dir, "002_add_products.sql", "CREATE TABLE products (id INTEGER);")
		writeFile(t, dir, "001_initial_schema.sql", "CREATE TABLE users (id INTEGER);")
		writeFile(t, dir, "README.md", "# migrations")
		require.NoError(t, os.Mkdir(filepath.Join(dir, "999_folder.sql"), 0755))

		src := NewLocalFileSource(dir, logger.NullLogger{})
		assert.True(t, src.IsValid())

		migrations, err := src.Select(context.Background())
		require.NoError(t, err)
		require.Len(t, migrations, 3)

		assert.Equal(t, []string{"001", "002", "010"}, migrations.Versions())
		assert.Equal(t, "001_initial_schema.sql", migrations[0].Filename)
		assert.Equal(t, "initial_schema", migrations[0].Name)
		assert.Equal(t, "CREATE TABLE users (id INTEGER);", migrations[0].Body)
	})

	t.Run("empty folder yields no units and no error", func(t *testing.T) {
		src := NewLocalFileSource(t.TempDir(), logger.NullLogger{})

		migrations, err := src.Select(context.Background())
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("missing folder is a discovery error", func(t *testing.T) {
		src := NewLocalFileSource(filepath.Join(t.TempDir(), "nope"), logger.NullLogger{})
		assert.False(t, src.IsValid())

		_, err := src.Select(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDiscovery))
	})

	t.Run("duplicate versions are rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "001_initial_schema.sql", "SELECT 1;")
		writeFile(t, dir, "001_other.sql", "SELECT 2;")

		_, err := NewLocalFileSource(dir, logger.NullLogger{}).Select(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateVersion))
	})

	t.Run("a file without a version token is a discovery error", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "_nameless.sql", "SELECT 1;")

		_, err := NewLocalFileSource(dir, logger.NullLogger{}).Select(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDiscovery))
	})
}

func Test_FSSourceReadsEmbeddedStyleTrees(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_seed.sql":    {Data: []byte("INSERT INTO users (id) VALUES (1);")},
		"migrations/001_users.sql":   {Data: []byte("CREATE TABLE users (id INTEGER);")},
		"migrations/notes.txt":       {Data: []byte("ignored")},
		"other/003_not_included.sql": {Data: []byte("SELECT 1;")},
	}

	migrations, err := NewFSSource(fsys, "migrations", nil).Select(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"001_users", "002_seed"}, migrations.Keys())
	assert.Equal(t, "INSERT INTO users (id) VALUES (1);", migrations[1].Body)
}

func Test_LocalFileSourceCreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "database", "migrations")
	src := NewLocalFileSource(dir, logger.NullLogger{})

	m, err := src.Create("004", "add suppliers")
	require.NoError(t, err)

	assert.Equal(t, "004_add_suppliers", m.Key)
	assert.Equal(t, "004", m.Version)
	assert.True(t, src.AlreadyExists("004", "add suppliers"))

	contents, err := os.ReadFile(filepath.Join(dir, "004_add_suppliers.sql"))
	require.NoError(t, err)
	assert.Empty(t, contents)

	_, err = src.Create("004", "add suppliers")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMigrationAlreadyExists))
}

func Test_InMemorySource(t *testing.T) {
	src, err := NewInMemorySource(
		migration.New("002", "products", "CREATE TABLE products (id INTEGER)"),
		migration.New("001", "users", "CREATE TABLE users (id INTEGER)"),
	)
	require.NoError(t, err)

	migrations, err := src.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, migrations.Versions())

	dup, err := NewInMemorySource(
		migration.New("001", "users", "SELECT 1"),
		migration.New("001", "again", "SELECT 2"),
	)
	require.NoError(t, err)

	_, err = dup.Select(context.Background())
	assert.True(t, errors.Is(err, ErrDuplicateVersion))
}
