package migration

import (
	"sort"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_FilenameCanBeParsedIntoVersionAndName(t *testing.T) {
	tt := []struct {
		filename string
		version  string
		name     string
		err      error
	}{
		{filename: "001_initial_schema.sql", version: "001", name: "initial_schema"},
		{filename: "010_add_products.sql", version: "010", name: "add_products"},
		{filename: "20240101120000_seed_data_v2.sql", version: "20240101120000", name: "seed_data_v2"},
		{filename: "003.sql", version: "003", name: ""},
		{filename: "_orphan.sql", err: ErrInvalidMigrationName},
		{filename: "001_initial_schema.txt", err: ErrInvalidMigrationName},
	}

	for _, tc := range tt {
		t.Run(tc.filename, func(t *testing.T) {
			version, name, err := ParseFilename(tc.filename)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.version, version)
			assert.Equal(t, tc.name, name)
		})
	}
}

func Test_MigrationsAreSortedByFilenameLexically(t *testing.T) {
	migrations, err := NewMigrations(
		NewMigrationFromFile("010_add_orders.sql", "CREATE TABLE orders (id INTEGER);"),
		NewMigrationFromFile("001_initial_schema.sql", "CREATE TABLE users (id INTEGER);"),
		NewMigrationFromFile("002_add_products.sql", "CREATE TABLE products (id INTEGER);"),
	)
	require.NoError(t, err)

	sort.Sort(migrations)

	assert.Equal(t, []string{"001", "002", "010"}, migrations.Versions())
	assert.Equal(t, []string{"001_initial_schema", "002_add_products", "010_add_orders"}, migrations.Keys())
}

func Test_InMemoryMigrationJoinsStatements(t *testing.T) {
	m, err := New("002", "Add Products", "CREATE TABLE products (id INTEGER)", "INSERT INTO products (id) VALUES (1);")()
	require.NoError(t, err)

	assert.Equal(t, "002_add_products", m.Key)
	assert.Equal(t, "002_add_products.sql", m.Filename)
	assert.Equal(t, "add_products", m.Name)
	assert.Equal(t, "CREATE TABLE products (id INTEGER);\nINSERT INTO products (id) VALUES (1);", m.Body)
	assert.False(t, m.IsBlank())

	_, err = New("00_2", "bad", "SELECT 1")()
	assert.True(t, errors.Is(err, ErrInvalidVersionFormat))
}

func Test_NamesCannotEscapeTheMigrationsFolder(t *testing.T) {
	for _, name := range []string{"../x", "a/b", `a\b`, "..", "nested/../../etc"} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, errors.Is(ValidateName(name), ErrInvalidMigrationName))

			_, err := New("003", name)()
			assert.True(t, errors.Is(err, ErrInvalidMigrationName))
		})
	}

	assert.NoError(t, ValidateName("add suppliers"))
}

func Test_NextVersion(t *testing.T) {
	clock := func() time.Time {
		return time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	}

	t.Run("first sequence version", func(t *testing.T) {
		v, err := NextVersion(clock, SequenceFormat, nil)
		require.NoError(t, err)
		assert.Equal(t, "001", v)
	})

	t.Run("sequence continues after highest and keeps width", func(t *testing.T) {
		v, err := NextVersion(clock, SequenceFormat, []string{"0001", "0009", "0003"})
		require.NoError(t, err)
		assert.Equal(t, "0010", v)
	})

	t.Run("non numeric versions are ignored", func(t *testing.T) {
		v, err := NextVersion(clock, SequenceFormat, []string{"abc", "002"})
		require.NoError(t, err)
		assert.Equal(t, "003", v)
	})

	t.Run("timestamp format", func(t *testing.T) {
		v, err := NextVersion(clock, TimestampFormat, []string{"001"})
		require.NoError(t, err)
		assert.Equal(t, "20240305140709", v)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := NextVersion(clock, VersionFormat("semver"), nil)
		assert.True(t, errors.Is(err, ErrInvalidVersionFormat))
	})
}

func Test_InVersions(t *testing.T) {
	applied := []Applied{{Version: "001"}, {Version: "003"}}

	assert.True(t, InVersions("001", applied))
	assert.False(t, InVersions("002", applied))
	assert.True(t, InVersions("003", applied))
}
