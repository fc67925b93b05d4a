package database

import (
	"testing"

	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleForMigration(t *testing.T) {
	migrations, err := migration.NewMigrations(
		migration.NewMigrationFromFile("001_initial_schema.sql", "CREATE TABLE users (id INTEGER);"),
		migration.NewMigrationFromFile("002_add_products.sql", "CREATE TABLE products (id INTEGER);"),
		migration.NewMigrationFromFile("010_add_orders.sql", "CREATE TABLE orders (id INTEGER);"),
	)
	require.NoError(t, err)

	t.Run("empty ledger schedules everything in order", func(t *testing.T) {
		scheduled := ScheduleForMigration(migrations, nil)
		assert.Equal(t, []string{"001", "002", "010"}, scheduled.Versions())
	})

	t.Run("applied prefix is skipped", func(t *testing.T) {
		scheduled := ScheduleForMigration(migrations, []migration.Applied{{Version: "001"}})
		assert.Equal(t, []string{"002", "010"}, scheduled.Versions())
	})

	t.Run("gaps in the ledger are filled", func(t *testing.T) {
		scheduled := ScheduleForMigration(migrations, []migration.Applied{{Version: "001"}, {Version: "010"}})
		assert.Equal(t, []string{"002"}, scheduled.Versions())
	})

	t.Run("nothing scheduled when everything is applied", func(t *testing.T) {
		scheduled := ScheduleForMigration(migrations, []migration.Applied{
			{Version: "010"}, {Version: "002"}, {Version: "001"},
		})
		assert.Empty(t, scheduled)
	})

	t.Run("ledger versions unknown to the source are ignored", func(t *testing.T) {
		scheduled := ScheduleForMigration(migrations, []migration.Applied{{Version: "000"}, {Version: "001"}})
		assert.Equal(t, []string{"002", "010"}, scheduled.Versions())
	})
}

func TestMigrationError(t *testing.T) {
	cause := errors.New("near \"CREAT\": syntax error")
	var err error = &MigrationError{Filename: "002_add_products.sql", Version: "002", Err: cause}

	wrapped := errors.Wrap(err, "migrate")

	assert.True(t, errors.Is(wrapped, ErrMigrationFailed))
	assert.True(t, errors.Is(wrapped, cause))

	var mErr *MigrationError
	require.True(t, errors.As(wrapped, &mErr))
	assert.Equal(t, "002_add_products.sql", mErr.Filename)
	assert.Contains(t, wrapped.Error(), "migration [002_add_products.sql] failed")
}

func TestConnectionError(t *testing.T) {
	cause := errors.New("unable to open database file")
	err := errors.Wrap(&ConnectionError{Err: cause}, "migrate")

	assert.True(t, errors.Is(err, ErrConnection))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrMigrationFailed))
}
