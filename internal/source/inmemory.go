package source

import (
	"context"

	"github.com/denismitr/storekeeper/migration"
)

type InMemorySource struct {
	migrations migration.Migrations
}

var _ Selector = (*InMemorySource)(nil)

func (c *InMemorySource) Select(ctx context.Context) (migration.Migrations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make(migration.Migrations, len(c.migrations))
	copy(result, c.migrations)

	return arrange(result)
}

func NewInMemorySource(factories ...migration.Factory) (*InMemorySource, error) {
	m, err := migration.NewMigrations(factories...)
	if err != nil {
		return nil, err
	}

	return &InMemorySource{
		migrations: m,
	}, nil
}
