package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/denismitr/storekeeper"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

type Action string

const (
	ActionCreate  Action = "create"
	ActionMigrate Action = "migrate"
	ActionBackup  Action = "backup"
	ActionRestore Action = "restore"
	ActionExport  Action = "export"
	ActionImport  Action = "import"
	ActionInfo    Action = "info"
	ActionNew     Action = "new"
)

var Actions = []Action{
	ActionCreate, ActionMigrate, ActionBackup, ActionRestore,
	ActionExport, ActionImport, ActionInfo, ActionNew,
}

var (
	ErrUnknownAction         = errors.New("unknown action")
	ErrBackupPathRequired    = errors.New("backup path is required for restore")
	ErrImportPathRequired    = errors.New("import path is required for import")
	ErrMigrationNameRequired = errors.New("migration name is required for new")
)

type (
	// ActionConfig carries the per run arguments of an action.
	ActionConfig struct {
		BackupPath string
		ExportPath string
		ImportPath string
		Name       string
	}

	App struct {
		keeper *storekeeper.Keeper
		out    io.Writer
	}
)

// ValidateAction checks the arguments an action needs. It never touches
// the database, so a bad invocation fails before any connection is made.
func ValidateAction(action Action, ac ActionConfig) error {
	switch action {
	case ActionRestore:
		if ac.BackupPath == "" {
			return ErrBackupPathRequired
		}
	case ActionImport:
		if ac.ImportPath == "" {
			return ErrImportPathRequired
		}
	case ActionNew:
		if ac.Name == "" {
			return ErrMigrationNameRequired
		}
	case ActionCreate, ActionMigrate, ActionBackup, ActionExport, ActionInfo:
	default:
		return errors.Wrapf(ErrUnknownAction, "[%s]", action)
	}

	return nil
}

// New builds an app for the configured database. Log lines and reports are
// written to out, stdout when nil.
func New(cfg Config, out io.Writer) (*App, storekeeper.CloserFunc, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if out == nil {
		out = os.Stdout
	}

	k, closer, err := createKeeper(cfg, log.New(out, "", 0))
	if err != nil {
		return nil, nil, err
	}

	return &App{keeper: k, out: out}, closer, nil
}

func (app *App) Run(ctx context.Context, action Action, ac ActionConfig) error {
	if err := ValidateAction(action, ac); err != nil {
		return err
	}

	switch action {
	case ActionCreate:
		return app.create(ctx)
	case ActionMigrate:
		_, err := app.keeper.Migrate(ctx)
		return err
	case ActionBackup:
		return app.backup(ctx, ac.BackupPath)
	case ActionRestore:
		return app.keeper.Restore(ctx, ac.BackupPath)
	case ActionExport:
		return app.export(ctx, ac.ExportPath)
	case ActionImport:
		return app.importData(ctx, ac.ImportPath)
	case ActionInfo:
		return app.info(ctx)
	case ActionNew:
		return app.newMigration(ctx, ac.Name)
	}

	return nil
}

// create brings the database up to date and reports on it. Having nothing
// to migrate is not a failure here.
func (app *App) create(ctx context.Context) error {
	if _, err := app.keeper.Migrate(ctx); err != nil && !storekeeper.IsSoft(err) {
		return err
	}

	return app.info(ctx)
}

func (app *App) backup(ctx context.Context, path string) error {
	dst, err := app.keeper.Backup(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "backup: %s\n", dst)
	return nil
}

func (app *App) export(ctx context.Context, path string) error {
	dst, err := app.keeper.Export(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "export: %s\n", dst)
	return nil
}

func (app *App) importData(ctx context.Context, path string) error {
	stats, err := app.keeper.Import(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		app.out,
		"import: %s rows into %d tables, %s rows skipped\n",
		humanize.Comma(int64(stats.Rows)), stats.Tables, humanize.Comma(int64(stats.Skipped)),
	)
	return nil
}

func (app *App) newMigration(ctx context.Context, name string) error {
	m, err := app.keeper.CreateMigration(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.out, "new migration: %s\n", m.Filename)
	return nil
}

func (app *App) info(ctx context.Context) error {
	info, err := app.keeper.Info(ctx)
	if err != nil {
		return err
	}

	return renderInfo(app.out, info)
}

func renderInfo(w io.Writer, info *storekeeper.Info) error {
	if info.Database != "" {
		fmt.Fprintf(w, "database: %s (%s)\n", info.Database, humanize.Bytes(uint64(info.Size)))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "tables: %d\n", len(info.Tables))
	for _, t := range info.Tables {
		fmt.Fprintf(tw, "  %s\t%s rows\n", t.Name, humanize.Comma(t.Rows))
	}

	fmt.Fprintf(tw, "applied migrations: %d\n", len(info.Applied))
	for _, a := range info.Applied {
		appliedAt := "-"
		if !a.AppliedAt.IsZero() {
			appliedAt = a.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", a.Version, a.Name, appliedAt)
	}

	return tw.Flush()
}
