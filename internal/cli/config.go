package cli

import (
	"os"
	"regexp"
	"time"

	"github.com/denismitr/storekeeper/internal/database"
	"github.com/denismitr/storekeeper/internal/source"
	"github.com/denismitr/storekeeper/migration"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultDatabasePath    = "./data/inventory.db"
	DefaultExportsFolder   = "./exports"
	DefaultConnectAttempts = 5
	DefaultConnectTimeout  = "10s"
)

var ErrInvalidConfig = errors.New("invalid storekeeper configuration")

var envPlaceholder = regexp.MustCompile(`%%([A-Za-z_][A-Za-z0-9_]*)%%`)

type (
	DatabaseConfig struct {
		URL             string `yaml:"url"`
		Path            string `yaml:"path"`
		MigrationsTable string `yaml:"migrations_table"`
		ConnectAttempts int    `yaml:"connect_attempts"`
		ConnectTimeout  string `yaml:"connect_timeout"`
	}

	MigrationsConfig struct {
		LocalFolder   string `yaml:"local_folder"`
		VersionFormat string `yaml:"version_format"`
	}

	PathsConfig struct {
		Backup  string `yaml:"backup"`
		Exports string `yaml:"exports"`
	}

	LogConfig struct {
		Color bool `yaml:"color"`
		SQL   bool `yaml:"sql"`
		Debug bool `yaml:"debug"`
	}

	Config struct {
		Version    string           `yaml:"version"`
		Database   DatabaseConfig   `yaml:"database"`
		Migrations MigrationsConfig `yaml:"migrations"`
		Paths      PathsConfig      `yaml:"paths"`
		Log        LogConfig        `yaml:"log"`
	}
)

func DefaultConfig() Config {
	return Config{
		Version: "1",
		Database: DatabaseConfig{
			Path:            DefaultDatabasePath,
			MigrationsTable: database.DefaultMigrationsTable,
			ConnectAttempts: DefaultConnectAttempts,
			ConnectTimeout:  DefaultConnectTimeout,
		},
		Migrations: MigrationsConfig{
			LocalFolder:   source.DefaultMigrationsFolder,
			VersionFormat: string(migration.SequenceFormat),
		},
		Paths: PathsConfig{
			Exports: DefaultExportsFolder,
		},
		Log: LogConfig{
			Color: true,
		},
	}
}

// LoadConfig reads a YAML configuration on top of the defaults. Any value
// may reference an environment variable as %%NAME%%.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read storekeeper configuration file")
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrap(err, "could not parse storekeeper configuration file")
	}

	cfg.Database.URL = substituteEnv(cfg.Database.URL)
	cfg.Database.Path = substituteEnv(cfg.Database.Path)
	cfg.Database.MigrationsTable = substituteEnv(cfg.Database.MigrationsTable)
	cfg.Database.ConnectTimeout = substituteEnv(cfg.Database.ConnectTimeout)
	cfg.Migrations.LocalFolder = substituteEnv(cfg.Migrations.LocalFolder)
	cfg.Migrations.VersionFormat = substituteEnv(cfg.Migrations.VersionFormat)
	cfg.Paths.Backup = substituteEnv(cfg.Paths.Backup)
	cfg.Paths.Exports = substituteEnv(cfg.Paths.Exports)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.Database.URL == "" && cfg.Database.Path == "" {
		return errors.Wrap(ErrInvalidConfig, "database url or path must be defined")
	}

	if cfg.Migrations.LocalFolder == "" {
		return errors.Wrap(ErrInvalidConfig, "migrations folder was not defined")
	}

	if _, err := cfg.versionFormat(); err != nil {
		return err
	}

	if cfg.Database.ConnectAttempts < 1 {
		return errors.Wrapf(ErrInvalidConfig, "connect attempts must be positive, got %d", cfg.Database.ConnectAttempts)
	}

	if _, err := cfg.connectTimeout(); err != nil {
		return err
	}

	return nil
}

func (cfg Config) versionFormat() (migration.VersionFormat, error) {
	switch vf := migration.VersionFormat(cfg.Migrations.VersionFormat); vf {
	case migration.SequenceFormat, migration.TimestampFormat:
		return vf, nil
	case "":
		return migration.SequenceFormat, nil
	default:
		return "", errors.Wrapf(ErrInvalidConfig, "unknown version format [%s]", vf)
	}
}

func (cfg Config) connectTimeout() (time.Duration, error) {
	if cfg.Database.ConnectTimeout == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(cfg.Database.ConnectTimeout)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "connect timeout [%s]: %s", cfg.Database.ConnectTimeout, err)
	}

	return d, nil
}

func substituteEnv(value string) string {
	return envPlaceholder.ReplaceAllStringFunc(value, func(m string) string {
		return os.Getenv(envPlaceholder.FindStringSubmatch(m)[1])
	})
}
