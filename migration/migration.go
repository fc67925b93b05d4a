package migration

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidMigrationName = errors.New("invalid migration name")
var ErrInvalidVersionFormat = errors.New("invalid version format")

const (
	Separator = "_"
	Extension = ".sql"

	SequenceFormat  VersionFormat = "sequence"
	TimestampFormat VersionFormat = "timestamp"

	MinSequenceWidth = 3
	timestampLayout  = "20060102150405"
)

type (
	VersionFormat string

	ClockFunc func() time.Time

	// Migration is a single forward-only unit of schema or data changes.
	// Version is the filename segment before the first separator and is
	// compared lexically, so authors zero-pad it.
	Migration struct {
		Key      string
		Filename string
		Version  string
		Name     string
		Body     string
	}

	// Applied is a ledger entry for a migration version that was committed.
	Applied struct {
		Version   string
		Name      string
		AppliedAt time.Time
	}

	Factory func() (*Migration, error)
)

// ParseFilename splits a migration filename such as 001_initial_schema.sql
// into its version token and name. The name is empty when the filename
// carries no separator.
func ParseFilename(filename string) (version string, name string, err error) {
	if !strings.HasSuffix(filename, Extension) {
		return "", "", errors.Wrapf(ErrInvalidMigrationName, "[%s] is not an %s file", filename, Extension)
	}

	key := strings.TrimSuffix(filename, Extension)
	version, name, _ = strings.Cut(key, Separator)
	if version == "" {
		return "", "", errors.Wrapf(ErrInvalidMigrationName, "[%s] has no version token", filename)
	}

	return version, name, nil
}

func NewMigrationFromFile(filename, body string) Factory {
	return func() (*Migration, error) {
		version, name, err := ParseFilename(filename)
		if err != nil {
			return nil, err
		}

		return &Migration{
			Key:      strings.TrimSuffix(filename, Extension),
			Filename: filename,
			Version:  version,
			Name:     name,
			Body:     body,
		}, nil
	}
}

// ValidateName rejects names that would place the migration file outside
// its folder.
func ValidateName(name string) error {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.Wrapf(ErrInvalidMigrationName, "[%s] must not contain path separators", name)
	}

	return nil
}

// New creates a migration from in-memory statements. The statements are
// joined into one body terminated by semicolons.
func New(version, name string, statements ...string) Factory {
	return func() (*Migration, error) {
		if version == "" || strings.ContainsAny(version, Separator+`/\`) {
			return nil, errors.Wrapf(ErrInvalidVersionFormat, "[%s]", version)
		}

		if err := ValidateName(name); err != nil {
			return nil, err
		}

		key := CreateKeyFromVersionAndName(version, name)

		return &Migration{
			Key:      key,
			Filename: key + Extension,
			Version:  version,
			Name:     strings.TrimPrefix(key, version+Separator),
			Body:     joinStatements(statements),
		}, nil
	}
}

func joinStatements(statements []string) string {
	var body bytes.Buffer

	for i := range statements {
		body.WriteString(statements[i])

		if !strings.HasSuffix(strings.TrimSpace(statements[i]), ";") {
			body.WriteString(";")
		}

		if i < len(statements)-1 {
			body.WriteString("\n")
		}
	}

	return body.String()
}

// IsBlank reports whether the body holds nothing but whitespace.
func (m *Migration) IsBlank() bool {
	return strings.TrimSpace(m.Body) == ""
}

type Migrations []*Migration

func NewMigrations(factories ...Factory) (Migrations, error) {
	migrations := make(Migrations, len(factories))

	for i := range factories {
		m, err := factories[i]()
		if err != nil {
			return nil, err
		}

		migrations[i] = m
	}

	return migrations, nil
}

func (m Migrations) Keys() []string {
	result := make([]string, 0, len(m))
	for i := range m {
		result = append(result, m[i].Key)
	}
	return result
}

func (m Migrations) Versions() []string {
	result := make([]string, 0, len(m))
	for i := range m {
		result = append(result, m[i].Version)
	}
	return result
}

func (m Migrations) Len() int {
	return len(m)
}

// Less orders by filename, which is the authoritative ordering of units.
func (m Migrations) Less(i, j int) bool {
	return m[i].Filename < m[j].Filename
}

func (m Migrations) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func CreateKeyFromVersionAndName(version, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return version
	}

	var result bytes.Buffer
	result.WriteString(version)
	result.WriteString(Separator)
	result.WriteString(strings.ReplaceAll(strings.ToLower(name), " ", "_"))
	return result.String()
}

// NextVersion generates the version token for a new migration. Sequence
// versions continue after the highest numeric version and keep the widest
// existing padding.
func NextVersion(cf ClockFunc, vf VersionFormat, existing []string) (string, error) {
	switch vf {
	case TimestampFormat:
		return cf().UTC().Format(timestampLayout), nil
	case SequenceFormat, "":
		width := MinSequenceWidth
		var highest uint64

		for _, v := range existing {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				continue
			}

			if n > highest {
				highest = n
			}

			if len(v) > width {
				width = len(v)
			}
		}

		return fmt.Sprintf("%0*d", width, highest+1), nil
	default:
		return "", errors.Wrapf(ErrInvalidVersionFormat, "unknown version format [%s]", vf)
	}
}

func InVersions(version string, applied []Applied) bool {
	for i := range applied {
		if applied[i].Version == version {
			return true
		}
	}

	return false
}
