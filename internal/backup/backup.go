package backup

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const suffixLayout = "20060102_150405"

var ErrSourceMissing = errors.New("source file does not exist")

// DefaultPath places the backup next to the database file.
func DefaultPath(dbPath string, now time.Time) string {
	return dbPath + ".backup_" + now.Format(suffixLayout)
}

// Copy copies src over dst byte for byte, keeping the permission bits and
// modification time of src. Missing parent folders of dst are created.
func Copy(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrapf(ErrSourceMissing, "[%s]", src)
		}
		return errors.Wrapf(err, "could not stat [%s]", src)
	}

	if info.IsDir() {
		return errors.Errorf("[%s] is a directory", src)
	}

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "could not create folder [%s]", dir)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "could not open [%s]", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "could not open [%s] for writing", dst)
	}

	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = errors.Wrapf(cErr, "could not close [%s]", dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "could not copy [%s] to [%s]", src, dst)
	}

	if err := out.Sync(); err != nil {
		return errors.Wrapf(err, "could not flush [%s]", dst)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "could not set mode of [%s]", dst)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, "could not set times of [%s]", dst)
	}

	return nil
}
