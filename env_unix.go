//go:build !windows
// +build !windows

package notleveldb

import (
	"os"

	"github.com/elliotcourant/notleveldb/z"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive flock on the file without blocking.
func lockFile(file *os.File) error {
	return z.Wrap(unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB))
}

func unlockFile(file *os.File) error {
	return z.Wrap(unix.Flock(int(file.Fd()), unix.LOCK_UN))
}

// When you create or delete a file, you have to ensure the directory entry for the file is synced
// in order to guarantee the file is visible (if the system crashes). (See the man page for fsync,
// or see https://github.com/coreos/etcd/issues/6368 for an example.)
func syncDir(dir string) error {
	f, err := z.OpenExistingFile(dir, z.ReadOnly)
	if err != nil {
		return errors.Wrapf(err, "While opening directory: %s.", dir)
	}
	err = z.FileSync(f)
	closeErr := f.Close()
	if err != nil {
		return errors.Wrapf(err, "While syncing directory: %s.", dir)
	}
	return errors.Wrapf(closeErr, "While closing directory: %s.", dir)
}
