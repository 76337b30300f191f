//go:build windows
// +build windows

package notleveldb

import (
	"os"
)

// TODO (elliotcourant) Use LockFileEx here, for now only the in-process lock table in OSEnv guards the LOCK file on
//  windows.
func lockFile(file *os.File) error {
	return nil
}

func unlockFile(file *os.File) error {
	return nil
}

// Windows doesn't support syncing directories to the file system.
func syncDir(dir string) error {
	return nil
}
