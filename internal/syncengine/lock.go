package syncengine

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock is an advisory exclusive lock on a single mapping's lock file,
// preventing two concurrent sync runs against the same (machine, mapping)
// from racing.
type Lock struct {
	f *os.File
}

// AcquireLock opens (creating if necessary) the lock file at path and takes
// a non-blocking exclusive flock on it. If another process already holds
// the lock, it returns ErrLockHeld immediately rather than waiting.
func AcquireLock(path string) (*Lock, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, &EnvironmentError{Op: "lock", Path: path, Err: err}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, filePermissions)
	if err != nil {
		return nil, &EnvironmentError{Op: "lock", Path: path, Err: err}
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()

		return nil, &EnvironmentError{Op: "lock", Path: path, Err: ErrLockHeld}
	}

	if err := f.Truncate(0); err != nil {
		f.Close()

		return nil, &EnvironmentError{Op: "lock", Path: path, Err: err}
	}

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		f.Close()

		return nil, &EnvironmentError{Op: "lock", Path: path, Err: err}
	}

	return &Lock{f: f}, nil
}

// Release releases the flock and closes the underlying file. The lock file
// itself is left in place; its presence is harmless and its content is only
// ever read for diagnostics.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}

	err := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	closeErr := l.f.Close()

	if err != nil {
		return err
	}

	return closeErr
}
