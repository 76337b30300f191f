package notleveldb

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/elliotcourant/notleveldb/z"
	"github.com/elliotcourant/timber"
	"github.com/pkg/errors"
	"golang.org/x/net/trace"
)

var (
	defaultEnv     Env
	defaultEnvOnce sync.Once
)

type (
	// Env is everything a database needs from the platform it's running on: file I/O and somewhere to run
	// background work. An Env is shared by every database that uses it and is never closed by one, so
	// implementations must be safe for concurrent use.
	Env interface {
		// FileExists returns true if the named file exists.
		FileExists(name string) bool

		// GetChildren returns the names of the entries in the directory, not including the directory itself.
		GetChildren(dir string) ([]string, error)

		// CreateDir creates the directory and any parents that are missing.
		CreateDir(dir string) error

		// RemoveFile deletes the named file.
		RemoveFile(name string) error

		// RenameFile atomically replaces target with src.
		RenameFile(src, target string) error

		// NewWritableFile creates a new file, truncating any existing file with the same name.
		NewWritableFile(name string) (WritableFile, error)

		// NewAppendableFile opens the file for appending, creating it if it does not exist.
		NewAppendableFile(name string) (WritableFile, error)

		// ReadFile returns the entire contents of the named file.
		ReadFile(name string) ([]byte, error)

		// SyncDir makes changes to the directory's entries (creates, renames, deletes) durable.
		SyncDir(dir string) error

		// LockFile takes an exclusive lock on the named file, creating it if needed. It fails with ErrLocked
		// immediately instead of waiting if the lock is already held.
		LockFile(name string) (FileLock, error)

		// UnlockFile releases a lock returned by LockFile.
		UnlockFile(lock FileLock) error

		// Schedule arranges for fn to be run once on a background goroutine. Scheduled functions run one at a time in
		// the order they were scheduled.
		Schedule(fn func())

		// NowMicros returns the number of microseconds since some fixed point in time.
		NowMicros() uint64
	}

	// WritableFile is a file that is written to sequentially.
	WritableFile interface {
		Write(p []byte) (n int, err error)
		Sync() error
		Close() error
	}

	// FileLock is a lock held on a file by an Env.
	FileLock interface {
		// Name returns the name of the file that is locked.
		Name() string
	}

	// EnvOptions configures an OSEnv created with NewEnv.
	EnvOptions struct {
		// EventLogging enables golang.org/x/net/trace event logs for the background work the env runs.
		EventLogging bool
	}

	// OSEnv is an Env backed by the operating system.
	OSEnv struct {
		eventLog trace.EventLog

		// locks tracks the files locked through this env. flock already stops two descriptors from holding the
		// same lock, this just gives a clearer error and makes windows behave the same way.
		locksLock sync.Mutex
		locks     map[string]struct{}

		// Guards everything related to the background goroutine. The goroutine is only started once the first
		// function has been scheduled.
		scheduleLock sync.Mutex
		scheduleCond *sync.Cond
		queue        []func()
		started      bool
		closed       bool
		closer       *z.Closer
	}

	osFileLock struct {
		file *os.File
		name string
	}
)

// DefaultEnv returns the process wide Env backed by the operating system. It is created the first time it is
// requested and lives for as long as the process does.
func DefaultEnv() Env {
	defaultEnvOnce.Do(func() {
		defaultEnv = NewEnv(EnvOptions{})
	})

	return defaultEnv
}

// NewEnv creates an OSEnv that is independent of the DefaultEnv. It should be closed once no database is using it.
func NewEnv(options EnvOptions) *OSEnv {
	env := &OSEnv{
		eventLog: z.NewEventLog("notleveldb.Env", "Background", options.EventLogging),
		locks:    map[string]struct{}{},
		closer:   z.NewCloser(0),
	}
	env.scheduleCond = sync.NewCond(&env.scheduleLock)

	return env
}

func (e *OSEnv) FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (e *OSEnv) GetChildren(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "while reading directory %s", dir)
	}

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}

	return names, nil
}

func (e *OSEnv) CreateDir(dir string) error {
	return z.Wrapf(os.MkdirAll(dir, 0700), "error creating dir: %q", dir)
}

func (e *OSEnv) RemoveFile(name string) error {
	return z.Wrapf(os.Remove(name), "while removing file %s", name)
}

func (e *OSEnv) RenameFile(src, target string) error {
	return z.Wrapf(os.Rename(src, target), "while renaming %s to %s", src, target)
}

func (e *OSEnv) NewWritableFile(name string) (WritableFile, error) {
	file, err := z.OpenTruncFile(name, false)
	if err != nil {
		return nil, errors.Wrapf(err, "while creating file %s", name)
	}

	return file, nil
}

func (e *OSEnv) NewAppendableFile(name string) (WritableFile, error) {
	file, err := z.OpenAppendFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "while opening file %s for append", name)
	}

	return file, nil
}

func (e *OSEnv) ReadFile(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "while reading file %s", name)
	}

	return data, nil
}

func (e *OSEnv) SyncDir(dir string) error {
	return syncDir(dir)
}

func (e *OSEnv) LockFile(name string) (FileLock, error) {
	name = filepath.Clean(name)

	e.locksLock.Lock()
	defer e.locksLock.Unlock()

	if _, ok := e.locks[name]; ok {
		return nil, errors.Wrapf(ErrLocked, "lock %s already held by this process", name)
	}

	file, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "while opening lock file %s", name)
	}

	if err := lockFile(file); err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(ErrLocked, "while locking %s: %v", name, err)
	}

	// The pid written to the lock file is not part of the locking mechanism, it's just advisory. So we don't care if
	// it fails.
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
	}

	e.locks[name] = struct{}{}

	return &osFileLock{
		file: file,
		name: name,
	}, nil
}

func (e *OSEnv) UnlockFile(lock FileLock) error {
	l, ok := lock.(*osFileLock)
	if !ok {
		return errors.Errorf("lock %s was not created by an OSEnv", lock.Name())
	}

	e.locksLock.Lock()
	defer e.locksLock.Unlock()

	if _, ok := e.locks[l.name]; !ok {
		return errors.Errorf("lock %s is not held", l.name)
	}
	delete(e.locks, l.name)

	unlockErr := unlockFile(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return errors.Wrapf(unlockErr, "while unlocking %s", l.name)
	}

	return errors.Wrapf(closeErr, "while closing lock file %s", l.name)
}

func (e *OSEnv) Schedule(fn func()) {
	e.scheduleLock.Lock()
	defer e.scheduleLock.Unlock()

	if e.closed {
		timber.Warningf("dropping background work scheduled after the env was closed")
		return
	}

	if !e.started {
		e.started = true
		e.closer.AddRunning(1)
		go e.backgroundWorker()
	}

	e.queue = append(e.queue, fn)
	e.scheduleCond.Signal()
}

func (e *OSEnv) NowMicros() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Microsecond))
}

// Close waits for all of the work that has already been scheduled to finish and then stops the background goroutine.
// Anything scheduled after Close is dropped.
func (e *OSEnv) Close() error {
	e.scheduleLock.Lock()
	if e.closed {
		e.scheduleLock.Unlock()
		return nil
	}
	e.closed = true
	e.scheduleCond.Broadcast()
	e.scheduleLock.Unlock()

	e.closer.Wait()
	e.eventLog.Finish()

	return nil
}

func (e *OSEnv) backgroundWorker() {
	defer e.closer.Done()

	for {
		e.scheduleLock.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.scheduleCond.Wait()
		}

		// We only stop once everything that was queued before close has been run.
		if len(e.queue) == 0 {
			e.scheduleLock.Unlock()
			return
		}

		fn := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		pending := len(e.queue)
		e.scheduleLock.Unlock()

		e.eventLog.Printf("running background work, %d pending", pending)
		fn()
	}
}

func (l *osFileLock) Name() string {
	return l.name
}
