package z

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

const (
	// Left as 0; callers that need durability call FileSync explicitly.
	dataSyncFileFlag = 0x0
)

const (
	// Sync indicates that O_DSYNC should be set on the underlying file,
	// ensuring that data writes do not return until the data is flushed
	// to disk.
	Sync = 1 << iota
	// ReadOnly opens the underlying file on a read-only basis.
	ReadOnly
)

type (
	// Closer holds the two things we need to close a goroutine and wait for it to finish: a chan to tell the goroutine
	// to shut down, and a WaitGroup with which to wait for it to finish shutting down.
	Closer struct {
		closed  chan struct{}
		once    sync.Once
		waiting sync.WaitGroup
	}
)

// NewCloser constructs a new Closer, with an initial count on the WaitGroup.
func NewCloser(initial int) *Closer {
	c := &Closer{
		closed: make(chan struct{}),
	}
	c.waiting.Add(initial)
	return c
}

// AddRunning adds delta to the WaitGroup.
func (c *Closer) AddRunning(delta int) {
	c.waiting.Add(delta)
}

// Signal signals the HasBeenClosed channel. Calling it more than once is a no-op.
func (c *Closer) Signal() {
	c.once.Do(func() {
		close(c.closed)
	})
}

// HasBeenClosed gets signaled when Signal() is called.
func (c *Closer) HasBeenClosed() <-chan struct{} {
	return c.closed
}

// Done calls Done() on the WaitGroup.
func (c *Closer) Done() {
	c.waiting.Done()
}

// Wait waits on the WaitGroup. (It waits for NewCloser's initial value, AddRunning, and Done calls to balance out.)
func (c *Closer) Wait() {
	c.waiting.Wait()
}

// SignalAndWait calls Signal(), then Wait().
func (c *Closer) SignalAndWait() {
	c.Signal()
	c.Wait()
}

// OpenExistingFile opens an existing file, errors if it doesn't exist.
func OpenExistingFile(fileName string, flags uint32) (*os.File, error) {
	openFlags := os.O_RDWR
	if flags&ReadOnly != 0 {
		openFlags = os.O_RDONLY
	}

	if flags&Sync != 0 {
		openFlags |= dataSyncFileFlag
	}
	return os.OpenFile(fileName, openFlags, 0)
}

// OpenTruncFile opens the file with O_RDWR | O_CREATE | O_TRUNC
func OpenTruncFile(fileName string, sync bool) (*os.File, error) {
	flags := os.O_RDWR | os.O_CREATE | os.O_TRUNC
	if sync {
		flags |= dataSyncFileFlag
	}
	return os.OpenFile(fileName, flags, 0600)
}

// OpenAppendFile opens the file with O_WRONLY | O_CREATE | O_APPEND, keeping whatever is already in it.
func OpenAppendFile(fileName string) (*os.File, error) {
	return os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
}

// FileSync flushes the file's contents to stable storage.
func FileSync(f *os.File) error {
	return f.Sync()
}

// Wrap wraps errors from external libraries with a stack trace.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

// Wrapf is Wrap with extra info.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
