package notleveldb

import (
	"fmt"
	"sync"
	"time"

	"github.com/elliotcourant/timber"
	"github.com/pkg/errors"
)

const (
	// fileLoggerTimeFormat is the prefix of every line written by a FileLogger.
	fileLoggerTimeFormat = "2006/01/02-15:04:05.000000"
)

var (
	defaultTimberLogger Logger = timberLogger{}
)

type (
	// Logger receives the progress and error information generated by a database. A logger may be shared between
	// databases, so implementations must be safe for concurrent use. A database never closes a Logger it was given.
	Logger interface {
		Logf(format string, args ...interface{})
	}

	timberLogger struct{}

	// FileLogger writes timestamped lines to a file. It is what a database uses when its options do not provide an
	// InfoLog.
	FileLogger struct {
		lock   sync.Mutex
		file   WritableFile
		now    func() time.Time
		closed bool
	}
)

// TimberLogger returns a Logger that writes to the process wide timber logger.
func TimberLogger() Logger {
	return defaultTimberLogger
}

func (timberLogger) Logf(format string, args ...interface{}) {
	timber.Infof(format, args...)
}

// NewFileLogger creates (or truncates) the file at path using the env and returns a logger that writes to it.
func NewFileLogger(env Env, path string) (*FileLogger, error) {
	file, err := env.NewWritableFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create info log %s", path)
	}

	return &FileLogger{
		file: file,
		now:  time.Now,
	}, nil
}

// Logf writes a single line to the file. Failures to write are reported through timber since there is nowhere else
// for them to go.
func (l *FileLogger) Logf(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if l.closed {
		timber.Warningf("dropping info log line after close: %s", line)
		return
	}

	if _, err := fmt.Fprintf(l.file, "%s %s", l.now().Format(fileLoggerTimeFormat), line); err != nil {
		timber.Warningf("failed to write to info log: %v", err)
	}
}

// Close syncs and closes the underlying file. Calling Close more than once is a no-op.
func (l *FileLogger) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.file.Sync(); err != nil {
		_ = l.file.Close()
		return errors.Wrap(err, "failed to sync info log")
	}

	return errors.Wrap(l.file.Close(), "failed to close info log")
}
