package notleveldb

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/elliotcourant/notleveldb/options"
	"github.com/elliotcourant/notleveldb/pb"
	"github.com/elliotcourant/notleveldb/table"
	"github.com/pkg/errors"
)

const (
	// numNonTableCacheFiles is how many of MaxOpenFiles are reserved for things other than tables (logs, the
	// descriptor, the lock file).
	numNonTableCacheFiles = 10

	minMaxOpenFiles    = 64 + numNonTableCacheFiles
	maxMaxOpenFiles    = 50000
	minWriteBufferSize = 64 << 10
	maxWriteBufferSize = 1 << 30
	minBlockSize       = 1 << 10
	maxBlockSize       = 4 << 20
)

type (
	// DB is an opened dataset. It holds the dataset's LOCK until it is closed.
	DB struct {
		directory string

		// options is our own copy of the options passed to Open, with defaults filled in and values clipped to the
		// ranges we support.
		options      *Options
		tableOptions table.Options

		lock FileLock

		// infoLog and blockCache are only set when we created them ourselves, they are the only collaborators the
		// database will ever close.
		infoLog    *FileLogger
		blockCache Cache

		// closeOnce is used to make sure that the database can only be closed once.
		closeOnce sync.Once
		closeErr  error
	}
)

// Open opens the dataset in the directory. The options are only read, they are never modified and can be reused (or
// changed) once Open returns.
//
// Open fails with ErrDatabaseNotFound if there is no dataset and CreateIfMissing is false, with ErrDatabaseExists if
// there is one and ErrorIfExists is true, and with ErrComparatorMismatch if the dataset was created with a different
// comparator.
func Open(opts *Options, directory string) (*DB, error) {
	if opts == nil {
		return nil, ErrNilOptions
	}

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	sanitized, clipped := sanitizeOptions(opts)
	env := sanitized.Env

	if sanitized.CreateIfMissing {
		if err := env.CreateDir(directory); err != nil {
			return nil, err
		}
	} else if !env.FileExists(directory) {
		return nil, errors.Wrapf(ErrDatabaseNotFound, "directory %s", directory)
	}

	lock, err := env.LockFile(filepath.Join(directory, lockFileName))
	if err != nil {
		return nil, err
	}

	db := &DB{
		directory: directory,
		options:   sanitized,
		lock:      lock,
	}

	// From here on Close will undo whatever has been set up.
	if err := db.open(clipped); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// validateOptions rejects options that can't be used at all.
func validateOptions(opts *Options) error {
	switch {
	case opts.Comparator == nil:
		return errors.Wrap(ErrInvalidOption, "Comparator must not be nil")
	case opts.Env == nil:
		return errors.Wrap(ErrInvalidOption, "Env must not be nil")
	case opts.WriteBufferSize <= 0:
		return errors.Wrapf(ErrInvalidOption, "WriteBufferSize must be positive, got %d", opts.WriteBufferSize)
	case opts.MaxOpenFiles <= 0:
		return errors.Wrapf(ErrInvalidOption, "MaxOpenFiles must be positive, got %d", opts.MaxOpenFiles)
	case opts.BlockSize <= 0:
		return errors.Wrapf(ErrInvalidOption, "BlockSize must be positive, got %d", opts.BlockSize)
	case opts.BlockRestartInterval <= 0:
		return errors.Wrapf(
			ErrInvalidOption,
			"BlockRestartInterval must be positive, got %d",
			opts.BlockRestartInterval,
		)
	case !opts.Compression.Valid():
		return errors.Wrapf(ErrInvalidOption, "Compression %s is not supported", opts.Compression)
	}

	return nil
}

// sanitizeOptions returns a copy of the options with values clipped to the ranges we support, along with a message
// for each value that had to be changed.
func sanitizeOptions(opts *Options) (*Options, []string) {
	sanitized := opts.Clone()
	clipped := make([]string, 0)

	clipToRange := func(name string, value *int, min, max int) {
		original := *value
		if *value < min {
			*value = min
		} else if *value > max {
			*value = max
		}

		if *value != original {
			clipped = append(clipped, fmt.Sprintf("%s of %d clipped to %d", name, original, *value))
		}
	}

	clipToRange("MaxOpenFiles", &sanitized.MaxOpenFiles, minMaxOpenFiles, maxMaxOpenFiles)
	clipToRange("WriteBufferSize", &sanitized.WriteBufferSize, minWriteBufferSize, maxWriteBufferSize)
	clipToRange("BlockSize", &sanitized.BlockSize, minBlockSize, maxBlockSize)

	return sanitized, clipped
}

func (db *DB) open(clipped []string) error {
	opts, env := db.options, db.options.Env

	exists := env.FileExists(filepath.Join(db.directory, descriptorFileName))
	switch {
	case !exists && !opts.CreateIfMissing:
		return errors.Wrapf(ErrDatabaseNotFound, "directory %s", db.directory)
	case exists && opts.ErrorIfExists:
		return errors.Wrapf(ErrDatabaseExists, "directory %s", db.directory)
	}

	if opts.InfoLog == nil {
		logger, err := openInfoLog(env, db.directory)
		if err != nil {
			return err
		}
		db.infoLog = logger
		opts.InfoLog = logger
	}

	for _, message := range clipped {
		opts.InfoLog.Logf("%s", message)
	}

	if exists {
		if err := db.checkDescriptor(); err != nil {
			return err
		}
	} else {
		opts.InfoLog.Logf("creating new database in %s", db.directory)
		if err := db.writeDescriptor(); err != nil {
			return err
		}
	}

	if opts.BlockCache == nil {
		cache, err := NewCache(DefaultBlockCacheCapacity)
		if err != nil {
			return err
		}
		db.blockCache = cache
		opts.BlockCache = cache
	}

	db.tableOptions = buildTableOptions(opts)

	tables, err := db.countTables()
	if err != nil {
		return err
	}

	opts.InfoLog.Logf(
		"opened %s: tables=%d comparator=%s write_buffer_size=%d max_open_files=%d block_size=%d "+
			"block_restart_interval=%d compression=%s paranoid_checks=%t",
		db.directory,
		tables,
		opts.Comparator.Name(),
		opts.WriteBufferSize,
		opts.MaxOpenFiles,
		opts.BlockSize,
		opts.BlockRestartInterval,
		opts.Compression,
		opts.ParanoidChecks,
	)

	return nil
}

// checkDescriptor makes sure the dataset was created with the comparator we have been given. A descriptor that can't
// be read is fatal with ParanoidChecks, otherwise it is logged and replaced.
func (db *DB) checkDescriptor() error {
	opts := db.options

	descriptor, err := readDescriptor(opts.Env, db.directory)
	if err != nil {
		if errors.Cause(err) != ErrCorruption || opts.ParanoidChecks {
			return err
		}

		opts.InfoLog.Logf("ignoring unreadable descriptor, rewriting it: %v", err)
		return db.writeDescriptor()
	}

	if descriptor.ComparatorName != opts.Comparator.Name() {
		return errors.Wrapf(
			ErrComparatorMismatch,
			"%s does not match existing comparator %s",
			opts.Comparator.Name(),
			descriptor.ComparatorName,
		)
	}

	return nil
}

// countTables returns how many table files are in the directory.
func (db *DB) countTables() (int, error) {
	children, err := db.options.Env.GetChildren(db.directory)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, child := range children {
		if _, ok := table.ParseFileNumber(child); ok {
			count++
		}
	}

	return count, nil
}

func (db *DB) writeDescriptor() error {
	return writeDescriptor(db.options.Env, db.directory, pb.Descriptor{
		ComparatorName: db.options.Comparator.Name(),
		CreatedAt:      int64(db.options.Env.NowMicros()),
	})
}

// openInfoLog moves the previous LOG out of the way and starts a new one.
func openInfoLog(env Env, directory string) (*FileLogger, error) {
	path := filepath.Join(directory, infoLogFileName)
	if env.FileExists(path) {
		// If this fails we just lose the old log, that's not worth failing over.
		_ = env.RenameFile(path, filepath.Join(directory, oldInfoLogFileName))
	}

	return NewFileLogger(env, path)
}

// buildTableOptions derives the options tables are built and read with from the database options.
func buildTableOptions(opts *Options) table.Options {
	checksumMode := options.NoVerification
	if opts.ParanoidChecks {
		checksumMode = options.OnBlockRead
	}

	return table.Options{
		ChkMode:              checksumMode,
		BlockSize:            opts.BlockSize,
		BlockRestartInterval: opts.BlockRestartInterval,
		Compression:          opts.Compression,
		ZSTDCompressionLevel: options.DefaultZSTDLevel,
		Cache:                opts.BlockCache,
		CacheID:              opts.BlockCache.NewID(),
	}
}

// Directory returns the directory the database was opened in.
func (db *DB) Directory() string {
	return db.directory
}

// Options returns a copy of the options the database is using. Unlike the options passed to Open, InfoLog and
// BlockCache are always set.
func (db *DB) Options() *Options {
	return db.options.Clone()
}

// TableOptions returns the options tables are built and read with.
func (db *DB) TableOptions() table.Options {
	return db.tableOptions
}

// TableCacheSize is the number of tables that can be kept open at once.
func (db *DB) TableCacheSize() int {
	return db.options.MaxOpenFiles - numNonTableCacheFiles
}

// Close releases the LOCK and closes the info log and block cache if the database created them. A Logger or Cache
// provided in the options is left alone. Calling Close more than once returns the result of the first call.
func (db *DB) Close() error {
	db.closeOnce.Do(func() {
		if db.blockCache != nil {
			db.blockCache.Close()
		}

		if db.infoLog != nil {
			db.infoLog.Logf("closing %s", db.directory)
			if err := db.infoLog.Close(); err != nil && db.closeErr == nil {
				db.closeErr = err
			}
		}

		if err := db.options.Env.UnlockFile(db.lock); err != nil && db.closeErr == nil {
			db.closeErr = err
		}
	})

	return db.closeErr
}
