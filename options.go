package notleveldb

import (
	"github.com/elliotcourant/notleveldb/options"
)

const (
	DefaultWriteBufferSize      = 4 << 20
	DefaultMaxOpenFiles         = 1000
	DefaultBlockSize            = 4096
	DefaultBlockRestartInterval = 16
)

var (
	// DefaultCompression is the compression DefaultOptions will use for blocks.
	//
	// Snappy is fast enough (~200-500MB/s compressing, ~400-800MB/s decompressing) that it is typically never worth
	// turning off, and incompressible blocks are detected and stored raw anyway. But the default has shipped as
	// options.None, so that is what it stays until someone decides otherwise. Set this to options.Snappy before
	// calling DefaultOptions, or set Options.Compression, to turn it on.
	DefaultCompression = options.None
)

type (
	// Options controls the behavior of a database, they are passed to Open.
	//
	// Comparator, Env, InfoLog and BlockCache are shared references. Copying an Options (CopyFrom, Clone or the
	// WithX methods) copies the reference, never the thing it points to, and a database never closes any of them if
	// they were provided by the caller.
	//
	// Options does not validate anything itself, Open does.
	Options struct {
		// -------------------
		// Parameters that affect behavior

		// Comparator is used to define the order of keys in the table.
		// Default: BytewiseComparator(), which uses lexicographic byte-wise ordering.
		//
		// The comparator must have the same name and order keys *exactly* the same as the comparator provided to
		// previous Open calls on the same dataset.
		Comparator Comparator

		// CreateIfMissing will create the database if it is missing.
		// Default: false
		CreateIfMissing bool

		// ErrorIfExists makes Open fail if the database already exists.
		// Default: false
		ErrorIfExists bool

		// ParanoidChecks makes the implementation do aggressive checking of the data it is processing and stop early
		// if it detects any errors. This may have unforeseen ramifications: for example, a corruption of one entry may
		// cause a large number of entries to become unreadable or for the entire database to become unopenable.
		// Default: false
		ParanoidChecks bool

		// Env is used to interact with the environment, e.g. to read/write files, schedule background work, etc.
		// Default: DefaultEnv()
		Env Env

		// InfoLog receives any internal progress/error information generated by the database. If it is nil the
		// database writes to a LOG file stored in the same directory as the database contents instead.
		// Default: nil
		InfoLog Logger

		// -------------------
		// Parameters that affect performance

		// WriteBufferSize is the amount of data to build up in memory (backed by an unsorted log on disk) before
		// converting to a sorted on-disk file.
		//
		// Larger values increase performance, especially during bulk loads. Up to two write buffers may be held in
		// memory at the same time, so you may wish to adjust this parameter to control memory usage.
		//
		// Default: 4MB
		WriteBufferSize int

		// MaxOpenFiles is the number of open files that can be used by the database. You may need to increase this
		// if your database has a large working set (budget one open file per 2MB of working set).
		//
		// Default: 1000
		MaxOpenFiles int

		// Control over blocks (user data is stored in a set of blocks, and a block is the unit of reading from disk).

		// BlockCache is used to cache blocks if it is not nil. If it is nil the database will automatically create and
		// use an 8MB internal cache.
		// Default: nil
		BlockCache Cache

		// BlockSize is the approximate size of user data packed per block. Note that the block size specified here
		// corresponds to uncompressed data. The actual size of the unit read from disk may be smaller if compression is
		// enabled. This parameter can be changed between opens.
		//
		// Default: 4K
		BlockSize int

		// BlockRestartInterval is the number of keys between restart points for delta encoding of keys. This parameter
		// can be changed between opens. Most clients should leave this parameter alone.
		//
		// Default: 16
		BlockRestartInterval int

		// Compression compresses blocks using the specified algorithm. This parameter can be changed between opens.
		//
		// Default: DefaultCompression
		Compression options.CompressionType
	}
)

// DefaultOptions creates an Options with default values for all fields.
func DefaultOptions() *Options {
	return &Options{
		Comparator:           BytewiseComparator(),
		CreateIfMissing:      false,
		ErrorIfExists:        false,
		ParanoidChecks:       false,
		Env:                  DefaultEnv(),
		InfoLog:              nil,
		WriteBufferSize:      DefaultWriteBufferSize,
		MaxOpenFiles:         DefaultMaxOpenFiles,
		BlockCache:           nil,
		BlockSize:            DefaultBlockSize,
		BlockRestartInterval: DefaultBlockRestartInterval,
		Compression:          DefaultCompression,
	}
}

// CopyFrom overwrites every field of o with the value from other. Shared references (Comparator, Env, InfoLog and
// BlockCache) end up pointing at the same objects as other's do.
func (o *Options) CopyFrom(other *Options) {
	o.Comparator = other.Comparator
	o.CreateIfMissing = other.CreateIfMissing
	o.ErrorIfExists = other.ErrorIfExists
	o.ParanoidChecks = other.ParanoidChecks
	o.Env = other.Env
	o.InfoLog = other.InfoLog
	o.WriteBufferSize = other.WriteBufferSize
	o.MaxOpenFiles = other.MaxOpenFiles
	o.BlockCache = other.BlockCache
	o.BlockSize = other.BlockSize
	o.BlockRestartInterval = other.BlockRestartInterval
	o.Compression = other.Compression
}

// Clone returns a new Options that is a copy of o, see CopyFrom.
func (o *Options) Clone() *Options {
	clone := &Options{}
	clone.CopyFrom(o)
	return clone
}

// WithComparator returns a copy of the options with Comparator set to the given value.
func (o *Options) WithComparator(val Comparator) *Options {
	clone := o.Clone()
	clone.Comparator = val
	return clone
}

// WithCreateIfMissing returns a copy of the options with CreateIfMissing set to the given value.
func (o *Options) WithCreateIfMissing(val bool) *Options {
	clone := o.Clone()
	clone.CreateIfMissing = val
	return clone
}

// WithErrorIfExists returns a copy of the options with ErrorIfExists set to the given value.
func (o *Options) WithErrorIfExists(val bool) *Options {
	clone := o.Clone()
	clone.ErrorIfExists = val
	return clone
}

// WithParanoidChecks returns a copy of the options with ParanoidChecks set to the given value.
func (o *Options) WithParanoidChecks(val bool) *Options {
	clone := o.Clone()
	clone.ParanoidChecks = val
	return clone
}

// WithEnv returns a copy of the options with Env set to the given value.
func (o *Options) WithEnv(val Env) *Options {
	clone := o.Clone()
	clone.Env = val
	return clone
}

// WithInfoLog returns a copy of the options with InfoLog set to the given value. Passing nil means the database will
// write its own LOG file.
func (o *Options) WithInfoLog(val Logger) *Options {
	clone := o.Clone()
	clone.InfoLog = val
	return clone
}

// WithWriteBufferSize returns a copy of the options with WriteBufferSize set to the given value.
func (o *Options) WithWriteBufferSize(val int) *Options {
	clone := o.Clone()
	clone.WriteBufferSize = val
	return clone
}

// WithMaxOpenFiles returns a copy of the options with MaxOpenFiles set to the given value.
func (o *Options) WithMaxOpenFiles(val int) *Options {
	clone := o.Clone()
	clone.MaxOpenFiles = val
	return clone
}

// WithBlockCache returns a copy of the options with BlockCache set to the given value. Passing nil means the database
// will create its own cache.
func (o *Options) WithBlockCache(val Cache) *Options {
	clone := o.Clone()
	clone.BlockCache = val
	return clone
}

// WithBlockSize returns a copy of the options with BlockSize set to the given value.
func (o *Options) WithBlockSize(val int) *Options {
	clone := o.Clone()
	clone.BlockSize = val
	return clone
}

// WithBlockRestartInterval returns a copy of the options with BlockRestartInterval set to the given value.
func (o *Options) WithBlockRestartInterval(val int) *Options {
	clone := o.Clone()
	clone.BlockRestartInterval = val
	return clone
}

// WithCompression returns a copy of the options with Compression set to the given value.
func (o *Options) WithCompression(val options.CompressionType) *Options {
	clone := o.Clone()
	clone.Compression = val
	return clone
}
