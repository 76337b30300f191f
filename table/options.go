package table

import (
	"encoding/binary"

	"github.com/elliotcourant/notleveldb/options"
)

const (
	// blockCacheKeySize is the size of a key built by BlockCacheKey, a uint64 cache id followed by a uint64 offset.
	blockCacheKeySize = 8 + 8
)

type (
	// BlockCache is the part of the database's block cache that tables use.
	BlockCache interface {
		Insert(key []byte, value interface{}, charge int64) bool
		Lookup(key []byte) (interface{}, bool)
	}

	// Options contains configurable options for Table/TableBuilder.
	Options struct {
		// Options for Opening/Building Table.

		// ChkMode is the checksum verification mode for Table.
		ChkMode options.ChecksumVerificationMode

		// Options for Table builder.

		// BlockSize is the approximate size of uncompressed user data in each block.
		BlockSize int

		// BlockRestartInterval is the number of keys between restart points for delta encoding of keys.
		BlockRestartInterval int

		// Compression indicates the compression algorithm used for block compression.
		Compression options.CompressionType

		// ZSTDCompressionLevel is the ZSTD compression level used for compressing blocks.
		ZSTDCompressionLevel int

		// Cache holds uncompressed blocks. It may be shared with other databases, CacheID keeps our blocks apart from
		// theirs.
		Cache   BlockCache
		CacheID uint64
	}
)

// BlockCacheKey builds the key a block is stored under in the block cache.
func BlockCacheKey(cacheID, offset uint64) []byte {
	key := make([]byte, blockCacheKeySize)
	binary.BigEndian.PutUint64(key[0:8], cacheID)
	binary.BigEndian.PutUint64(key[8:16], offset)
	return key
}

// CompressBlock compresses the raw block using the configured compression, see CompressBlock.
func (o *Options) CompressBlock(raw []byte) ([]byte, options.CompressionType, error) {
	return CompressBlock(raw, o.Compression, o.ZSTDCompressionLevel)
}

// CacheBlock stores an uncompressed block read from offset in the block cache. Returns false if there is no cache or
// the cache dropped the block.
func (o *Options) CacheBlock(offset uint64, block []byte) bool {
	if o.Cache == nil {
		return false
	}

	return o.Cache.Insert(BlockCacheKey(o.CacheID, offset), block, int64(len(block)))
}

// CachedBlock returns the uncompressed block at offset if it is in the block cache.
func (o *Options) CachedBlock(offset uint64) ([]byte, bool) {
	if o.Cache == nil {
		return nil, false
	}

	value, ok := o.Cache.Lookup(BlockCacheKey(o.CacheID, offset))
	if !ok {
		return nil, false
	}

	block, ok := value.([]byte)
	return block, ok
}
