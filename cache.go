package notleveldb

import (
	"sync/atomic"

	"github.com/OneOfOne/xxhash"
	"github.com/dgraph-io/ristretto"
	"github.com/dgryski/go-farm"
	"github.com/pkg/errors"
)

const (
	// DefaultBlockCacheCapacity is the capacity in bytes of the block cache Open creates when the options do not
	// provide one.
	DefaultBlockCacheCapacity = 8 << 20

	// blockCacheBufferItems is the number of keys per Get buffer, 64 is what ristretto recommends.
	blockCacheBufferItems = 64

	// Ristretto wants ~10x the number of items that will be held to keep its admission counters accurate. Blocks are
	// about 4KB so this works out to roughly 10 counters per block.
	blockCacheCountersPerByte = 10.0 / 4096
	minimumBlockCacheCounters = 1024
)

type (
	// Cache maps keys to values, evicting the least valuable entries once the total charge goes over the capacity.
	// A single cache may be shared by multiple databases, so implementations must be safe for concurrent use.
	Cache interface {
		// Insert adds the value to the cache with the charge counted against the capacity. Returns false if the
		// value was dropped instead of being inserted.
		Insert(key []byte, value interface{}, charge int64) bool

		// Lookup returns the cached value for the key if there is one.
		Lookup(key []byte) (interface{}, bool)

		// Erase removes the key from the cache, if it is present.
		Erase(key []byte)

		// NewID returns a new numeric id. Clients sharing the same cache use it to partition the key space, usually
		// by prefixing their keys with it.
		NewID() uint64

		// Capacity returns the maximum total charge the cache will hold.
		Capacity() int64

		// SetCapacity changes the maximum total charge, entries will be evicted as needed.
		SetCapacity(capacity int64)

		// Wait blocks until every pending Insert has been applied.
		Wait()

		// Close releases the cache's resources. Nothing may use the cache after it has been closed.
		Close()
	}

	// blockCache is a Cache backed by ristretto.
	blockCache struct {
		cache  *ristretto.Cache
		lastID uint64 // accessed via atomics.
	}
)

// NewCache creates a new Cache that will hold at most capacity bytes worth of charges.
func NewCache(capacity int64) (Cache, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "cache capacity must be positive, got %d", capacity)
	}

	counters := int64(float64(capacity) * blockCacheCountersPerByte)
	if counters < minimumBlockCacheCounters {
		counters = minimumBlockCacheCounters
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: counters,
		MaxCost:     capacity,
		BufferItems: blockCacheBufferItems,
		KeyToHash:   blockCacheKeyToHash,
		// Charges are the size of the block, we don't want ristretto's own bookkeeping eating into that.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create block cache")
	}

	return &blockCache{
		cache: cache,
	}, nil
}

// blockCacheKeyToHash hashes keys with farm and uses xxhash for the conflict hash, two independent hashes make a
// collision between different keys practically impossible.
func blockCacheKeyToHash(key interface{}) (uint64, uint64) {
	switch k := key.(type) {
	case []byte:
		return farm.Fingerprint64(k), xxhash.Checksum64(k)
	case string:
		b := []byte(k)
		return farm.Fingerprint64(b), xxhash.Checksum64(b)
	case uint64:
		return k, 0
	default:
		panic("block cache keys must be []byte, string or uint64")
	}
}

func (c *blockCache) Insert(key []byte, value interface{}, charge int64) bool {
	return c.cache.Set(key, value, charge)
}

func (c *blockCache) Lookup(key []byte) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *blockCache) Erase(key []byte) {
	c.cache.Del(key)
}

func (c *blockCache) NewID() uint64 {
	return atomic.AddUint64(&c.lastID, 1)
}

func (c *blockCache) Capacity() int64 {
	return c.cache.MaxCost()
}

func (c *blockCache) SetCapacity(capacity int64) {
	c.cache.UpdateMaxCost(capacity)
}

func (c *blockCache) Wait() {
	c.cache.Wait()
}

func (c *blockCache) Close() {
	c.cache.Close()
}
