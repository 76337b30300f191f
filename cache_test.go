package notleveldb

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	t.Run("invalid capacity", func(t *testing.T) {
		for _, capacity := range []int64{0, -1} {
			cache, err := NewCache(capacity)
			assert.Nil(t, cache)
			assert.Equal(t, ErrInvalidOption, errors.Cause(err))
		}
	})

	t.Run("capacity", func(t *testing.T) {
		cache, err := NewCache(DefaultBlockCacheCapacity)
		require.NoError(t, err)
		defer cache.Close()

		assert.EqualValues(t, DefaultBlockCacheCapacity, cache.Capacity())

		cache.SetCapacity(1 << 20)
		assert.EqualValues(t, 1<<20, cache.Capacity())
	})
}

func TestBlockCache_InsertLookupErase(t *testing.T) {
	cache, err := NewCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	key := []byte("block/1/4096")
	_, ok := cache.Lookup(key)
	assert.False(t, ok)

	assert.True(t, cache.Insert(key, "value", 4096))
	cache.Wait()

	value, ok := cache.Lookup(key)
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	// A different slice with the same contents is the same key.
	value, ok = cache.Lookup([]byte("block/1/4096"))
	assert.True(t, ok)
	assert.Equal(t, "value", value)

	cache.Erase(key)
	_, ok = cache.Lookup(key)
	assert.False(t, ok)
}

func TestBlockCache_RejectsOversizedCharge(t *testing.T) {
	cache, err := NewCache(1024)
	require.NoError(t, err)
	defer cache.Close()

	key := []byte("too big")
	cache.Insert(key, "value", 4096)
	cache.Wait()

	_, ok := cache.Lookup(key)
	assert.False(t, ok)
}

func TestBlockCache_NewID(t *testing.T) {
	cache, err := NewCache(1 << 20)
	require.NoError(t, err)
	defer cache.Close()

	var lock sync.Mutex
	seen := map[uint64]struct{}{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := cache.NewID()
				lock.Lock()
				seen[id] = struct{}{}
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 800)
	_, ok := seen[0]
	assert.False(t, ok, "ids should start at 1")
}

func TestBlockCacheKeyToHash(t *testing.T) {
	keyHash, conflictHash := blockCacheKeyToHash([]byte("key"))
	stringKeyHash, stringConflictHash := blockCacheKeyToHash("key")
	assert.Equal(t, keyHash, stringKeyHash)
	assert.Equal(t, conflictHash, stringConflictHash)
	assert.NotEqual(t, keyHash, conflictHash)

	keyHash, conflictHash = blockCacheKeyToHash(uint64(42))
	assert.EqualValues(t, 42, keyHash)
	assert.EqualValues(t, 0, conflictHash)

	assert.Panics(t, func() {
		blockCacheKeyToHash(42)
	})
}
