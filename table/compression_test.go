package table

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/elliotcourant/notleveldb/options"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compressibleBlock looks like a block full of similar keys and values.
func compressibleBlock() []byte {
	return bytes.Repeat([]byte("user/000000001/profile=some value that repeats "), 100)
}

// incompressibleBlock is random noise, neither codec can do anything with it.
func incompressibleBlock() []byte {
	block := make([]byte, 4096)
	rand.New(rand.NewSource(42)).Read(block)
	return block
}

func TestCompressBlock(t *testing.T) {
	for _, compression := range []options.CompressionType{options.Snappy, options.ZSTD} {
		compression := compression
		t.Run(compression.String(), func(t *testing.T) {
			t.Run("compressible", func(t *testing.T) {
				raw := compressibleBlock()
				data, stored, err := CompressBlock(raw, compression, 0)
				require.NoError(t, err)
				assert.Equal(t, compression, stored)
				assert.True(t, len(data) < len(raw)-len(raw)/8)

				result, err := DecompressBlock(data, stored)
				require.NoError(t, err)
				assert.Equal(t, raw, result)
			})

			t.Run("incompressible falls back to raw", func(t *testing.T) {
				raw := incompressibleBlock()
				data, stored, err := CompressBlock(raw, compression, 0)
				require.NoError(t, err)
				assert.Equal(t, options.None, stored)
				assert.Equal(t, raw, data)

				result, err := DecompressBlock(data, stored)
				require.NoError(t, err)
				assert.Equal(t, raw, result)
			})

			t.Run("empty", func(t *testing.T) {
				data, stored, err := CompressBlock(nil, compression, 0)
				require.NoError(t, err)
				assert.Equal(t, options.None, stored)
				assert.Empty(t, data)
			})
		})
	}

	t.Run("none", func(t *testing.T) {
		raw := compressibleBlock()
		data, stored, err := CompressBlock(raw, options.None, 0)
		require.NoError(t, err)
		assert.Equal(t, options.None, stored)
		assert.Equal(t, raw, data)
	})

	t.Run("zstd levels", func(t *testing.T) {
		raw := compressibleBlock()
		for _, level := range []int{1, 3, 9, 19} {
			data, stored, err := CompressBlock(raw, options.ZSTD, level)
			require.NoError(t, err)
			assert.Equal(t, options.ZSTD, stored)

			result, err := DecompressBlock(data, stored)
			require.NoError(t, err)
			assert.Equal(t, raw, result)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := CompressBlock(compressibleBlock(), options.CompressionType(7), 0)
		assert.Equal(t, ErrUnknownCompression, errors.Cause(err))
	})
}

func TestDecompressBlock(t *testing.T) {
	t.Run("unknown", func(t *testing.T) {
		_, err := DecompressBlock([]byte("data"), options.CompressionType(7))
		assert.Equal(t, ErrUnknownCompression, errors.Cause(err))
	})

	t.Run("corrupt snappy", func(t *testing.T) {
		_, err := DecompressBlock([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}, options.Snappy)
		assert.Error(t, err)
	})

	t.Run("corrupt zstd", func(t *testing.T) {
		_, err := DecompressBlock([]byte("definitely not zstd"), options.ZSTD)
		assert.Error(t, err)
	})
}

func TestOptions_CompressBlock(t *testing.T) {
	opts := Options{
		Compression:          options.ZSTD,
		ZSTDCompressionLevel: 5,
	}

	raw := compressibleBlock()
	data, stored, err := opts.CompressBlock(raw)
	require.NoError(t, err)
	assert.Equal(t, options.ZSTD, stored)

	result, err := DecompressBlock(data, stored)
	require.NoError(t, err)
	assert.Equal(t, raw, result)
}

func BenchmarkCompressBlock(b *testing.B) {
	raw := compressibleBlock()
	for _, compression := range []options.CompressionType{options.Snappy, options.ZSTD} {
		b.Run(compression.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, _ = CompressBlock(raw, compression, 0)
			}
		})
	}
}
