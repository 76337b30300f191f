package table

import (
	"sync"

	"github.com/elliotcourant/notleveldb/options"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownCompression is returned when a block is compressed or decompressed with a type we don't know about.
	ErrUnknownCompression = errors.New("unknown compression type")

	// Encoders and decoders are expensive to create but safe to share, so we keep one encoder per level and a single
	// decoder.
	zstdEncodersLock sync.Mutex
	zstdEncoders     = map[int]*zstd.Encoder{}

	zstdDecoder     *zstd.Decoder
	zstdDecoderErr  error
	zstdDecoderOnce sync.Once
)

// CompressBlock compresses the raw block with the compression type provided and returns the bytes to store along with
// the compression type they were actually stored with. If compressing does not save at least 12.5% of the block then
// the raw block is returned as is with options.None, so incompressible data never grows.
func CompressBlock(raw []byte, compression options.CompressionType, level int) ([]byte, options.CompressionType, error) {
	var compressed []byte
	switch compression {
	case options.None:
		return raw, options.None, nil
	case options.Snappy:
		compressed = snappy.Encode(nil, raw)
	case options.ZSTD:
		encoder, err := getZSTDEncoder(level)
		if err != nil {
			return nil, options.None, err
		}
		compressed = encoder.EncodeAll(raw, make([]byte, 0, len(raw)))
	default:
		return nil, options.None, errors.Wrapf(ErrUnknownCompression, "cannot compress block with %s", compression)
	}

	if len(compressed) >= len(raw)-len(raw)/8 {
		return raw, options.None, nil
	}

	return compressed, compression, nil
}

// DecompressBlock reverses CompressBlock, data must have been stored with the compression type provided.
func DecompressBlock(data []byte, compression options.CompressionType) ([]byte, error) {
	switch compression {
	case options.None:
		return data, nil
	case options.Snappy:
		raw, err := snappy.Decode(nil, data)
		return raw, errors.Wrap(err, "failed to decompress snappy block")
	case options.ZSTD:
		decoder, err := getZSTDDecoder()
		if err != nil {
			return nil, err
		}
		raw, err := decoder.DecodeAll(data, nil)
		return raw, errors.Wrap(err, "failed to decompress zstd block")
	default:
		return nil, errors.Wrapf(ErrUnknownCompression, "cannot decompress block with %s", compression)
	}
}

func getZSTDEncoder(level int) (*zstd.Encoder, error) {
	if level <= 0 {
		level = options.DefaultZSTDLevel
	}

	zstdEncodersLock.Lock()
	defer zstdEncodersLock.Unlock()

	if encoder, ok := zstdEncoders[level]; ok {
		return encoder, nil
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create zstd encoder for level %d", level)
	}
	zstdEncoders[level] = encoder

	return encoder, nil
}

func getZSTDDecoder() (*zstd.Decoder, error) {
	zstdDecoderOnce.Do(func() {
		zstdDecoder, zstdDecoderErr = zstd.NewReader(nil)
		zstdDecoderErr = errors.Wrap(zstdDecoderErr, "failed to create zstd decoder")
	})

	return zstdDecoder, zstdDecoderErr
}
