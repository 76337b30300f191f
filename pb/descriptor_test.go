package pb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescriptor_Marshal_Unmarshal(t *testing.T) {
	descriptor := Descriptor{
		ComparatorName: "leveldb.BytewiseComparator",
		CreatedAt:      1585923485123456,
	}
	encoded := descriptor.Marshal()
	assert.Len(t, encoded, descriptor.Size())

	result := Descriptor{}
	err := result.Unmarshal(encoded)
	assert.NoError(t, err)
	assert.Equal(t, descriptor, result)
}

func TestDescriptor_Unmarshal(t *testing.T) {
	t.Run("too short for header", func(t *testing.T) {
		result := Descriptor{}
		err := result.Unmarshal([]byte{0, 1, 2})
		assert.Error(t, err)
	})

	t.Run("name cut off", func(t *testing.T) {
		descriptor := Descriptor{
			ComparatorName: "reverse",
		}
		encoded := descriptor.Marshal()

		result := Descriptor{}
		err := result.Unmarshal(encoded[:len(encoded)-2])
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		descriptor := Descriptor{CreatedAt: 12}
		result := Descriptor{ComparatorName: "stale"}
		err := result.Unmarshal(descriptor.Marshal())
		assert.NoError(t, err)
		assert.Equal(t, descriptor, result)
	})
}

func TestDescriptor_MarshalEx(t *testing.T) {
	descriptor := Descriptor{
		ComparatorName: "leveldb.BytewiseComparator",
	}
	err := descriptor.MarshalEx(make([]byte, descriptor.Size()-1))
	assert.Error(t, err)
}

func BenchmarkDescriptor_Marshal(b *testing.B) {
	descriptor := Descriptor{
		ComparatorName: "leveldb.BytewiseComparator",
		CreatedAt:      1585923485123456,
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = descriptor.Marshal()
	}
}
