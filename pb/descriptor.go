package pb

import (
	"encoding/binary"
	"fmt"
)

const (
	// descriptorHeaderSize is the fixed portion of an encoded Descriptor. The comparator name follows it.
	descriptorHeaderSize = 0 + // Simply here to align the other items.
		8 + // CreatedAt (int64 - 8 bytes)
		4 // ComparatorName length (uint32 - 4 bytes)
)

type (
	// Descriptor is the identity of a dataset as it is persisted on the disk. It records the things that must never
	// change for the lifetime of the dataset, like the name of the comparator the keys were ordered with.
	Descriptor struct {
		// ComparatorName is the Name() of the comparator that was used when the dataset was created.
		ComparatorName string

		// CreatedAt is the unix timestamp (microseconds) at which the dataset was created.
		CreatedAt int64
	}
)

// Size returns the number of bytes the descriptor will consume once marshalled.
func (d *Descriptor) Size() int {
	return descriptorHeaderSize + len(d.ComparatorName)
}

func (d *Descriptor) MarshalEx(dst []byte) error {
	// If the provided bytes aren't long enough to hold the descriptor then we can fail early.
	if len(dst) < d.Size() {
		return fmt.Errorf(
			"cannot marshal Descriptor, buffer is too small. Need: %d Got: %d",
			d.Size(),
			len(dst),
		)
	}

	i := 0

	binary.BigEndian.PutUint64(dst[i:i+8], uint64(d.CreatedAt))
	i += 8

	binary.BigEndian.PutUint32(dst[i:i+4], uint32(len(d.ComparatorName)))
	i += 4

	copy(dst[i:], d.ComparatorName)

	return nil
}

func (d *Descriptor) Marshal() []byte {
	buf := make([]byte, d.Size())
	_ = d.MarshalEx(buf)
	return buf
}

func (d *Descriptor) Unmarshal(src []byte) error {
	// We need at least the header to know how long the comparator name is.
	if len(src) < descriptorHeaderSize {
		return fmt.Errorf(
			"cannot unmarshal Descriptor, buffer is too small. Need: %d Got: %d",
			descriptorHeaderSize,
			len(src),
		)
	}
	*d = Descriptor{}

	i := 0

	d.CreatedAt = int64(binary.BigEndian.Uint64(src[i : i+8]))
	i += 8

	nameLength := int(binary.BigEndian.Uint32(src[i : i+4]))
	i += 4

	// Once we know the length of the name we can assert that the source actually has that many bytes left.
	if len(src)-i < nameLength {
		return fmt.Errorf(
			"cannot unmarshal Descriptor, comparator name is cut off. expected: %d got: %d",
			nameLength,
			len(src)-i,
		)
	}

	d.ComparatorName = string(src[i : i+nameLength])

	return nil
}
