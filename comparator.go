package notleveldb

import (
	"bytes"
)

const (
	bytewiseComparatorName = "leveldb.BytewiseComparator"
)

var (
	bytewise Comparator = bytewiseComparator{}
)

type (
	// Comparator provides a total order across keys. The name of a comparator is persisted with the dataset, so a
	// comparator that orders keys differently must also have a different name.
	//
	// Implementations must be safe to use from multiple goroutines at once.
	Comparator interface {
		// Compare returns -1 if a < b, 0 if a == b and +1 if a > b.
		Compare(a, b []byte) int

		// Name identifies the ordering. Names starting with "leveldb." are reserved.
		Name() string

		// FindShortestSeparator returns a short key in the range [start, limit). It is used to shrink index blocks,
		// returning start as is is always a valid implementation.
		FindShortestSeparator(start, limit []byte) []byte

		// FindShortSuccessor returns a short key that is >= key. Returning key as is is always a valid
		// implementation.
		FindShortSuccessor(key []byte) []byte
	}

	bytewiseComparator struct{}
)

// BytewiseComparator returns a comparator that uses lexicographic byte-wise ordering. The same instance is returned
// every time.
func BytewiseComparator() Comparator {
	return bytewise
}

func (bytewiseComparator) Compare(a, b []byte) int {
	return bytes.Compare(a, b)
}

func (bytewiseComparator) Name() string {
	return bytewiseComparatorName
}

func (bytewiseComparator) FindShortestSeparator(start, limit []byte) []byte {
	// Find the length of the common prefix.
	minLength := len(start)
	if len(limit) < minLength {
		minLength = len(limit)
	}

	diffIndex := 0
	for diffIndex < minLength && start[diffIndex] == limit[diffIndex] {
		diffIndex++
	}

	// If one of the keys is a prefix of the other then we can't shorten anything.
	if diffIndex >= minLength {
		return start
	}

	diffByte := start[diffIndex]
	if diffByte < 0xff && diffByte+1 < limit[diffIndex] {
		separator := make([]byte, diffIndex+1)
		copy(separator, start[:diffIndex+1])
		separator[diffIndex]++
		return separator
	}

	return start
}

func (bytewiseComparator) FindShortSuccessor(key []byte) []byte {
	// Find the first byte that can be incremented and cut the key off right after it.
	for i, b := range key {
		if b != 0xff {
			successor := make([]byte, i+1)
			copy(successor, key[:i+1])
			successor[i]++
			return successor
		}
	}

	// The key is a run of 0xff bytes, leave it alone.
	return key
}
