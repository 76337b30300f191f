package options

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultZSTDLevel is the level used when a ZSTD compression string does not carry one.
const DefaultZSTDLevel = 3

// ChecksumVerificationMode tells when should DB verify checksum for table blocks.
type ChecksumVerificationMode int

const (
	// NoVerification indicates DB should not verify checksum for table blocks.
	NoVerification ChecksumVerificationMode = iota
	// OnTableRead indicates checksum should be verified while opening a table.
	OnTableRead
	// OnBlockRead indicates checksum should be verified on every table block read.
	OnBlockRead
	// OnTableAndBlockRead indicates checksum should be verified
	// on table opening and on every block read.
	OnTableAndBlockRead
)

// CompressionType specifies how a block should be compressed. The numeric value of each type is written alongside
// every stored block, so existing values must never be renumbered.
type CompressionType uint8

const (
	// None mode indicates that a block is not compressed.
	None CompressionType = iota
	// Snappy mode indicates that a block is compressed using Snappy algorithm.
	Snappy
	// ZSTD mode indicates that a block is compressed using ZSTD algorithm.
	ZSTD
)

// String returns the lower case name of the compression type, the same form accepted by ParseCompression.
func (c CompressionType) String() string {
	switch c {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case ZSTD:
		return "zstd"
	default:
		return "unknown(" + strconv.Itoa(int(c)) + ")"
	}
}

// Valid returns true if the compression type is one that blocks can be written with.
func (c CompressionType) Valid() bool {
	return c <= ZSTD
}

// ParseCompression returns the compression type and level given a string in the format of
// compression-type:compression-level. Only zstd accepts a level, for every other type the level will be 0.
func ParseCompression(cStr string) (CompressionType, int, error) {
	cStrSplit := strings.Split(strings.TrimSpace(cStr), ":")
	cType := strings.ToLower(cStrSplit[0])
	level := DefaultZSTDLevel

	if len(cStrSplit) > 2 {
		return None, 0, errors.Errorf("invalid compression string %q", cStr)
	}

	if len(cStrSplit) == 2 {
		if cType != "zstd" {
			return None, 0, errors.Errorf("compression type %s does not accept a level", cType)
		}

		var err error
		if level, err = strconv.Atoi(cStrSplit[1]); err != nil {
			return None, 0, errors.Wrapf(err, "invalid compression level in %q", cStr)
		}

		if level <= 0 {
			return None, 0, errors.Errorf("compression level(%d) must be greater than zero", level)
		}
	}

	switch cType {
	case "zstd":
		return ZSTD, level, nil
	case "snappy":
		return Snappy, 0, nil
	case "none", "":
		return None, 0, nil
	}

	return None, 0, errors.Errorf("compression type (%s) invalid", cType)
}
