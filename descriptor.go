package notleveldb

import (
	"bytes"
	"encoding/binary"
	"path/filepath"

	"github.com/OneOfOne/xxhash"
	"github.com/elliotcourant/notleveldb/pb"
	"github.com/pkg/errors"
)

const (
	// descriptorVersion is included in the descriptor file to indicate the version of the encoding and format that the
	// database is using to create it's descriptor files.
	descriptorVersion = 0x01

	// descriptorPrefixSize is the magic text followed by the version.
	descriptorPrefixSize = 4 + 4

	// descriptorLenCrcSize is the length of the record followed by its checksum.
	descriptorLenCrcSize = 4 + 4
)

var (
	// magicalText is used to prefix the descriptor file. It is used to verify that the file was created by the
	// database and not by something else.
	magicalText = [4]byte{'!', 'L', 'D', 'B'}
)

var (
	// errBadMagic is returned when a descriptor file is missing a 4 byte prefix that is used as a signature of the
	// database.
	errBadMagic = errors.Wrap(ErrCorruption, "descriptor has bad magic")

	// errBadDescriptorVersion is returned when a descriptor file has a version number that the current database cannot
	// handle.
	errBadDescriptorVersion = errors.Wrap(ErrCorruption, "descriptor has bad version")

	// errBadDescriptorChecksum is returned when the checksum stored in the descriptor does not match the checksum of
	// the record read from it.
	errBadDescriptorChecksum = errors.Wrap(ErrCorruption, "descriptor has bad checksum")

	// errTruncatedDescriptor is returned when the descriptor file ends before the record does.
	errTruncatedDescriptor = errors.Wrap(ErrCorruption, "descriptor is truncated")
)

// encodeDescriptor builds the entire contents of a descriptor file.
func encodeDescriptor(descriptor pb.Descriptor) []byte {
	record := descriptor.Marshal()

	buf := make([]byte, descriptorPrefixSize+descriptorLenCrcSize, descriptorPrefixSize+descriptorLenCrcSize+len(record))

	// Create the first 8 bytes, this includes a special prefix to verify the file was created using this particular
	// version of the database.
	copy(buf[0:4], magicalText[:])
	binary.BigEndian.PutUint32(buf[4:8], descriptorVersion)

	// Then the size and checksum of the record.
	binary.BigEndian.PutUint32(buf[8:12], uint32(len(record)))
	binary.BigEndian.PutUint32(buf[12:16], xxhash.Checksum32(record))

	return append(buf, record...)
}

// decodeDescriptor parses the contents of a descriptor file. Every error returned has ErrCorruption as its cause.
func decodeDescriptor(data []byte) (pb.Descriptor, error) {
	if len(data) < descriptorPrefixSize {
		return pb.Descriptor{}, errors.Wrapf(errBadMagic, "could not read prefix, only %d bytes", len(data))
	} else if !bytes.Equal(data[0:4], magicalText[:]) {
		return pb.Descriptor{}, errors.Wrap(errBadMagic, "missing magic prefix")
	}

	if version := binary.BigEndian.Uint32(data[4:8]); version != descriptorVersion {
		return pb.Descriptor{}, errors.Wrapf(errBadDescriptorVersion, "got version %d", version)
	}

	data = data[descriptorPrefixSize:]
	if len(data) < descriptorLenCrcSize {
		return pb.Descriptor{}, errTruncatedDescriptor
	}

	length := binary.BigEndian.Uint32(data[0:4])
	checksum := binary.BigEndian.Uint32(data[4:8])
	data = data[descriptorLenCrcSize:]

	// Sanity check to make sure we don't read past the end of the file.
	if uint32(len(data)) < length {
		return pb.Descriptor{}, errors.Wrapf(errTruncatedDescriptor, "record length: %d remaining: %d", length, len(data))
	}

	record := data[:length]
	if xxhash.Checksum32(record) != checksum {
		return pb.Descriptor{}, errBadDescriptorChecksum
	}

	var descriptor pb.Descriptor
	if err := descriptor.Unmarshal(record); err != nil {
		return pb.Descriptor{}, errors.Wrap(ErrCorruption, err.Error())
	}

	return descriptor, nil
}

// writeDescriptor replaces the descriptor in the directory. The new descriptor is written to a temporary file first
// and renamed over the old one, so a crash leaves either the old descriptor or the new one, never half of one.
func writeDescriptor(env Env, directory string, descriptor pb.Descriptor) error {
	rewritePath := filepath.Join(directory, descriptorRewriteFileName)

	file, err := env.NewWritableFile(rewritePath)
	if err != nil {
		return err
	}

	// Write the data to the file.
	if _, err := file.Write(encodeDescriptor(descriptor)); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "failed to write descriptor")
	}

	// Sync the changes to the disk.
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return errors.Wrap(err, "failed to sync descriptor")
	}

	// In windows the files should be closed before doing a rename.
	if err := file.Close(); err != nil {
		return errors.Wrap(err, "failed to close descriptor")
	}

	// Rename the rewritten file to be the normal descriptor file name.
	if err := env.RenameFile(rewritePath, filepath.Join(directory, descriptorFileName)); err != nil {
		return err
	}

	return env.SyncDir(directory)
}

// readDescriptor reads and parses the descriptor in the directory.
func readDescriptor(env Env, directory string) (pb.Descriptor, error) {
	data, err := env.ReadFile(filepath.Join(directory, descriptorFileName))
	if err != nil {
		return pb.Descriptor{}, err
	}

	return decodeDescriptor(data)
}
