package table

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elliotcourant/timber"
)

const (
	TableFileExtension = ".ldb"

	// LegacyTableFileExtension is still accepted when reading a directory, tables are never written with it.
	LegacyTableFileExtension = ".sst"
)

// ParseFileNumber reads the file number out of a table file name. If the name is not a table file name then this
// method will return false.
func ParseFileNumber(name string) (fileNumber uint64, ok bool) {
	name = filepath.Base(name)

	// Make sure the provided file has one of the table file extensions.
	switch {
	case strings.HasSuffix(name, TableFileExtension):
		name = strings.TrimSuffix(name, TableFileExtension)
	case strings.HasSuffix(name, LegacyTableFileExtension):
		name = strings.TrimSuffix(name, LegacyTableFileExtension)
	default:
		return
	}

	// Table file numbers are plain decimal without a sign.
	if len(name) == 0 || name[0] < '0' || name[0] > '9' {
		return
	}

	fileNumber, err := strconv.ParseUint(name, 10, 64)
	if err != nil {
		timber.Warningf("could not parse file number of table file %s: %v", name, err)
		return 0, false
	}

	return fileNumber, true
}

// FileName returns the name of the table file with the file number, padded to at least 6 digits.
func FileName(fileNumber uint64) string {
	return fmt.Sprintf("%06d%s", fileNumber, TableFileExtension)
}

// FilePath combines the directory with the file number to make a table file path.
func FilePath(directory string, fileNumber uint64) string {
	return filepath.Join(directory, FileName(fileNumber))
}
