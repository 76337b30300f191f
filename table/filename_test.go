package table

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "000007.ldb", FileName(7))
	assert.Equal(t, "1234567.ldb", FileName(1234567))
	assert.Equal(t, filepath.Join("db", "000012.ldb"), FilePath("db", 12))
}

func TestParseFileNumber(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		fileNumber, ok := ParseFileNumber(FilePath("db", 24782134))
		assert.True(t, ok)
		assert.Equal(t, uint64(24782134), fileNumber)
	})

	t.Run("legacy extension", func(t *testing.T) {
		fileNumber, ok := ParseFileNumber("000100.sst")
		assert.True(t, ok)
		assert.Equal(t, uint64(100), fileNumber)
	})

	t.Run("no extension", func(t *testing.T) {
		_, ok := ParseFileNumber("000100")
		assert.False(t, ok)
	})

	t.Run("not a table", func(t *testing.T) {
		for _, name := range []string{"LOCK", "IDENTITY", "LOG.old", ".ldb", "+12.ldb", "12a.ldb"} {
			_, ok := ParseFileNumber(name)
			assert.False(t, ok, name)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		_, ok := ParseFileNumber("99999999999999999999999.ldb")
		assert.False(t, ok)
	})
}
