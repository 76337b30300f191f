package z

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser(t *testing.T) {
	closer := NewCloser(1)
	stopped := make(chan struct{})

	go func() {
		defer closer.Done()
		<-closer.HasBeenClosed()
		close(stopped)
	}()

	closer.SignalAndWait()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("goroutine was not stopped")
	}

	// Signalling twice must not panic.
	closer.Signal()
}

func TestOpenFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "z-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "file")

	t.Run("existing file missing", func(t *testing.T) {
		_, err := OpenExistingFile(path, ReadOnly)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("trunc then append", func(t *testing.T) {
		f, err := OpenTruncFile(path, false)
		require.NoError(t, err)
		_, err = f.Write([]byte("abc"))
		require.NoError(t, err)
		require.NoError(t, FileSync(f))
		require.NoError(t, f.Close())

		f, err = OpenAppendFile(path)
		require.NoError(t, err)
		_, err = f.Write([]byte("def"))
		require.NoError(t, err)
		require.NoError(t, f.Close())

		data, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "abcdef", string(data))
	})

	t.Run("existing file read only", func(t *testing.T) {
		f, err := OpenExistingFile(path, ReadOnly)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.Write([]byte("x"))
		assert.Error(t, err)
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil))
	assert.Nil(t, Wrapf(nil, "nothing"))

	base := errors.New("base")
	assert.Equal(t, base, errors.Cause(Wrap(base)))

	wrapped := Wrapf(base, "while doing %s", "things")
	assert.Equal(t, base, errors.Cause(wrapped))
	assert.Contains(t, wrapped.Error(), "while doing things")
}
