package notleveldb

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type (
	// recordingLogger keeps every line it receives, it's used to check what a database logs.
	recordingLogger struct {
		lock  sync.Mutex
		lines []string
	}
)

func (r *recordingLogger) Logf(format string, args ...interface{}) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.lines = append(r.lines, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *recordingLogger) Lines() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string(nil), r.lines...)
}

func TestTimberLogger(t *testing.T) {
	logger := TimberLogger()
	assert.NotNil(t, logger)
	assert.Equal(t, logger, TimberLogger())
	assert.NotPanics(t, func() {
		logger.Logf("opening %s", "somewhere")
	})
}

func TestFileLogger(t *testing.T) {
	dir := newTestDir(t)
	env := NewEnv(EnvOptions{})
	defer env.Close()

	path := filepath.Join(dir, "LOG")
	logger, err := NewFileLogger(env, path)
	require.NoError(t, err)
	logger.now = func() time.Time {
		return time.Date(2020, 4, 3, 14, 5, 6, 789000, time.UTC)
	}

	logger.Logf("recovering %d files", 3)
	logger.Logf("line with newline\n")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "closing twice should be a no-op")

	// Writes after close are dropped, they should not panic.
	logger.Logf("dropped")

	data, err := env.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2020/04/03-14:05:06.000789 recovering 3 files\n"+
			"2020/04/03-14:05:06.000789 line with newline\n",
		string(data),
	)
}

func TestFileLogger_Concurrent(t *testing.T) {
	dir := newTestDir(t)
	env := NewEnv(EnvOptions{})
	defer env.Close()

	path := filepath.Join(dir, "LOG")
	logger, err := NewFileLogger(env, path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Logf("writer %d line %d", i, j)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, logger.Close())

	data, err := env.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 100)
}
