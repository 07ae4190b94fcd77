package steamcmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	l := &fileLock{path: path}

	require.NoError(t, l.acquire(context.Background()))
	l.release()

	// reacquirable after release
	require.NoError(t, l.acquire(context.Background()))
	l.release()
}

func TestFileLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	holder := &fileLock{path: path}
	require.NoError(t, holder.acquire(context.Background()))
	defer holder.release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	waiter := &fileLock{path: path}
	err := waiter.acquire(ctx)
	require.Error(t, err)
	te, ok := AsToolError(err)
	require.True(t, ok)
	assert.Equal(t, ErrTimedOut, te.Kind)
}
