package steamcmd

import (
	"context"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/tacticalops/armalaunch/pkg/errors"
)

// fileLock serializes SteamCMD invocations across processes with an
// advisory flock on a well-known lock file. Concurrent reconciliation
// runs against the same shared store would otherwise interleave
// directory swaps mid-update.
type fileLock struct {
	path string
	file *os.File
}

// acquire takes the lock, polling until it succeeds or the context is
// done. Lock contention is expected (another launcher run), so waiting
// is the normal path, not an error.
func (l *fileLock) acquire(ctx context.Context) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open lock file %s", l.path)
	}

	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			l.file = f
			return nil
		}
		if err != unix.EWOULDBLOCK {
			_ = f.Close()
			return errors.Wrapf(err, errors.ErrFileAccess, "flock %s", l.path)
		}
		select {
		case <-ctx.Done():
			_ = f.Close()
			return &ToolError{Kind: ErrTimedOut, Tail: []string{"timed out waiting for steamcmd lock: " + l.path}}
		case <-time.After(time.Second):
		}
	}
}

func (l *fileLock) release() {
	if l.file == nil {
		return
	}
	_ = unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	_ = l.file.Close()
	l.file = nil
}
