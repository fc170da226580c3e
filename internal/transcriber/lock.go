package transcriber

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 250 * time.Millisecond

// withFileLock runs fn while holding an exclusive lock on dir/name.
// The lock is shared with other vidscribe processes on the same host.
func withFileLock(ctx context.Context, dir, name string, fn func() error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}

	lockPath := filepath.Join(dir, name)
	lock := flock.New(lockPath)

	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return fmt.Errorf("acquire lock %s: not acquired", lockPath)
	}
	defer lock.Unlock()

	return fn()
}
