package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Acquire takes the single-instance lock file. Overlapping invocations are
// not allowed to race on the same artifact, so a held lock fails immediately
// instead of blocking.
func Acquire(path string) (release func(), err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fileLock := flock.New(path)

	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to attempt lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock file %s is held, another backup run is in progress", path)
	}

	return func() {
		_ = fileLock.Unlock()
	}, nil
}
