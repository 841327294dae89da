package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"yt2wp/internal/services"
)

// LockFileName is created inside the data root while a run is active.
const LockFileName = ".yt2wp.lock"

// acquireRunLock takes an exclusive, non-blocking lock. The lock's parent
// directory is created when missing.
func acquireRunLock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPrerequisite, stepPrerequisites, "Create lock directory", filepath.Dir(path), err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrPrerequisite, stepPrerequisites, "Acquire run lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrPrerequisite, stepPrerequisites, "Acquire run lock",
			fmt.Sprintf("another run holds %s", path), nil)
	}
	return lock, nil
}
