package cli

import (
	"fmt"

	"github.com/gofrs/flock"
)

// acquireRunLock takes the per-library run lock. Scans and applies are
// exclusive: two runs planning removals against the same library at
// once could trash an item one of them picked as a keeper.
func acquireRunLock(lockPath string) (*flock.Flock, error) {
	l := flock.New(lockPath)
	locked, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock on %s: %w", lockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("another eagledup run is already in progress (lock: %s)", lockPath)
	}
	return l, nil
}
