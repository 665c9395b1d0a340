// Package process stops the Chrome instances started by the PDF backend,
// including the renderer and GPU helpers Chrome forks.
package process

import (
	"errors"
	"fmt"
)

// ErrInvalidPID is returned for PIDs that would target the caller's own
// process group.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree kills pid and every process it spawned.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
