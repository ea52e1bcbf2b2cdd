//go:build linux

package poll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setAffinity pins the current OS thread to cpu (0-based).
// The caller must hold runtime.LockOSThread.
func setAffinity(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("poll: invalid cpu %d", cpu)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
