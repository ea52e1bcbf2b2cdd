//go:build !linux

package poll

import "errors"

var errAffinityUnsupported = errors.New("poll: cpu affinity is only supported on linux")

// setAffinity is unsupported off linux.
func setAffinity(cpu int) error {
	return errAffinityUnsupported
}
