//go:build linux || darwin

package clone

import (
	"errors"

	"golang.org/x/sys/unix"
)

// cloneUnsupported reports whether the clone primitive failed because the
// filesystem or file pair cannot be cloned (non-CoW filesystem, cross-device
// pair). In those cases a plain byte copy satisfies the same contract.
func cloneUnsupported(err error) bool {
	return errors.Is(err, unix.ENOTSUP) ||
		errors.Is(err, unix.EXDEV) ||
		errors.Is(err, unix.EINVAL)
}
