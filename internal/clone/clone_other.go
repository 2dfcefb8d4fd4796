//go:build !linux && !darwin

// No copy-on-write primitive is exposed on this platform; the plain byte
// copy satisfies the same create-exclusively contract.

package clone

import "github.com/spf13/afero"

func newPlatformCloner(fs afero.Fs) Cloner {
	return copyCloner{fs: fs}
}
