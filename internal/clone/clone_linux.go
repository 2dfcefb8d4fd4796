//go:build linux

// Linux implementation using the FICLONE ioctl, which creates a
// copy-on-write clone on filesystems that support reflinks (Btrfs, XFS with
// reflink=1, and others). Filesystems without reflink support return ENOTSUP,
// in which case the bytes are copied through the already-open descriptors.

package clone

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

type linuxCloner struct{}

func newPlatformCloner(fs afero.Fs) Cloner {
	return linuxCloner{}
}

func (c linuxCloner) Clone(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if err := unix.IoctlFileClone(int(out.Fd()), int(in.Fd())); err != nil {
		if !cloneUnsupported(err) {
			out.Close()
			_ = os.Remove(dst)
			return &os.LinkError{Op: "ficlone", Old: src, New: dst, Err: err}
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			_ = os.Remove(dst)
			return fmt.Errorf("copy %s to %s: %w", src, dst, err)
		}
	}

	if err := out.Close(); err != nil {
		return err
	}
	// Creation mode is subject to the umask; restore the source bits.
	return os.Chmod(dst, srcInfo.Mode().Perm())
}
