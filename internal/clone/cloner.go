package clone

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Cloner creates dst as a duplicate of src. Implementations must create dst
// exclusively and fail when it already exists; they never truncate an
// existing file.
type Cloner interface {
	Clone(src, dst string) error
}

// copyCloner satisfies the Cloner contract with a plain byte copy. It backs
// platforms and filesystems without a copy-on-write primitive, and tests
// running on an in-memory filesystem.
type copyCloner struct {
	fs afero.Fs
}

func (c copyCloner) Clone(src, dst string) error {
	in, err := c.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := c.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = c.fs.Remove(dst)
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	// The clone primitive carries the source's permission bits over to the
	// target; the byte-copy substitute has to do the same explicitly since
	// the create mode above is subject to the umask.
	return c.fs.Chmod(dst, srcInfo.Mode().Perm())
}
