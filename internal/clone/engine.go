// Package clone implements the copy engine behind cf: single-file and
// recursive directory copies built on the OS copy-on-write clone primitive,
// with backup, force, interactive, preserve and update-only policies applied
// per file.
package clone

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// BackupSuffix is appended to a target path to form its backup path.
const BackupSuffix = "~"

// Op identifies what the engine did with a path.
type Op string

const (
	OpCloned   Op = "cloned"
	OpSkipped  Op = "skipped"
	OpBackedUp Op = "backed up"
)

// Action is one entry of the engine's report: a path and what happened to it.
type Action struct {
	Op   Op
	Path string
}

// SkipError reports that the user declined an interactive overwrite.
// It is an outcome, not a failure; callers treat it as success.
type SkipError struct {
	Path string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped %s", e.Path)
}

// Engine performs clone-based copies against a filesystem. The zero value is
// not usable; construct with New.
type Engine struct {
	fs      afero.Fs
	cloner  Cloner
	prompt  func(target string) bool
	log     logrus.FieldLogger
	actions []Action
}

// New returns an engine operating on the real filesystem with the platform
// clone primitive and a terminal prompt.
func New(log logrus.FieldLogger) *Engine {
	fs := afero.NewOsFs()
	return &Engine{
		fs:     fs,
		cloner: newPlatformCloner(fs),
		prompt: confirmOverwrite,
		log:    log,
	}
}

// Actions returns the per-file report of everything the engine did,
// in the order it happened.
func (e *Engine) Actions() []Action {
	return e.actions
}

// Run copies source to target under the given policy. Sources that are
// directories require policy.Recursive. A *SkipError return means the user
// declined an overwrite.
func (e *Engine) Run(source, target string, policy Policy) error {
	e.log.Debugf("copying %s to %s (policy %+v)", source, target, policy)

	srcInfo, err := e.fs.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source does not exist: %s", source)
		}
		return fmt.Errorf("stat source %s: %w", source, err)
	}

	tgtInfo, err := e.fs.Stat(target)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		tgtInfo = nil
		if srcInfo.IsDir() {
			e.log.Debugf("creating target directory %s", target)
			if err := e.fs.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("create target directory %s: %w", target, err)
			}
		}
	default:
		return fmt.Errorf("stat target %s: %w", target, err)
	}

	if srcInfo.IsDir() {
		if !policy.Recursive {
			return fmt.Errorf("source %s is a directory (use -R for a recursive copy)", source)
		}
		if tgtInfo != nil && !tgtInfo.IsDir() {
			return fmt.Errorf("cannot copy directory %s over file %s", source, target)
		}
		return e.cloneDirectory(source, target, policy)
	}

	// Copying a file into an existing directory targets dir/<basename>.
	dst := target
	if tgtInfo != nil && tgtInfo.IsDir() {
		dst = filepath.Join(target, filepath.Base(source))
		e.log.Debugf("target is a directory, adjusted target path to %s", dst)
	}
	return e.cloneFile(source, dst, policy)
}

// cloneDirectory copies the entries of src into dst depth-first, in the
// order the filesystem enumerates them. The first error aborts the whole
// traversal; already-copied files are left in place.
func (e *Engine) cloneDirectory(src, dst string, policy Policy) error {
	e.log.Debugf("copying directory %s to %s", src, dst)

	entries, err := afero.ReadDir(e.fs, src)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", src, err)
	}

	// Overwrites inside a tree are gated by backup/force alone; the prompt
	// applies only to the top-level target.
	filePolicy := policy
	filePolicy.Interactive = false

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := e.fs.MkdirAll(dstPath, 0755); err != nil {
				return fmt.Errorf("create directory %s: %w", dstPath, err)
			}
			if err := e.cloneDirectory(srcPath, dstPath, policy); err != nil {
				return err
			}
			if policy.Preserve {
				// After the contents, so a read-only source directory does
				// not lock the copy out of its own target.
				if err := e.fs.Chmod(dstPath, entry.Mode().Perm()); err != nil {
					return fmt.Errorf("preserve permissions of %s: %w", dstPath, err)
				}
			}
			continue
		}

		if policy.Update {
			upToDate, err := e.upToDate(entry, dstPath)
			if err != nil {
				return err
			}
			if upToDate {
				e.log.Debugf("skipping %s (target is not older)", srcPath)
				e.record(OpSkipped, dstPath)
				continue
			}
		}

		if err := e.cloneFile(srcPath, dstPath, filePolicy); err != nil {
			return err
		}
	}
	return nil
}

// cloneFile copies a single regular file. An existing target has to pass the
// overwrite gate first.
func (e *Engine) cloneFile(src, dst string, policy Policy) error {
	if _, err := e.fs.Stat(dst); err == nil {
		if err := e.gateOverwrite(dst, policy); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat target %s: %w", dst, err)
	}

	e.log.Debugf("cloning %s to %s", src, dst)
	if err := e.cloner.Clone(src, dst); err != nil {
		return fmt.Errorf("clone %s to %s: %w", src, dst, err)
	}
	e.record(OpCloned, dst)

	if policy.Preserve {
		srcInfo, err := e.fs.Stat(src)
		if err != nil {
			return fmt.Errorf("stat source %s: %w", src, err)
		}
		e.log.Debugf("preserving permissions for %s", dst)
		if err := e.fs.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
			return fmt.Errorf("preserve permissions of %s: %w", dst, err)
		}
	}
	return nil
}

// gateOverwrite decides whether the existing file at dst may be replaced and
// removes it when the policy allows. The clone primitive requires the target
// to not exist, so an allowed overwrite always removes first.
func (e *Engine) gateOverwrite(dst string, policy Policy) error {
	approved := false
	if policy.Interactive {
		if !e.prompt(dst) {
			e.record(OpSkipped, dst)
			return &SkipError{Path: dst}
		}
		approved = true
	}

	if policy.Backup {
		if err := e.backup(dst); err != nil {
			return err
		}
	} else if !policy.Force && !approved {
		return fmt.Errorf("file exists: %s", dst)
	}

	if err := e.fs.Remove(dst); err != nil {
		return fmt.Errorf("remove existing target %s: %w", dst, err)
	}
	return nil
}

// backup copies path to path~, replacing any previous backup.
func (e *Engine) backup(path string) error {
	backupPath := path + BackupSuffix
	e.log.Debugf("backing up %s to %s", path, backupPath)

	info, err := e.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	in, err := e.fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer in.Close()

	out, err := e.fs.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create backup %s: %w", backupPath, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("back up %s to %s: %w", path, backupPath, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close backup %s: %w", backupPath, err)
	}

	e.record(OpBackedUp, backupPath)
	return nil
}

// upToDate reports whether dst exists and is not strictly older than src.
func (e *Engine) upToDate(src os.FileInfo, dst string) (bool, error) {
	info, err := e.fs.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat target %s: %w", dst, err)
	}
	return !src.ModTime().After(info.ModTime()), nil
}

func (e *Engine) record(op Op, path string) {
	e.actions = append(e.actions, Action{Op: op, Path: path})
}
