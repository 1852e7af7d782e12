// Package rfs is the single seam every filesystem mutation in rebuild's
// execution path goes through. Every destructive call (create, delete,
// symlink, write) is checked against one whitelisted prefix -- the output
// directory -- before it touches disk; reads and existence checks are not
// restricted. A workflow's config-file code blocks run outside this seam
// (they're handed raw paths assembled by the user's own bash), so this
// whitelist only protects rebuild's own bookkeeping, not arbitrary task code.
package rfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// Fs owns the one directory rebuild is allowed to mutate and a dry-run flag
// that, when set, turns every destructive call into a KindDryRun error
// instead of touching disk.
type Fs struct {
	outputPrefix string
	dryRun       bool
}

// New creates an Fs rooted at outputPrefix.
func New(outputPrefix string, dryRun bool) *Fs {
	return &Fs{outputPrefix: outputPrefix, dryRun: dryRun}
}

// SetDryRun toggles dry-run mode.
func (f *Fs) SetDryRun(dryRun bool) { f.dryRun = dryRun }

// EnsureOutputDirExists creates the output directory if it doesn't already
// exist, then canonicalizes outputPrefix so every later whitelist check
// compares against an absolute, symlink-resolved path.
func (f *Fs) EnsureOutputDirExists(verbose bool) error {
	info, err := os.Stat(f.outputPrefix)
	switch {
	case os.IsNotExist(err):
		if f.dryRun {
			if verbose {
				println("Dry run. Not creating output directory", f.outputPrefix)
			}
		} else {
			if err := os.MkdirAll(f.outputPrefix, 0o755); err != nil {
				return rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating output directory %q", f.outputPrefix)
			}
		}
	case err != nil:
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "statting output directory %q", f.outputPrefix)
	case !info.IsDir():
		return rerrors.New(rerrors.KindNotDirectory, "specified output directory %q is not a directory", f.outputPrefix)
	}

	if resolved, err := filepath.Abs(f.outputPrefix); err == nil {
		if canon, err := filepath.EvalSymlinks(resolved); err == nil {
			f.outputPrefix = canon
		} else {
			f.outputPrefix = resolved
		}
	}
	return nil
}

// Exists reports whether path exists on disk, including dangling symlinks.
func (f *Fs) Exists(path string) bool {
	if _, err := os.Lstat(path); err == nil {
		return true
	}
	return false
}

// IsDir reports whether path exists and is (or resolves through a symlink
// to) a directory.
func (f *Fs) IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, rerrors.Wrap(rerrors.KindFilesystemIO, err, "statting %q", path)
	}
	return info.IsDir(), nil
}

// CreateDir creates path and any missing parents.
func (f *Fs) CreateDir(path string) error {
	if err := f.checkWhitelist(path); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating dir %q", path)
	}
	return nil
}

// CreateParentDir creates the parent directory of path.
func (f *Fs) CreateParentDir(path string) error {
	return f.CreateDir(filepath.Dir(path))
}

// WriteFile writes text to path in full, whitelist permitting.
func (f *Fs) WriteFile(path, text string) error {
	if err := f.checkWhitelist(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "writing file %q", path)
	}
	return nil
}

// DeleteFile removes a single file.
func (f *Fs) DeleteFile(path string) error {
	if err := f.checkWhitelist(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "deleting file %q", path)
	}
	return nil
}

// DeleteDir recursively removes path.
func (f *Fs) DeleteDir(path string) error {
	if err := f.checkWhitelist(path); err != nil {
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "deleting dir %q", path)
	}
	return nil
}

// Symlink creates symlink pointing at tgt.
func (f *Fs) Symlink(tgt, symlink string) error {
	if err := f.checkWhitelist(symlink); err != nil {
		return err
	}
	if err := os.Symlink(tgt, symlink); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "symlinking %q to %q", symlink, tgt)
	}
	return nil
}

// Copy copies src to tgt, recursively descending through directories and
// preserving symlinks (rewriting any symlink target that pointed inside src
// to the corresponding path inside tgt).
func (f *Fs) Copy(src, tgt string) error {
	if err := f.checkWhitelist(tgt); err != nil {
		return err
	}
	return copyPath(src, tgt, src, tgt)
}

// ReadToBuf reads the entire contents of path into a string.
func (f *Fs) ReadToBuf(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", rerrors.Wrap(rerrors.KindFilesystemIO, err, "reading %q", path)
	}
	return string(b), nil
}

// ReadDir lists the entries of a directory.
func (f *Fs) ReadDir(path string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.KindFilesystemIO, err, "reading dir %q", path)
	}
	return entries, nil
}

func (f *Fs) isWhitelisted(path string) bool {
	rel, err := filepath.Rel(f.outputPrefix, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && rel != "")
}

func (f *Fs) checkWhitelist(path string) error {
	if f.dryRun {
		return rerrors.New(rerrors.KindDryRun, "dry run: refusing to touch %q", path)
	}
	if !f.isWhitelisted(path) {
		return rerrors.New(rerrors.KindNotWhitelisted, "can't perform IO operation: %q is not whitelisted", path)
	}
	return nil
}

func copyPath(srcRoot, tgtRoot, src, tgt string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "statting %q", src)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		linkTgt, err := os.Readlink(src)
		if err != nil {
			return rerrors.Wrap(rerrors.KindFilesystemIO, err, "reading link %q", src)
		}
		newTgt := resolveNewLinkTarget(srcRoot, tgtRoot, linkTgt)
		return os.Symlink(newTgt, tgt)
	case info.Mode().IsRegular():
		return copyFile(src, tgt)
	case info.IsDir():
		return copyDir(srcRoot, tgtRoot, src, tgt)
	default:
		return rerrors.New(rerrors.KindUnknownPathType, "path is neither file nor dir: %q", src)
	}
}

func copyDir(srcRoot, tgtRoot, src, tgt string) error {
	if err := os.MkdirAll(tgt, 0o755); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating dir %q", tgt)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "reading dir %q", src)
	}
	for _, entry := range entries {
		if err := copyPath(srcRoot, tgtRoot, filepath.Join(src, entry.Name()), filepath.Join(tgt, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, tgt string) error {
	in, err := os.Open(src)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "opening %q", src)
	}
	defer in.Close()

	out, err := os.Create(tgt)
	if err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "creating %q", tgt)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return rerrors.Wrap(rerrors.KindFilesystemIO, err, "copying %q to %q", src, tgt)
	}
	return nil
}

// resolveNewLinkTarget rewrites a symlink target that pointed inside srcRoot
// to the corresponding path inside tgtRoot; an external link is left as-is.
func resolveNewLinkTarget(srcRoot, tgtRoot, origLinkTgt string) string {
	rel, err := filepath.Rel(srcRoot, origLinkTgt)
	if err != nil || strings.HasPrefix(rel, "..") {
		return origLinkTgt
	}
	return filepath.Join(tgtRoot, rel)
}
