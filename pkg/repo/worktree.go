package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
)

// writeFileAtomic writes data to path via a temp file in the same directory
// and a rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".gitlet-tmp-*")
	if err != nil {
		return fmt.Errorf("tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// workPath maps a slash-separated tracked name to its working-tree path.
func (r *Repo) workPath(name string) string {
	return filepath.Join(r.RootDir, filepath.FromSlash(name))
}

// readWorkingFile returns the content of a working file and whether it
// exists as a regular file.
func (r *Repo) readWorkingFile(name string) ([]byte, bool, error) {
	p := r.workPath(name)
	info, err := os.Stat(p)
	if err != nil {
		if isAbsent(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("stat %q: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return nil, false, nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", name, err)
	}
	return data, true, nil
}

// isAbsent reports a path that does not exist, including one whose parent
// is not a directory.
func isAbsent(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// lstatWorking returns what occupies name without following symlinks, or
// nil when nothing does.
func (r *Repo) lstatWorking(name string) (fs.FileInfo, error) {
	info, err := os.Lstat(r.workPath(name))
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %q: %w", name, err)
	}
	return info, nil
}

// parentNames returns the directories above name, outermost first:
// "a/b/c" yields "a" and "a/b".
func parentNames(name string) []string {
	var out []string
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		out = append(out, dir)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// writeWorkingFile overwrites a working file, creating parent directories.
// An empty directory tree at name is replaced.
func (r *Repo) writeWorkingFile(name string, data []byte) error {
	p := r.workPath(name)
	if info, err := os.Lstat(p); err == nil && info.IsDir() {
		if err := removeEmptyTree(p); err != nil {
			return fmt.Errorf("write working file %q: %w", name, err)
		}
	}
	if err := writeFileAtomic(p, data, 0o644); err != nil {
		return fmt.Errorf("write working file %q: %w", name, err)
	}
	return nil
}

// removeWorkingFile deletes a working file if present and prunes the
// directories it leaves empty.
func (r *Repo) removeWorkingFile(name string) error {
	p := r.workPath(name)
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove working file %q: %w", name, err)
	}
	removeEmptyParents(filepath.Dir(p), r.RootDir)
	return nil
}

// removeEmptyTree deletes dir and the directories below it. It fails
// without removing anything when dir holds a file.
func removeEmptyTree(dir string) error {
	var dirs []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return fmt.Errorf("%s: %w", p, fs.ErrExist)
		}
		dirs = append(dirs, p)
		return nil
	})
	if err != nil {
		return err
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil {
			return err
		}
	}
	return nil
}

// removeEmptyParents removes empty directories from dir upward, stopping at
// root.
func removeEmptyParents(dir, root string) {
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		if dir == root || !strings.HasPrefix(dir, root+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// workingFiles lists every regular, non-ignored file in the working tree as
// sorted slash-separated repo-relative names.
func (r *Repo) workingFiles() ([]string, error) {
	ic := NewIgnoreChecker(r.RootDir)
	var names []string
	err := filepath.WalkDir(r.RootDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == r.RootDir {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == gitletDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ic.IsIgnored(rel) {
			return nil
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk working tree: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
