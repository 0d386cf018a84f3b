package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// resolveCommit expands a full or abbreviated commit id.
func (r *Repo) resolveCommit(id string) (object.Hash, *object.CommitObj, error) {
	h, err := r.Store.ResolveCommitPrefix(id)
	switch {
	case errors.Is(err, object.ErrAmbiguous):
		return "", nil, ErrAmbiguousCommitID
	case errors.Is(err, object.ErrNotFound):
		return "", nil, ErrCommitNotFound
	case err != nil:
		return "", nil, fmt.Errorf("resolve commit %q: %w", id, err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return "", nil, fmt.Errorf("resolve commit %q: %w", id, err)
	}
	return h, c, nil
}

// CheckoutFile restores one file from the head commit. Staging and HEAD are
// left alone.
func (r *Repo) CheckoutFile(path string) error {
	_, head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("checkout file: %w", err)
	}
	return r.restoreFile(head, path)
}

// CheckoutCommitFile restores one file from the commit id names, which may
// be abbreviated. Staging and HEAD are left alone.
func (r *Repo) CheckoutCommitFile(id, path string) error {
	_, c, err := r.resolveCommit(id)
	if err != nil {
		return err
	}
	return r.restoreFile(c, path)
}

func (r *Repo) restoreFile(c *object.CommitObj, path string) error {
	name, err := r.repoRelPath(path)
	if err != nil {
		return ErrFileNotInCommit
	}
	blobID, ok := c.Files[name]
	if !ok {
		return ErrFileNotInCommit
	}
	blob, err := r.Store.ReadBlob(blobID)
	if err != nil {
		return fmt.Errorf("checkout file %q: %w", name, err)
	}
	if err := r.writeWorkingFile(name, blob.Data); err != nil {
		return fmt.Errorf("checkout file: %w", err)
	}
	r.log.WithFields(logrus.Fields{"path": name, "blob": blobID}).Debug("file restored")
	return nil
}

// CheckoutBranch replaces the working tree with the branch's head commit,
// makes the branch current and clears staging.
func (r *Repo) CheckoutBranch(name string) error {
	target, err := r.BranchHead(name)
	if err != nil {
		return err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("checkout branch: %w", err)
	}
	if current == name {
		return ErrCheckoutCurrentBranch
	}

	_, head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("checkout branch: %w", err)
	}
	tc, err := r.Store.ReadCommit(target)
	if err != nil {
		return fmt.Errorf("checkout branch: %w", err)
	}
	if err := r.checkoutCommit(tc, head); err != nil {
		return err
	}
	if err := r.SetCurrentBranch(name); err != nil {
		return fmt.Errorf("checkout branch: %w", err)
	}
	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("checkout branch: %w", err)
	}
	return nil
}

// checkoutCommit makes the working tree match target, assuming it currently
// reflects current. Nothing is touched unless every check passes: no
// untracked file may be overwritten, and every blob of target must be
// readable. Staging is not consulted.
func (r *Repo) checkoutCommit(target, current *object.CommitObj) error {
	inTheWay, err := r.untrackedInTheWay(current, target.Files)
	if err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	if len(inTheWay) > 0 {
		r.log.WithField("paths", inTheWay).Debug("checkout refused")
		return ErrUntrackedFileInTheWay
	}

	names := sortedNames(target.Files)
	contents := make(map[string][]byte, len(names))
	for _, name := range names {
		blob, err := r.Store.ReadBlob(target.Files[name])
		if err != nil {
			return fmt.Errorf("checkout: read blob for %q: %w", name, err)
		}
		contents[name] = blob.Data
	}

	removed := 0
	for _, name := range sortedNames(current.Files) {
		if _, keep := target.Files[name]; keep {
			continue
		}
		if err := r.removeWorkingFile(name); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
		removed++
	}
	for _, name := range names {
		if err := r.writeWorkingFile(name, contents[name]); err != nil {
			return fmt.Errorf("checkout: %w", err)
		}
	}

	r.log.WithFields(logrus.Fields{
		"written": len(names),
		"removed": removed,
	}).Debug("working tree checked out")
	return nil
}

// untrackedInTheWay lists working-tree paths that hold content current does
// not track and that writing files would replace or collide with:
//   - an untracked, non-ignored file at a target path whose content differs
//   - a directory at a target path holding anything current does not track
//   - an untracked file where a target path needs a parent directory
func (r *Repo) untrackedInTheWay(current *object.CommitObj, files map[string]object.Hash) ([]string, error) {
	ic := NewIgnoreChecker(r.RootDir)
	found := map[string]bool{}
	checkedDirs := map[string]bool{}
	for _, name := range sortedNames(files) {
		for _, dir := range parentNames(name) {
			if checkedDirs[dir] {
				continue
			}
			checkedDirs[dir] = true
			info, err := r.lstatWorking(dir)
			if err != nil {
				return nil, err
			}
			if info == nil || info.IsDir() {
				continue
			}
			// A tracked file here is removed before name is written.
			if _, tracked := current.Files[dir]; !tracked {
				found[dir] = true
			}
		}

		info, err := r.lstatWorking(name)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		if info.IsDir() {
			held, err := r.dirHoldsUntracked(name, current)
			if err != nil {
				return nil, err
			}
			if held {
				found[name] = true
			}
			continue
		}
		if _, tracked := current.Files[name]; tracked {
			continue
		}
		if ic.IsIgnored(name) {
			continue
		}
		if !info.Mode().IsRegular() {
			found[name] = true
			continue
		}
		data, err := os.ReadFile(r.workPath(name))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", name, err)
		}
		if r.Store.HashOf(object.TypeBlob, data) != files[name] {
			found[name] = true
		}
	}

	out := make([]string, 0, len(found))
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// dirHoldsUntracked reports whether the directory at name contains any
// non-directory entry that current does not track. Tracked entries are
// removed by a checkout that writes a file at name.
func (r *Repo) dirHoldsUntracked(name string, current *object.CommitObj) (bool, error) {
	held := false
	err := filepath.WalkDir(r.workPath(name), func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.RootDir, p)
		if err != nil {
			return err
		}
		if _, tracked := current.Files[filepath.ToSlash(rel)]; tracked && d.Type().IsRegular() {
			return nil
		}
		held = true
		return fs.SkipAll
	})
	if err != nil {
		return false, fmt.Errorf("scan %q: %w", name, err)
	}
	return held, nil
}

func sortedNames(files map[string]object.Hash) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
