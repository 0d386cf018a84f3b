package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// checkBranchName rejects names that cannot live as a single file under
// refs/heads/.
func checkBranchName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidBranchName
	case strings.ContainsAny(name, "/\\\x00\n\r"):
		return ErrInvalidBranchName
	case strings.HasPrefix(name, "."), strings.HasSuffix(name, ".lock"):
		return ErrInvalidBranchName
	case strings.TrimSpace(name) != name:
		return ErrInvalidBranchName
	}
	return nil
}

// CreateBranch creates a branch pointing at target. HEAD does not move.
func (r *Repo) CreateBranch(name string, target object.Hash) error {
	if err := checkBranchName(name); err != nil {
		return err
	}
	none := object.Hash("")
	if err := r.updateRef(branchRef(name), target, "branch: created from "+target.Short(), &none); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return ErrBranchExists
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	r.log.WithField("branch", name).Debug("branch created")
	return nil
}

// Branch creates a branch at the current head commit.
func (r *Repo) Branch(name string) error {
	head, _, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("branch: %w", err)
	}
	return r.CreateBranch(name, head)
}

// RemoveBranch deletes the branch pointer only. Commits made on it are kept.
func (r *Repo) RemoveBranch(name string) error {
	if checkBranchName(name) != nil {
		return ErrBranchNotFound
	}
	refPath := filepath.Join(r.GitletDir, filepath.FromSlash(branchRef(name)))
	if _, err := os.Stat(refPath); err != nil {
		if os.IsNotExist(err) {
			return ErrBranchNotFound
		}
		return fmt.Errorf("remove branch %q: %w", name, err)
	}

	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("remove branch: %w", err)
	}
	if current == name {
		return ErrRemoveCurrentBranch
	}

	if err := os.Remove(refPath); err != nil {
		return fmt.Errorf("remove branch %q: %w", name, err)
	}
	// The reflog goes with the branch so a later branch of the same name
	// starts a fresh history.
	_ = os.Remove(r.reflogPath(branchRef(name)))
	r.log.WithField("branch", name).Debug("branch removed")
	return nil
}

// ListBranches returns the branch names sorted alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.GitletDir, "refs", "heads"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || checkBranchName(e.Name()) != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// UpdateBranch points a branch at h unconditionally and records reason in
// its reflog.
func (r *Repo) UpdateBranch(name string, h object.Hash, reason string) error {
	if err := checkBranchName(name); err != nil {
		return err
	}
	if err := r.updateRef(branchRef(name), h, reason, nil); err != nil {
		return fmt.Errorf("update branch %q: %w", name, err)
	}
	return nil
}
