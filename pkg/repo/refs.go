package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// ErrRefCASMismatch is returned (wrapped) when a ref no longer holds the
// value an update expected.
var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")

// ErrRefUpdatedButReflogAppendFailed marks a ref update that took effect
// even though its reflog line could not be written.
var ErrRefUpdatedButReflogAppendFailed = errors.New("ref updated but reflog append failed")

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("update ref %q: %s (old=%s new=%s): %v",
		e.Ref, ErrRefUpdatedButReflogAppendFailed, e.OldHash, e.NewHash, e.Err)
}

func (e *RefUpdateReflogError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedButReflogAppendFailed
}

const (
	headFileName  = "HEAD"
	headRefPrefix = "ref: "
	branchPrefix  = "refs/heads/"
)

var (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

func branchRef(name string) string {
	return branchPrefix + name
}

// Head reads .gitlet/HEAD and returns the ref it points at, e.g.
// "refs/heads/master".
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitletDir, headFileName))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	if !strings.HasPrefix(content, headRefPrefix) {
		return "", fmt.Errorf("head: malformed HEAD %q", content)
	}
	return strings.TrimPrefix(content, headRefPrefix), nil
}

// CurrentBranch returns the name of the branch HEAD designates.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	if !strings.HasPrefix(head, branchPrefix) {
		return "", fmt.Errorf("current branch: HEAD does not name a branch: %q", head)
	}
	return strings.TrimPrefix(head, branchPrefix), nil
}

// SetCurrentBranch points HEAD at the named branch. The branch is not
// required to exist yet; callers check that.
func (r *Repo) SetCurrentBranch(name string) error {
	if err := checkBranchName(name); err != nil {
		return err
	}
	content := headRefPrefix + branchRef(name) + "\n"
	if err := writeFileAtomic(filepath.Join(r.GitletDir, headFileName), []byte(content), 0o644); err != nil {
		return fmt.Errorf("set current branch: %w", err)
	}
	return nil
}

// HeadCommit resolves the current branch to its commit.
func (r *Repo) HeadCommit() (object.Hash, *object.CommitObj, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return "", nil, err
	}
	h, err := r.BranchHead(branch)
	if err != nil {
		return "", nil, fmt.Errorf("head commit: %w", err)
	}
	c, err := r.Store.ReadCommit(h)
	if err != nil {
		return "", nil, fmt.Errorf("head commit: %w", err)
	}
	return h, c, nil
}

// BranchHead returns the commit id a branch points at. A branch with no ref
// file yields ErrNoSuchBranch.
func (r *Repo) BranchHead(name string) (object.Hash, error) {
	if checkBranchName(name) != nil {
		return "", ErrNoSuchBranch
	}
	h, err := readRefHash(filepath.Join(r.GitletDir, filepath.FromSlash(branchRef(name))))
	if err != nil {
		return "", fmt.Errorf("resolve branch %q: %w", name, err)
	}
	if h == "" {
		return "", ErrNoSuchBranch
	}
	return h, nil
}

// updateRef writes h to the named ref under .gitlet/ using lockfile + rename.
// When expectedOld is non-nil the update only succeeds if the ref currently
// holds *expectedOld, where "" means the ref must not exist.
//
// The reflog line is appended after the rename; if that fails the ref update
// stays committed and a RefUpdateReflogError is returned.
func (r *Repo) updateRef(name string, h object.Hash, reason string, expectedOld *object.Hash) error {
	refPath := filepath.Join(r.GitletDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if expectedOld != nil && oldHash != *expectedOld {
		return fmt.Errorf("update ref %q: %w (expected %q, found %q)",
			name, ErrRefCASMismatch, *expectedOld, oldHash)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	r.log.WithFields(logrus.Fields{
		"ref": name,
		"old": oldHash,
		"new": h,
	}).Debug("ref updated")

	if err := r.appendReflog(name, oldHash, h, reason); err != nil {
		return &RefUpdateReflogError{Ref: name, OldHash: oldHash, NewHash: h, Err: err}
	}
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
