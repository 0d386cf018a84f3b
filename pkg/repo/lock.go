package repo

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/juju/fslock"
)

const lockFileName = "lock"

// RepoLock is an advisory, process-exclusive lock on a repository.
type RepoLock struct {
	lck *fslock.Lock
}

// Lock takes the repository lock without waiting. A repository already held
// by another process yields ErrRepoLocked. The engine methods do not lock on
// their own; front ends hold the lock around each mutating operation.
func (r *Repo) Lock() (*RepoLock, error) {
	lck := fslock.New(filepath.Join(r.GitletDir, lockFileName))
	if err := lck.TryLock(); err != nil {
		if errors.Is(err, fslock.ErrLocked) {
			return nil, ErrRepoLocked
		}
		return nil, fmt.Errorf("lock repository: %w", err)
	}
	r.log.Debug("repository lock acquired")
	return &RepoLock{lck: lck}, nil
}

// Unlock releases the lock. It is safe to call on a nil lock.
func (l *RepoLock) Unlock() error {
	if l == nil || l.lck == nil {
		return nil
	}
	err := l.lck.Unlock()
	l.lck = nil
	return err
}
