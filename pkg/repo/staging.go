package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// Staging holds the changes prepared for the next commit. A path is never
// in both sets at once.
type Staging struct {
	Additions map[string]object.Hash `json:"additions"`
	Removals  map[string]bool        `json:"removals"`
}

func newStaging() *Staging {
	return &Staging{
		Additions: make(map[string]object.Hash),
		Removals:  make(map[string]bool),
	}
}

// IsEmpty reports whether nothing is staged.
func (s *Staging) IsEmpty() bool {
	return len(s.Additions) == 0 && len(s.Removals) == 0
}

// AddedPaths returns the paths staged for addition, sorted.
func (s *Staging) AddedPaths() []string {
	out := make([]string, 0, len(s.Additions))
	for p := range s.Additions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RemovedPaths returns the paths staged for removal, sorted.
func (s *Staging) RemovedPaths() []string {
	out := make([]string, 0, len(s.Removals))
	for p := range s.Removals {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Apply returns a copy of files with the staged additions and removals
// applied.
func (s *Staging) Apply(files map[string]object.Hash) map[string]object.Hash {
	out := make(map[string]object.Hash, len(files)+len(s.Additions))
	for name, h := range files {
		out[name] = h
	}
	for name, h := range s.Additions {
		out[name] = h
	}
	for name := range s.Removals {
		delete(out, name)
	}
	return out
}

func (s *Staging) stageAddition(name string, h object.Hash) {
	delete(s.Removals, name)
	s.Additions[name] = h
}

func (s *Staging) stageRemoval(name string) {
	delete(s.Additions, name)
	s.Removals[name] = true
}

func (r *Repo) indexPath() string {
	return filepath.Join(r.GitletDir, "index")
}

// ReadStaging loads the staging area from .gitlet/index. A missing file is
// an empty staging area.
func (r *Repo) ReadStaging() (*Staging, error) {
	data, err := os.ReadFile(r.indexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return newStaging(), nil
		}
		return nil, fmt.Errorf("read staging: %w", err)
	}

	var stg Staging
	if err := json.Unmarshal(data, &stg); err != nil {
		return nil, fmt.Errorf("read staging: unmarshal: %w", err)
	}
	if stg.Additions == nil {
		stg.Additions = make(map[string]object.Hash)
	}
	if stg.Removals == nil {
		stg.Removals = make(map[string]bool)
	}
	return &stg, nil
}

// WriteStaging atomically writes the staging area to .gitlet/index.
func (r *Repo) WriteStaging(s *Staging) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("write staging: marshal: %w", err)
	}
	if err := writeFileAtomic(r.indexPath(), data, 0o644); err != nil {
		return fmt.Errorf("write staging: %w", err)
	}
	return nil
}

// ClearStaging empties both sets.
func (r *Repo) ClearStaging() error {
	return r.WriteStaging(newStaging())
}

// Add stages the working copy of a file. Content identical to the version
// in the head commit leaves nothing staged for the path, and any pending
// removal of it is cancelled either way.
func (r *Repo) Add(p string) error {
	name, err := r.repoRelPath(p)
	if err != nil {
		return ErrFileNotFound
	}
	data, ok, err := r.readWorkingFile(name)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	if !ok {
		return ErrFileNotFound
	}

	_, head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}

	id := r.Store.HashOf(object.TypeBlob, data)
	if head.Files[name] == id {
		delete(stg.Additions, name)
		delete(stg.Removals, name)
		r.log.WithField("path", name).Debug("add: unchanged from head commit")
	} else {
		if _, err := r.Store.WriteBlob(&object.Blob{Data: data}); err != nil {
			return fmt.Errorf("add: write blob %q: %w", name, err)
		}
		stg.stageAddition(name, id)
		r.log.WithFields(logrus.Fields{"path": name, "blob": id}).Debug("add: staged")
	}

	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	return nil
}

// Remove unstages a pending addition and, when the head commit tracks the
// file, stages its removal and deletes the working copy.
func (r *Repo) Remove(p string) error {
	name, err := r.repoRelPath(p)
	if err != nil {
		return ErrNothingToRemove
	}
	_, head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}

	_, staged := stg.Additions[name]
	_, tracked := head.Files[name]
	if !staged && !tracked {
		return ErrNothingToRemove
	}

	delete(stg.Additions, name)
	if tracked {
		stg.stageRemoval(name)
		if err := r.removeWorkingFile(name); err != nil {
			return fmt.Errorf("remove: %w", err)
		}
	}
	if err := r.WriteStaging(stg); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// repoRelPath converts a user-supplied path to a slash-separated name
// relative to the repository root. Relative paths are resolved against the
// process working directory when it lies inside the repository, and
// against the repository root otherwise.
func (r *Repo) repoRelPath(p string) (string, error) {
	var rel string
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(r.RootDir, p)
		if err != nil {
			return "", fmt.Errorf("cannot make %q relative to %q: %w", p, r.RootDir, err)
		}
	} else {
		rel = filepath.Clean(p)
		if cwd, err := os.Getwd(); err == nil {
			if fromCwd, err := filepath.Rel(r.RootDir, filepath.Join(cwd, p)); err == nil && !escapesRoot(fromCwd) {
				rel = fromCwd
			}
		}
	}

	name := path.Clean(filepath.ToSlash(rel))
	if name == "." || escapesRoot(name) || name == gitletDirName || strings.HasPrefix(name, gitletDirName+"/") {
		return "", fmt.Errorf("path %q is outside the working tree", p)
	}
	return name, nil
}

func escapesRoot(rel string) bool {
	rel = filepath.ToSlash(rel)
	return rel == ".." || strings.HasPrefix(rel, "../")
}
