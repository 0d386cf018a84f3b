package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
)

// FileDelta is one file's content on the two sides of a comparison. A nil
// side means the file does not exist there.
type FileDelta struct {
	Path   string
	Before []byte
	After  []byte
}

// Diff lists changed files sorted by path. By default it compares the
// version that would be committed (staged, else head) with the working
// tree, covering exactly the files Status reports as modified or deleted.
// With staged set it compares the head commit with the staging area.
func (r *Repo) Diff(staged bool) ([]FileDelta, error) {
	_, head, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	var deltas []FileDelta
	if staged {
		deltas, err = r.diffStaged(head, stg)
	} else {
		deltas, err = r.diffWorking(head, stg)
	}
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Path < deltas[j].Path })
	return deltas, nil
}

func (r *Repo) diffStaged(head *object.CommitObj, stg *Staging) ([]FileDelta, error) {
	var deltas []FileDelta
	for _, name := range stg.AddedPaths() {
		before, err := r.optionalBlob(head.Files, name)
		if err != nil {
			return nil, err
		}
		after, err := r.blobContent(stg.Additions[name])
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, FileDelta{Path: name, Before: before, After: nonNil(after)})
	}
	for _, name := range stg.RemovedPaths() {
		before, err := r.optionalBlob(head.Files, name)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, FileDelta{Path: name, Before: before})
	}
	return deltas, nil
}

func (r *Repo) diffWorking(head *object.CommitObj, stg *Staging) ([]FileDelta, error) {
	var deltas []FileDelta
	for _, name := range unionNames(head.Files, stg.Additions) {
		want, staged := stg.Additions[name]
		if !staged {
			if stg.Removals[name] {
				continue
			}
			want = head.Files[name]
		}
		data, ok, err := r.readWorkingFile(name)
		if err != nil {
			return nil, err
		}
		if ok && r.Store.HashOf(object.TypeBlob, data) == want {
			continue
		}
		before, err := r.blobContent(want)
		if err != nil {
			return nil, err
		}
		d := FileDelta{Path: name, Before: nonNil(before)}
		if ok {
			d.After = nonNil(data)
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// optionalBlob returns the content of name in files, or nil when absent.
func (r *Repo) optionalBlob(files map[string]object.Hash, name string) ([]byte, error) {
	h, ok := files[name]
	if !ok {
		return nil, nil
	}
	data, err := r.blobContent(h)
	if err != nil {
		return nil, err
	}
	return nonNil(data), nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
