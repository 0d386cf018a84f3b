package repo

import (
	"fmt"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
)

// ModificationKind says how a working file differs from what would be
// committed.
type ModificationKind string

const (
	ModModified ModificationKind = "modified"
	ModDeleted  ModificationKind = "deleted"
)

// ModifiedFile is a change present in the working tree but not staged.
type ModifiedFile struct {
	Path string
	Kind ModificationKind
}

// StatusReport summarises branches, staging and the working tree. Every
// list is sorted.
type StatusReport struct {
	CurrentBranch string
	Branches      []string
	Staged        []string
	Removed       []string
	Modified      []ModifiedFile
	Untracked     []string
}

// Status compares the head commit, staging and the working tree.
//
// A file is reported modified when its working content differs from the
// staged version, or from the committed version when nothing is staged for
// it. It is reported deleted when it is missing from the working tree while
// staged for addition, or while tracked and not staged for removal.
// Untracked files are working files neither tracked nor staged for
// addition, which includes files staged for removal and then re-created.
func (r *Repo) Status() (*StatusReport, error) {
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	branches, err := r.ListBranches()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	_, head, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	working, err := r.workingFiles()
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	workingIDs := make(map[string]object.Hash, len(working))
	for _, name := range working {
		data, ok, err := r.readWorkingFile(name)
		if err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		if ok {
			workingIDs[name] = r.Store.HashOf(object.TypeBlob, data)
		}
	}

	report := &StatusReport{
		CurrentBranch: current,
		Branches:      branches,
		Staged:        stg.AddedPaths(),
		Removed:       stg.RemovedPaths(),
	}

	for _, name := range unionNames(head.Files, stg.Additions) {
		want, staged := stg.Additions[name]
		if !staged {
			if stg.Removals[name] {
				continue
			}
			want = head.Files[name]
		}
		got, present := workingIDs[name]
		if !present {
			// Tracked files can match an ignore pattern added later.
			data, ok, err := r.readWorkingFile(name)
			if err != nil {
				return nil, fmt.Errorf("status: %w", err)
			}
			if ok {
				got, present = r.Store.HashOf(object.TypeBlob, data), true
			}
		}
		switch {
		case !present:
			report.Modified = append(report.Modified, ModifiedFile{Path: name, Kind: ModDeleted})
		case got != want:
			report.Modified = append(report.Modified, ModifiedFile{Path: name, Kind: ModModified})
		}
	}

	for _, name := range working {
		_, tracked := head.Files[name]
		_, staged := stg.Additions[name]
		if stg.Removals[name] || (!tracked && !staged) {
			report.Untracked = append(report.Untracked, name)
		}
	}

	sort.Slice(report.Modified, func(i, j int) bool { return report.Modified[i].Path < report.Modified[j].Path })
	return report, nil
}
