package repo

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/object"
)

// PruneSummary reports what PruneBlobs removed.
type PruneSummary struct {
	Pruned []object.Hash
	Kept   int
}

// PruneBlobs deletes blobs that no stored commit and no staged addition
// refers to, such as the versions of a file that was re-added several
// times before committing. Commits are never pruned, since global-log and
// find report every commit ever made.
func (r *Repo) PruneBlobs() (*PruneSummary, error) {
	commits, err := r.Store.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	reach, err := r.Store.ReachableSet(commits)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	for _, h := range stg.Additions {
		reach.Objects[h] = object.TypeBlob
	}

	blobs, err := r.Store.List(object.TypeBlob)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	summary := &PruneSummary{}
	for _, h := range blobs {
		if _, live := reach.Objects[h]; live {
			summary.Kept++
			continue
		}
		if err := r.Store.Delete(object.TypeBlob, h); err != nil {
			return nil, fmt.Errorf("prune: %w", err)
		}
		summary.Pruned = append(summary.Pruned, h)
	}
	r.log.WithField("pruned", len(summary.Pruned)).Debug("unreferenced blobs pruned")
	return summary, nil
}
