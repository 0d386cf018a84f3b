package repo

import (
	"fmt"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// Commit records the head commit's snapshot with the staged additions and
// removals applied, advances the current branch to it and clears staging.
func (r *Repo) Commit(message string) (object.Hash, error) {
	return r.commit(message, "")
}

// commit is shared by Commit and Merge. A merge commit (secondParent set)
// is recorded even when staging is empty.
func (r *Repo) commit(message string, secondParent object.Hash) (object.Hash, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	parentHash, parent, err := r.HeadCommit()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if stg.IsEmpty() && secondParent == "" {
		return "", ErrNothingToCommit
	}

	c := &object.CommitObj{
		Timestamp:    r.now().Unix(),
		Message:      message,
		Parent:       parentHash,
		SecondParent: secondParent,
		Files:        stg.Apply(parent.Files),
	}
	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("commit: write commit: %w", err)
	}

	reason := "commit: " + firstLine(message)
	if secondParent != "" {
		reason = "merge: " + firstLine(message)
	}
	if err := r.UpdateBranch(branch, h, reason); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	if err := r.ClearStaging(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"commit": h,
		"branch": branch,
		"files":  len(c.Files),
	}).Debug("commit recorded")
	return h, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
