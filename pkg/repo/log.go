package repo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/gitlet/pkg/object"
)

// LogDateLayout is the timestamp layout used in rendered log entries.
const LogDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

// LogEntry pairs a commit with its id.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Format renders the entry the way log and global-log print it, with the
// timestamp shown in loc.
func (e LogEntry) Format(loc *time.Location) string {
	var b strings.Builder
	b.WriteString("===\n")
	fmt.Fprintf(&b, "commit %s\n", e.Hash)
	if e.Commit.IsMerge() {
		fmt.Fprintf(&b, "Merge: %s %s\n", e.Commit.Parent.Short(), e.Commit.SecondParent.Short())
	}
	fmt.Fprintf(&b, "Date: %s\n", time.Unix(e.Commit.Timestamp, 0).In(loc).Format(LogDateLayout))
	b.WriteString(e.Commit.Message)
	b.WriteString("\n\n")
	return b.String()
}

// Log returns the first-parent history of the head commit, newest first.
func (r *Repo) Log() ([]LogEntry, error) {
	head, _, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	entries, err := r.FirstParentHistory(head)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}
	return entries, nil
}

// GlobalLog returns every commit in the store, ordered by id.
func (r *Repo) GlobalLog() ([]LogEntry, error) {
	ids, err := r.Store.ListCommits()
	if err != nil {
		return nil, fmt.Errorf("global log: %w", err)
	}
	entries := make([]LogEntry, 0, len(ids))
	for _, id := range ids {
		c, err := r.Store.ReadCommit(id)
		if err != nil {
			return nil, fmt.Errorf("global log: %w", err)
		}
		entries = append(entries, LogEntry{Hash: id, Commit: c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Hash < entries[j].Hash })
	return entries, nil
}

// Find returns the ids of all commits whose message equals message, in id
// order.
func (r *Repo) Find(message string) ([]object.Hash, error) {
	entries, err := r.GlobalLog()
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var out []object.Hash
	for _, e := range entries {
		if e.Commit.Message == message {
			out = append(out, e.Hash)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoMatchingCommit
	}
	return out, nil
}
