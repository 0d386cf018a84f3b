package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/odvcencio/gitlet/pkg/object"
)

// zeroHash stands in for the missing side of a branch creation.
const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ReflogEntry records one movement of a branch pointer.
type ReflogEntry struct {
	Ref       string
	OldHash   object.Hash // zero hash when the ref was created
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

// line renders e as "<old> <new> <unix> <reason>".
func (e ReflogEntry) line() string {
	return fmt.Sprintf("%s %s %d %s\n", orZero(e.OldHash), orZero(e.NewHash), e.Timestamp, e.Reason)
}

func orZero(h object.Hash) object.Hash {
	if h == "" {
		return zeroHash
	}
	return h
}

// parseReflogLine is the inverse of ReflogEntry.line. Lines missing a field
// or carrying a bad timestamp are rejected.
func parseReflogLine(ref, line string) (ReflogEntry, bool) {
	oldHash, rest, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return ReflogEntry{}, false
	}
	newHash, rest, ok := strings.Cut(rest, " ")
	if !ok {
		return ReflogEntry{}, false
	}
	stamp, reason, ok := strings.Cut(rest, " ")
	if !ok || reason == "" {
		return ReflogEntry{}, false
	}
	ts, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{
		Ref:       ref,
		OldHash:   object.Hash(oldHash),
		NewHash:   object.Hash(newHash),
		Timestamp: ts,
		Reason:    reason,
	}, true
}

func (r *Repo) reflogPath(ref string) string {
	return filepath.Join(r.GitletDir, "logs", filepath.FromSlash(ref))
}

// appendReflog adds one line to ref's log. Whitespace in reason collapses
// to single spaces so the entry stays on one line.
func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	if ref = strings.TrimSpace(ref); ref == "" {
		return nil
	}
	entry := ReflogEntry{
		Ref:       ref,
		OldHash:   oldHash,
		NewHash:   newHash,
		Timestamp: r.now().Unix(),
		Reason:    strings.Join(strings.Fields(reason), " "),
	}
	if entry.Reason == "" {
		entry.Reason = "update"
	}

	p := r.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	if _, err := f.WriteString(entry.line()); err != nil {
		f.Close()
		return fmt.Errorf("reflog write: %w", err)
	}
	return f.Close()
}

// ReadReflog returns the movements of a branch, newest first. An empty
// branch name means the current branch. limit <= 0 returns every entry.
func (r *Repo) ReadReflog(branch string, limit int) ([]ReflogEntry, error) {
	if branch = strings.TrimSpace(branch); branch == "" {
		cur, err := r.CurrentBranch()
		if err != nil {
			return nil, fmt.Errorf("read reflog: %w", err)
		}
		branch = cur
	}
	if _, err := r.BranchHead(branch); err != nil {
		return nil, err
	}

	ref := branchRef(branch)
	data, err := os.ReadFile(r.reflogPath(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	var entries []ReflogEntry
	for i := len(lines) - 1; i >= 0; i-- {
		if limit > 0 && len(entries) == limit {
			break
		}
		if e, ok := parseReflogLine(ref, lines[i]); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
