package repo

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/sirupsen/logrus"
)

// Notices reported for merge outcomes that are not failures.
const (
	MsgGivenIsAncestor     = "Given branch is an ancestor of the current branch."
	MsgFastForwarded       = "Current branch fast-forwarded."
	MsgMergeConflict       = "Encountered a merge conflict."
	mergeCommitMessageFmt  = "Merged %s into %s."
	conflictMarkerCurrent  = "<<<<<<< HEAD\n"
	conflictMarkerSplitter = "=======\n"
	conflictMarkerGiven    = ">>>>>>>\n"
)

// MergeOutcome says what a successful Merge did.
type MergeOutcome int

const (
	// MergeCommitted means a two-parent merge commit was recorded.
	MergeCommitted MergeOutcome = iota
	// MergeAlreadyAncestor means the given branch was already contained in
	// the current one; nothing changed.
	MergeAlreadyAncestor
	// MergeFastForwarded means the current branch moved to the given head
	// without a new commit.
	MergeFastForwarded
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeCommitted:
		return "committed"
	case MergeAlreadyAncestor:
		return "already-ancestor"
	case MergeFastForwarded:
		return "fast-forwarded"
	default:
		return fmt.Sprintf("MergeOutcome(%d)", int(o))
	}
}

// MergeAction is the reconciliation chosen for one file.
type MergeAction int

const (
	MergeKeep MergeAction = iota
	MergeTakeGiven
	MergeRemove
	MergeConflict
)

func (a MergeAction) String() string {
	switch a {
	case MergeKeep:
		return "keep"
	case MergeTakeGiven:
		return "take-given"
	case MergeRemove:
		return "remove"
	case MergeConflict:
		return "conflict"
	default:
		return fmt.Sprintf("MergeAction(%d)", int(a))
	}
}

// FileMergeReport records the action taken for one file.
type FileMergeReport struct {
	Path   string
	Action MergeAction
}

// MergeResult describes a completed merge.
type MergeResult struct {
	Outcome    MergeOutcome
	Current    object.Hash // head of the current branch before the merge
	Given      object.Hash // head of the merged branch
	SplitPoint object.Hash
	Commit     object.Hash // the merge commit; empty unless Outcome is MergeCommitted
	Conflicted bool
	Files      []FileMergeReport // files whose content changed, sorted by path
}

// Notice is the line a front end shows for the outcome, or "" when a clean
// merge commit needs no comment.
func (m *MergeResult) Notice() string {
	switch {
	case m.Outcome == MergeAlreadyAncestor:
		return MsgGivenIsAncestor
	case m.Outcome == MergeFastForwarded:
		return MsgFastForwarded
	case m.Conflicted:
		return MsgMergeConflict
	default:
		return ""
	}
}

// classifyMerge picks the action for one file from its blob ids at the
// split point, on the current branch and on the given branch. An empty id
// means the file is absent from that snapshot.
func classifyMerge(split, current, given object.Hash) MergeAction {
	switch {
	case current == given:
		return MergeKeep
	case split == "":
		if current == "" {
			return MergeTakeGiven
		}
		if given == "" {
			return MergeKeep
		}
		return MergeConflict
	case current == split:
		if given == "" {
			return MergeRemove
		}
		return MergeTakeGiven
	case given == split:
		return MergeKeep
	default:
		return MergeConflict
	}
}

// renderConflict builds the working content of a conflicted file. A side
// that deleted the file contributes nothing between its markers.
func renderConflict(current, given []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(conflictMarkerCurrent)
	buf.Write(current)
	buf.WriteString(conflictMarkerSplitter)
	buf.Write(given)
	buf.WriteString(conflictMarkerGiven)
	return buf.Bytes()
}

// pendingMergeFile is one working-tree change computed before anything is
// applied. data is nil for removals.
type pendingMergeFile struct {
	name   string
	action MergeAction
	blob   object.Hash
	data   []byte
}

// Merge merges the named branch into the current one.
//
// The merge is refused when the branch does not exist, is the current
// branch, staging is not empty, or an untracked working file would be
// overwritten by the given branch's snapshot. Conflicts do not fail the
// merge: conflicted files get marker content and are committed as such,
// and the result is flagged.
func (r *Repo) Merge(branch string) (*MergeResult, error) {
	given, err := r.BranchHead(branch)
	if err != nil {
		if errors.Is(err, ErrNoSuchBranch) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	currentBranch, err := r.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if currentBranch == branch {
		return nil, ErrMergeWithSelf
	}
	stg, err := r.ReadStaging()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if !stg.IsEmpty() {
		return nil, ErrUncommittedChanges
	}
	current, currentCommit, err := r.HeadCommit()
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	givenCommit, err := r.Store.ReadCommit(given)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	inTheWay, err := r.untrackedInTheWay(currentCommit, givenCommit.Files)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	if len(inTheWay) > 0 {
		return nil, ErrUntrackedFileInTheWay
	}

	split, err := r.FindSplitPoint(current, given)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	res := &MergeResult{Current: current, Given: given, SplitPoint: split}
	log := r.log.WithFields(logrus.Fields{
		"branch": branch,
		"into":   currentBranch,
		"split":  split,
	})

	switch split {
	case given:
		res.Outcome = MergeAlreadyAncestor
		log.Debug("merge: given branch is an ancestor")
		return res, nil
	case current:
		if err := r.checkoutCommit(givenCommit, currentCommit); err != nil {
			return nil, err
		}
		if err := r.UpdateBranch(currentBranch, given, "merge "+branch+": fast-forward"); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		if err := r.ClearStaging(); err != nil {
			return nil, fmt.Errorf("merge: %w", err)
		}
		res.Outcome = MergeFastForwarded
		res.Files = diffFileSets(currentCommit.Files, givenCommit.Files)
		log.Debug("merge: fast-forwarded")
		return res, nil
	}

	splitFiles := map[string]object.Hash{}
	if split != "" {
		splitCommit, err := r.Store.ReadCommit(split)
		if err != nil {
			return nil, fmt.Errorf("merge: read split point: %w", err)
		}
		splitFiles = splitCommit.Files
	}

	pending, err := r.planMerge(splitFiles, currentCommit.Files, givenCommit.Files)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	for _, p := range pending {
		switch p.action {
		case MergeRemove:
			if err := r.removeWorkingFile(p.name); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			stg.stageRemoval(p.name)
		default:
			if err := r.writeWorkingFile(p.name, p.data); err != nil {
				return nil, fmt.Errorf("merge: %w", err)
			}
			stg.stageAddition(p.name, p.blob)
		}
		res.Files = append(res.Files, FileMergeReport{Path: p.name, Action: p.action})
		if p.action == MergeConflict {
			res.Conflicted = true
		}
		log.WithFields(logrus.Fields{"path": p.name, "action": p.action}).Debug("merge: file reconciled")
	}
	if err := r.WriteStaging(stg); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	message := fmt.Sprintf(mergeCommitMessageFmt, branch, currentBranch)
	if res.Conflicted {
		message = MsgMergeConflict
	}
	h, err := r.commit(message, given)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	res.Outcome = MergeCommitted
	res.Commit = h
	log.WithFields(logrus.Fields{"commit": h, "conflicted": res.Conflicted}).Debug("merge: committed")
	return res, nil
}

// planMerge classifies every file of the three snapshots and prepares the
// content of each change. Blobs needed for the result, including conflict
// renderings, are read or stored here so that applying the plan cannot fail
// on the object store.
func (r *Repo) planMerge(split, current, given map[string]object.Hash) ([]pendingMergeFile, error) {
	var pending []pendingMergeFile
	for _, name := range unionNames(split, current, given) {
		action := classifyMerge(split[name], current[name], given[name])
		switch action {
		case MergeKeep:
			continue
		case MergeRemove:
			pending = append(pending, pendingMergeFile{name: name, action: action})
		case MergeTakeGiven:
			blob, err := r.Store.ReadBlob(given[name])
			if err != nil {
				return nil, fmt.Errorf("read %q from given branch: %w", name, err)
			}
			pending = append(pending, pendingMergeFile{name: name, action: action, blob: given[name], data: blob.Data})
		case MergeConflict:
			cur, err := r.blobContent(current[name])
			if err != nil {
				return nil, fmt.Errorf("read %q from current branch: %w", name, err)
			}
			giv, err := r.blobContent(given[name])
			if err != nil {
				return nil, fmt.Errorf("read %q from given branch: %w", name, err)
			}
			data := renderConflict(cur, giv)
			h, err := r.Store.WriteBlob(&object.Blob{Data: data})
			if err != nil {
				return nil, fmt.Errorf("store conflict for %q: %w", name, err)
			}
			pending = append(pending, pendingMergeFile{name: name, action: action, blob: h, data: data})
		}
	}
	return pending, nil
}

// blobContent reads a blob, treating the empty id as empty content.
func (r *Repo) blobContent(h object.Hash) ([]byte, error) {
	if h == "" {
		return nil, nil
	}
	blob, err := r.Store.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	return blob.Data, nil
}

func unionNames(sets ...map[string]object.Hash) []string {
	seen := make(map[string]bool)
	for _, set := range sets {
		for name := range set {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// diffFileSets reports how to get from one snapshot to another.
func diffFileSets(from, to map[string]object.Hash) []FileMergeReport {
	var out []FileMergeReport
	for _, name := range unionNames(from, to) {
		switch {
		case to[name] == from[name]:
		case to[name] == "":
			out = append(out, FileMergeReport{Path: name, Action: MergeRemove})
		default:
			out = append(out, FileMergeReport{Path: name, Action: MergeTakeGiven})
		}
	}
	return out
}
