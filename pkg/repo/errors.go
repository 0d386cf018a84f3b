package repo

import "errors"

// User-facing failures. Their text is the exact message a front end shows;
// the engine returns them unwrapped so callers can print err.Error() as-is
// and match with errors.Is.
var (
	ErrRepoExists            = errors.New("A Gitlet version-control system already exists in the current directory.")
	ErrNotARepo              = errors.New("Not in an initialized Gitlet directory.")
	ErrFileNotFound          = errors.New("File does not exist.")
	ErrEmptyMessage          = errors.New("Please enter a commit message.")
	ErrNothingToCommit       = errors.New("No changes added to the commit.")
	ErrNothingToRemove       = errors.New("No reason to remove this file.")
	ErrNoMatchingCommit      = errors.New("Found no commit with that message.")
	ErrCommitNotFound        = errors.New("No commit with that id exists.")
	ErrAmbiguousCommitID     = errors.New("Commit id prefix is ambiguous.")
	ErrFileNotInCommit       = errors.New("File does not exist in that commit.")
	ErrNoSuchBranch          = errors.New("No such branch exists.")
	ErrCheckoutCurrentBranch = errors.New("No need to checkout the current branch.")
	ErrBranchExists          = errors.New("A branch with that name already exists.")
	ErrBranchNotFound        = errors.New("A branch with that name does not exist.")
	ErrRemoveCurrentBranch   = errors.New("Cannot remove the current branch.")
	ErrUntrackedFileInTheWay = errors.New("There is an untracked file in the way; delete it, or add and commit it first.")
	ErrUncommittedChanges    = errors.New("You have uncommitted changes.")
	ErrMergeWithSelf         = errors.New("Cannot merge a branch with itself.")
	ErrRemoteExists          = errors.New("A remote with that name already exists.")
	ErrRemoteNotFound        = errors.New("A remote with that name does not exist.")
	ErrRepoLocked            = errors.New("Another gitlet process is using this repository.")
	ErrInvalidBranchName     = errors.New("Invalid branch name.")
)
