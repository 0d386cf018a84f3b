package repo

import "fmt"

// Reset checks out the commit id names (abbreviations allowed), moves the
// current branch to it and clears staging.
func (r *Repo) Reset(id string) error {
	target, tc, err := r.resolveCommit(id)
	if err != nil {
		return err
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	_, head, err := r.HeadCommit()
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	if err := r.checkoutCommit(tc, head); err != nil {
		return err
	}
	if err := r.UpdateBranch(branch, target, "reset: moving to "+target.Short()); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := r.ClearStaging(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
