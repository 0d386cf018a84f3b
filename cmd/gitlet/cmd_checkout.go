package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

var errIncorrectOperands = errors.New("Incorrect operands.")

type checkoutKind int

const (
	checkoutHeadFile checkoutKind = iota
	checkoutCommitFile
	checkoutBranch
)

type checkoutRequest struct {
	kind   checkoutKind
	commit string
	path   string
	branch string
}

// parseCheckoutArgs accepts the three checkout forms. dash is the number of
// arguments before a "--" separator, or -1 when there was none.
//
//	checkout -- <file>
//	checkout <commit id> -- <file>
//	checkout <branch>
func parseCheckoutArgs(args []string, dash int) (checkoutRequest, error) {
	switch {
	case dash == 0 && len(args) == 1:
		return checkoutRequest{kind: checkoutHeadFile, path: args[0]}, nil
	case dash == 1 && len(args) == 2:
		return checkoutRequest{kind: checkoutCommitFile, commit: args[0], path: args[1]}, nil
	case dash < 0 && len(args) == 1:
		return checkoutRequest{kind: checkoutBranch, branch: args[0]}, nil
	default:
		return checkoutRequest{}, errIncorrectOperands
	}
}

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout [<commit id>] -- <file> | checkout <branch>",
		Short: "Restore a file, or switch branches",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCheckoutArgs(args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}
			return withLockedRepo(func(r *repo.Repo) error {
				switch req.kind {
				case checkoutHeadFile:
					return r.CheckoutFile(req.path)
				case checkoutCommitFile:
					return r.CheckoutCommitFile(req.commit, req.path)
				default:
					if err := r.CheckoutBranch(req.branch); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "switched to branch '%s'\n", req.branch)
					return nil
				}
			})
		},
	}
}
