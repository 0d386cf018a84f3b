package main

import (
	"errors"
	"io"

	"github.com/odvcencio/gitlet/pkg/diff"
	"github.com/odvcencio/gitlet/pkg/entity"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	var staged bool
	var context int
	var entities bool

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show unstaged changes, or staged changes with --staged",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			deltas, err := r.Diff(staged)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range deltas {
				if entities {
					err = writeEntityDelta(out, d, context)
				} else {
					err = diff.WriteUnified(out, d.Path, d.Before, d.After, context)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&staged, "staged", false, "compare the head commit with the staging area")
	cmd.Flags().IntVarP(&context, "unified", "U", diff.DefaultContext, "lines of context around each change")
	cmd.Flags().BoolVar(&entities, "entities", false, "report changed declarations instead of lines for supported languages")
	return cmd
}

// writeEntityDelta reports d per declaration, falling back to a line diff
// for files without a grammar.
func writeEntityDelta(w io.Writer, d repo.FileDelta, context int) error {
	changes, err := diff.Entities(d.Path, d.Before, d.After)
	if errors.Is(err, entity.ErrUnsupported) {
		return diff.WriteUnified(w, d.Path, d.Before, d.After, context)
	}
	if err != nil {
		return err
	}
	return diff.WriteEntities(w, d.Path, changes)
}
