package main

import (
	"fmt"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newMergeCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the current branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLockedRepo(func(r *repo.Repo) error {
				res, err := r.Merge(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if showFiles {
					for _, f := range res.Files {
						fmt.Fprintf(out, "%-10s %s\n", f.Action, f.Path)
					}
				}
				if notice := res.Notice(); notice != "" {
					fmt.Fprintln(out, notice)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showFiles, "stat", false, "list the files the merge changed")
	return cmd
}
