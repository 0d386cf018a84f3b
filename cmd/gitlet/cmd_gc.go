package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newCountObjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count-objects",
		Short: "Show object counts and on-disk sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			st, err := r.Store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "commits: %s (%s)\n", humanize.Comma(int64(st.Commits.Count)), humanize.Bytes(uint64(st.Commits.Bytes)))
			fmt.Fprintf(out, "blobs:   %s (%s)\n", humanize.Comma(int64(st.Blobs.Count)), humanize.Bytes(uint64(st.Blobs.Bytes)))
			fmt.Fprintf(out, "format:  %s\n", r.Store.Format())
			return nil
		},
	}
}

func newPruneCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete blobs no commit or staged file refers to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if dryRun {
				r, err := openRepo()
				if err != nil {
					return err
				}
				report, err := r.Verify()
				if err != nil {
					return err
				}
				st, err := r.Store.Stats()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "would prune %d of %d blob(s)\n", st.Blobs.Count-report.Blobs, st.Blobs.Count)
				return nil
			}

			return withLockedRepo(func(r *repo.Repo) error {
				summary, err := r.PruneBlobs()
				if err != nil {
					return err
				}
				if len(summary.Pruned) == 0 {
					fmt.Fprintln(out, "nothing to prune")
					return nil
				}
				fmt.Fprintf(out, "pruned %d blob(s), kept %d\n", len(summary.Pruned), summary.Kept)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "only report how many blobs would be pruned")
	return cmd
}
