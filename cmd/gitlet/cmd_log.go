package main

import (
	"fmt"
	"io"
	"time"

	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int
	var utc bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show first-parent history of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Log()
			if err != nil {
				return err
			}
			writeLogEntries(cmd.OutOrStdout(), entries, limit, logLocation(utc))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits to show (0 for all)")
	cmd.Flags().BoolVar(&utc, "utc", false, "show dates in UTC")
	return cmd
}

func newGlobalLogCmd() *cobra.Command {
	var utc bool

	cmd := &cobra.Command{
		Use:   "global-log",
		Short: "Show every commit ever made, in id order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.GlobalLog()
			if err != nil {
				return err
			}
			writeLogEntries(cmd.OutOrStdout(), entries, 0, logLocation(utc))
			return nil
		},
	}
	cmd.Flags().BoolVar(&utc, "utc", false, "show dates in UTC")
	return cmd
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <message>",
		Short: "Print the ids of all commits with the given message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			ids, err := r.Find(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
}

func writeLogEntries(out io.Writer, entries []repo.LogEntry, limit int, loc *time.Location) {
	for i, e := range entries {
		if limit > 0 && i >= limit {
			return
		}
		io.WriteString(out, e.Format(loc))
	}
}

func logLocation(utc bool) *time.Location {
	if utc {
		return time.UTC
	}
	return time.Local
}
