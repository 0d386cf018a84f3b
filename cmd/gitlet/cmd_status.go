package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show branches, staged files and working tree changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			st, err := r.Status()
			if err != nil {
				return err
			}
			writeStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

// writeStatus prints the five status sections. Colour follows fatih/color's
// terminal detection, so piped output stays plain.
func writeStatus(out io.Writer, st *repo.StatusReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(out, "=== Branches ===")
	for _, b := range st.Branches {
		if b == st.CurrentBranch {
			fmt.Fprintln(out, green("*"+b))
			continue
		}
		fmt.Fprintln(out, b)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "=== Staged Files ===")
	for _, p := range st.Staged {
		fmt.Fprintln(out, green(p))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "=== Removed Files ===")
	for _, p := range st.Removed {
		fmt.Fprintln(out, red(p))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "=== Modifications Not Staged For Commit ===")
	for _, m := range st.Modified {
		fmt.Fprintln(out, red(fmt.Sprintf("%s (%s)", m.Path, m.Kind)))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "=== Untracked Files ===")
	for _, p := range st.Untracked {
		fmt.Fprintln(out, p)
	}
	fmt.Fprintln(out)
}
