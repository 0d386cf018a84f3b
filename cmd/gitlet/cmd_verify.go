package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errVerifyFailed = errors.New("verify: object store has integrity problems")

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Re-hash every reachable object and report damage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			report, err := r.Verify()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, h := range report.Missing {
				fmt.Fprintf(out, "missing %s\n", h)
			}
			for _, h := range report.Corrupt {
				fmt.Fprintf(out, "corrupt %s\n", h)
			}
			if !report.OK() {
				return errVerifyFailed
			}
			fmt.Fprintf(out, "ok: verified %d commit(s), %d blob(s)\n", report.Commits, report.Blobs)
			return nil
		},
	}
}
