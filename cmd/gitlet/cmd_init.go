package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitlet/pkg/object"
	"github.com/odvcencio/gitlet/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		defaultBranch string
		objectFormat  string
		noCompression bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty gitlet repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			opts := []repo.Option{repo.WithLogger(newLogger())}
			if defaultBranch != "" {
				opts = append(opts, repo.WithDefaultBranch(defaultBranch))
			}
			if objectFormat != "" {
				opts = append(opts, repo.WithObjectFormat(object.Format(objectFormat)))
			}
			if noCompression {
				opts = append(opts, repo.WithCompression(false))
			}

			r, err := repo.Init(abs, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty gitlet repository in %s\n", r.GitletDir+string(filepath.Separator))
			return nil
		},
	}

	cmd.Flags().StringVar(&defaultBranch, "default-branch", "", "name of the initial branch (default from config, master)")
	cmd.Flags().StringVar(&objectFormat, "object-format", "", "object id hash: sha256 or blake2b")
	cmd.Flags().BoolVar(&noCompression, "no-compression", false, "store loose objects uncompressed")
	return cmd
}
