package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newPullCmd builds the `fjsync pull` command: download every remote file
// at or below the given remote path into a local directory.
func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote-path> <target-dir>",
		Short: "Download remote files to a local directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			orch, err := newOrchestrator(logger)
			if err != nil {
				return err
			}

			files, _, err := orch.ReadDirectoryTree(cmd.Context(), "0")
			if err != nil {
				return err
			}

			matched := matchSubtree(files, normalizeRemoteArg(args[0]))
			if len(matched) == 0 {
				return fmt.Errorf("no remote files match %q", args[0])
			}

			if err := orch.Read(cmd.Context(), matched, args[1], newProgressPrinter()); err != nil {
				return err
			}

			statusf("Downloaded %d file(s) to %s\n", len(matched), args[1])

			return nil
		},
	}
}
