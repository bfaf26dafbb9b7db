package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// newLsCmd builds the `fjsync ls` command: a flat listing of the remote
// tree, optionally restricted to the subtree below a folder id.
func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [folder-id]",
		Short: "List the remote directory tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := "0"
			if len(args) == 1 {
				filter = args[0]
			}

			logger := buildLogger()

			orch, err := newOrchestrator(logger)
			if err != nil {
				return err
			}

			files, folders, err := orch.ReadDirectoryTree(cmd.Context(), filter)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(files)+len(folders))

			for _, f := range folders {
				rows = append(rows, []string{"DIR", "-", f.MTime, f.PPath})
			}

			for _, f := range files {
				rows = append(rows, []string{"FILE", humanize.Bytes(uint64(f.Size)), f.MTime, f.PPath})
			}

			printTable(os.Stdout, []string{"TYPE", "SIZE", "MODIFIED", "PATH"}, rows)

			return nil
		},
	}
}
