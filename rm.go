package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newRmCmd builds the `fjsync rm` command: permanently delete the remote
// entries at the given paths, then prune any folders the deletion left
// empty.
func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <remote-path>...",
		Short: "Delete remote entries and prune emptied folders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			orch, err := newOrchestrator(logger)
			if err != nil {
				return err
			}

			files, folders, err := orch.ReadDirectoryTree(cmd.Context(), "0")
			if err != nil {
				return err
			}

			var ids []int64

			for _, arg := range args {
				target := normalizeRemoteArg(arg)

				matched := matchSubtree(files, target)
				matched = append(matched, matchSubtree(folders, target)...)

				if len(matched) == 0 {
					return fmt.Errorf("no remote entries match %q", arg)
				}

				for _, m := range matched {
					ids = append(ids, m.ID)
				}
			}

			if err := orch.Delete(cmd.Context(), ids); err != nil {
				return err
			}

			statusf("Deleted %d entr%s\n", len(ids), pluralY(len(ids)))

			return nil
		},
	}
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}

	return "ies"
}
