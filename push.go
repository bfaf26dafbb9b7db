package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fjsync/fjsync/internal/localfs"
	"github.com/fjsync/fjsync/internal/sync"
)

// newPushCmd builds the `fjsync push` command: upload a local directory (or
// single file) to the remote tree, provisioning folders as needed and
// recording a fingerprint on every uploaded entry.
func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <local-path>",
		Short: "Upload local files to FileJump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := buildLogger()

			files, err := localfs.List(args[0])
			if err != nil {
				return err
			}

			if len(files) == 0 {
				statusf("Nothing to upload under %s\n", args[0])

				return nil
			}

			orch, err := newOrchestrator(logger)
			if err != nil {
				return err
			}

			report, err := orch.Write(cmd.Context(), files, newProgressPrinter())
			if err != nil {
				return err
			}

			var done, failed, cancelled, skipped int

			for _, r := range report.Results {
				switch r.State {
				case sync.StateDone:
					done++
				case sync.StateFailed:
					failed++

					statusf("failed: %s: %v\n", r.RelPath, r.Err)
				case sync.StateCancelled:
					cancelled++
				case sync.StateSkipped:
					skipped++
				}
			}

			statusf("Uploaded %d/%d file(s)", done, len(files))

			if failed > 0 {
				statusf(", %d failed", failed)
			}

			if cancelled > 0 || skipped > 0 {
				statusf(", %d cancelled, %d skipped", cancelled, skipped)
			}

			statusf("\n")

			if failed > 0 {
				return fmt.Errorf("%d of %d upload(s) failed", failed, len(files))
			}

			return nil
		},
	}
}
