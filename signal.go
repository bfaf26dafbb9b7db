package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fjsync/fjsync/internal/fjump"
)

// watchInterrupt arms SIGINT/SIGTERM handling for a transfer operation. The
// first signal sets the cooperative flags — the in-flight transfer unwinds
// at its next suspension point, the batch stops before the next file, and a
// running tree read returns empty. The second signal forces exit. Only the
// flags are raised; request contexts stay intact, so a user stop never
// surfaces as a network error.
func watchInterrupt(stop, transfer *fjump.CancelFlag, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)

		sig := <-sigCh
		logger.Info("received signal, stopping after current file",
			slog.String("signal", sig.String()),
		)

		stop.Cancel()
		transfer.Cancel()

		sig = <-sigCh
		logger.Warn("received second signal, forcing exit",
			slog.String("signal", sig.String()),
		)

		os.Exit(1)
	}()
}
