package main

import (
	"io"
	"log/slog"

	"github.com/fjsync/fjsync/internal/fjump"
	"github.com/fjsync/fjsync/internal/localfs"
	"github.com/fjsync/fjsync/internal/sync"
)

// localSource adapts internal/localfs to the engine's FileSource interface.
type localSource struct{}

func (localSource) Open(path string) (io.ReadSeekCloser, error) {
	return localfs.Open(path)
}

// newOrchestrator wires a sync orchestrator for one CLI operation:
// authenticated client, local file source, and interrupt-driven stop flags.
// The CLI runs exactly one orchestrator call per invocation, satisfying the
// engine's single-in-flight precondition.
func newOrchestrator(logger *slog.Logger) (*sync.Orchestrator, error) {
	if err := requireToken(); err != nil {
		return nil, err
	}

	client, err := newClient(logger)
	if err != nil {
		return nil, err
	}

	stop := &fjump.CancelFlag{}
	transfer := &fjump.CancelFlag{}

	watchInterrupt(stop, transfer, logger)

	return sync.NewOrchestrator(sync.Options{
		API:            client,
		Source:         localSource{},
		Logger:         logger,
		Stop:           stop,
		TransferCancel: transfer,
	}), nil
}
