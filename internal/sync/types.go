// Package sync implements the tree reconciliation and transfer engine:
// reading the remote tree into an explicit per-operation context,
// translating between local path segments and remote folder ids,
// provisioning missing remote folders, orchestrating batch uploads with
// fingerprints, and pruning folders left empty after deletion.
//
// Execution is strictly sequential: one orchestrator call runs at a time
// and blocks its caller for the duration of each network call. The Context
// and its folder index carry no locks; concurrent orchestrator invocations
// are unsafe and must be serialized by the caller — a single in-flight sync
// per process is a documented precondition.
package sync

import (
	"context"
	"io"

	"github.com/fjsync/fjsync/internal/fjump"
)

// API is the remote-service surface the engine consumes. *fjump.Client
// implements it; tests substitute fakes.
type API interface {
	ListEntries(ctx context.Context, parentID int64) ([]fjump.Entry, error)
	CreateFolder(ctx context.Context, name string, parentID int64) (*fjump.Entry, error)
	Upload(ctx context.Context, localPath, relativePath string, content io.ReadSeeker, size int64,
		progress fjump.ProgressFunc, cancel *fjump.CancelFlag) (*fjump.FileHandle, error)
	SetDescription(ctx context.Context, entryID int64, description string) error
	Delete(ctx context.Context, entryIDs []int64, forever bool) error
	DownloadTo(ctx context.Context, entryID int64, targetDir, name string,
		percent fjump.PercentFunc, cancel *fjump.CancelFlag) error
}

// FileSource opens local file content for upload. The filesystem
// implementation lives in internal/localfs; tests substitute in-memory
// sources.
type FileSource interface {
	Open(path string) (io.ReadSeekCloser, error)
}

// Progress receives batch transfer progress.
type Progress interface {
	// StartFile is called before each file in a batch is processed.
	StartFile(index int, name string, totalFiles int)
	// FileProgress reports the current file's transfer in bytes of the
	// request body.
	FileProgress(name string, sent, total int64)
}

// DownloadProgress receives download batch progress.
type DownloadProgress interface {
	StartFile(index int, name string, totalFiles int)
	// Percent reports the current file's download percentage.
	Percent(percent int)
}

// FileState is the terminal state of one file in a write batch.
type FileState string

const (
	StateDone      FileState = "done"
	StateFailed    FileState = "failed"
	StateCancelled FileState = "cancelled"
	StateSkipped   FileState = "skipped" // global stop observed before the file started
)

// FileResult records the outcome of one file in a write batch.
type FileResult struct {
	Name    string
	RelPath string
	State   FileState
	EntryID int64 // remote id on success
	Err     error // non-nil only for StateFailed
}

// WriteReport summarizes a write batch. Per-file failures are contained in
// Results; the batch itself only fails on provisioning or tree-read errors.
type WriteReport struct {
	Results []FileResult
	Stopped bool // true when the global stop signal abandoned the batch
}

// TreeEntry is one row of a materialized remote tree listing, joined with
// whatever fingerprint data its description carried.
type TreeEntry struct {
	ID     int64
	Path   string // slash-delimited ancestor id chain, as reported
	PPath  string // human-readable path, folder names joined with the local separator
	Name   string
	CTime  string // fingerprint-recovered when present, else service timestamp
	MTime  string
	Size   int64
	SHA256 string // empty when no fingerprint was recorded
}
