package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjsync/fjsync/internal/fingerprint"
	"github.com/fjsync/fjsync/internal/fjump"
	"github.com/fjsync/fjsync/internal/localfs"
)

// Orchestrator composes the tree reader, path translator, provisioner, and
// transfer client into the three user-level operations: Write, Delete, and
// ReadDirectoryTree. It owns a Context for the lifetime of each call and
// refreshes it from the service at the start of every operation.
type Orchestrator struct {
	api    API
	source FileSource
	sctx   *Context
	prov   *Provisioner
	logger *slog.Logger

	// stop abandons a write batch between files; transferCancel stops the
	// transfer currently in flight. Both are cooperative flags checked at
	// documented suspension points only.
	stop           *fjump.CancelFlag
	transferCancel *fjump.CancelFlag

	rootID int64
}

// Options configures an Orchestrator.
type Options struct {
	API            API
	Source         FileSource
	Logger         *slog.Logger
	Stop           *fjump.CancelFlag
	TransferCancel *fjump.CancelFlag
	RootID         int64 // remote parent for the first provisioned segment; 0 is the drive root
}

// NewOrchestrator assembles an Orchestrator and its empty Context. The
// Context is populated on the first operation.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sctx := NewContext(nil, nil)

	return &Orchestrator{
		api:            opts.API,
		source:         opts.Source,
		sctx:           sctx,
		prov:           NewProvisioner(opts.API, sctx, logger),
		logger:         logger,
		stop:           opts.Stop,
		transferCancel: opts.TransferCancel,
		rootID:         opts.RootID,
	}
}

// Context exposes the orchestrator's tree state for callers that render
// listings between operations.
func (o *Orchestrator) Context() *Context {
	return o.sctx
}

// Write uploads a batch of local files. It first provisions every distinct
// folder chain the batch implies, refreshes the remote tree, then uploads
// the files in order, recording a fingerprint on each uploaded entry's
// description. Per-file failures are logged and contained; provisioning or
// tree-read failures abort the whole batch. The global stop signal is
// checked between files and abandons the remainder of the batch.
func (o *Orchestrator) Write(ctx context.Context, files []localfs.File, progress Progress) (*WriteReport, error) {
	o.logger.Info("write batch starting", slog.Int("files", len(files)))

	if err := o.sctx.Refresh(ctx, o.api, o.transferCancel); err != nil {
		return nil, fmt.Errorf("sync: reading remote tree: %w", err)
	}

	// Provision the full set of required folders up front, one chain per
	// distinct target directory.
	for _, relDir := range distinctDirs(files) {
		if err := o.prov.EnsureFolders(ctx, FolderChain(relDir), o.rootID); err != nil {
			return nil, err
		}
	}

	if err := o.sctx.Refresh(ctx, o.api, o.transferCancel); err != nil {
		return nil, fmt.Errorf("sync: re-reading remote tree: %w", err)
	}

	report := &WriteReport{Results: make([]FileResult, 0, len(files))}

	for i := range files {
		file := files[i]

		if o.stop.Cancelled() {
			o.logger.Info("write batch stopped by user",
				slog.Int("completed", i),
				slog.Int("remaining", len(files)-i),
			)

			report.Stopped = true

			for _, rest := range files[i:] {
				report.Results = append(report.Results, FileResult{
					Name:    rest.Name,
					RelPath: rest.RelPath(),
					State:   StateSkipped,
				})
			}

			break
		}

		if progress != nil {
			progress.StartFile(i, file.Name, len(files))
		}

		report.Results = append(report.Results, o.writeFile(ctx, file, progress))
	}

	o.logger.Info("write batch finished",
		slog.Int("files", len(files)),
		slog.Bool("stopped", report.Stopped),
	)

	return report, nil
}

// writeFile uploads one file and records its fingerprint. Failures are
// returned in the result, never propagated: one bad file must not sink the
// batch.
func (o *Orchestrator) writeFile(ctx context.Context, file localfs.File, progress Progress) FileResult {
	result := FileResult{Name: file.Name, RelPath: file.RelPath()}

	content, err := o.source.Open(file.Path)
	if err != nil {
		o.logger.Error("failed to read source file",
			slog.String("path", file.Path),
			slog.String("error", err.Error()),
		)

		result.State = StateFailed
		result.Err = err

		return result
	}
	defer content.Close()

	var progressFn fjump.ProgressFunc
	if progress != nil {
		progressFn = progress.FileProgress
	}

	handle, err := o.api.Upload(ctx, file.Path, file.RelPath(), content, file.Size, progressFn, o.transferCancel)
	if errors.Is(err, fjump.ErrCancelled) {
		result.State = StateCancelled

		return result
	}

	if err != nil {
		o.logger.Error("failed to upload file",
			slog.String("path", file.Path),
			slog.String("error", err.Error()),
		)

		result.State = StateFailed
		result.Err = err

		return result
	}

	result.EntryID = handle.ID

	if err := o.recordFingerprint(ctx, file, handle.ID); err != nil {
		o.logger.Error("failed to record fingerprint",
			slog.String("path", file.Path),
			slog.Int64("entry_id", handle.ID),
			slog.String("error", err.Error()),
		)

		result.State = StateFailed
		result.Err = err

		return result
	}

	result.State = StateDone

	return result
}

// recordFingerprint hashes the original local bytes and writes the
// fingerprint onto the uploaded entry's description.
func (o *Orchestrator) recordFingerprint(ctx context.Context, file localfs.File, entryID int64) error {
	hash, err := fingerprint.SHA256File(file.Path)
	if err != nil {
		return err
	}

	return o.api.SetDescription(ctx, entryID, fingerprint.Encode(hash, file.CTime, file.MTime))
}

// Read downloads the given tree entries into targetDir, one file at a
// time. The shared transfer cancellation flag stops the current stream
// between blocks; the global stop signal stops the batch between files.
func (o *Orchestrator) Read(ctx context.Context, entries []TreeEntry, targetDir string, progress DownloadProgress) error {
	for i := range entries {
		if o.stop.Cancelled() {
			o.logger.Info("download batch stopped by user",
				slog.Int("completed", i),
				slog.Int("remaining", len(entries)-i),
			)

			return nil
		}

		var percent fjump.PercentFunc

		if progress != nil {
			progress.StartFile(i, entries[i].Name, len(entries))
			percent = progress.Percent
		}

		if err := o.api.DownloadTo(ctx, entries[i].ID, targetDir, entries[i].Name, percent, o.transferCancel); err != nil {
			return err
		}
	}

	return nil
}

// Delete permanently removes the given entries, then iteratively prunes
// folders left empty: each pass refreshes the tree and deletes every folder
// still marked empty, until a refresh finds none. The loop converges
// because a pass can only remove folders, never add them; the round bound
// fails fast if the service stops honoring deletions.
func (o *Orchestrator) Delete(ctx context.Context, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return nil
	}

	o.logger.Info("deleting entries", slog.Int("count", len(entryIDs)))

	if err := o.api.Delete(ctx, entryIDs, true); err != nil {
		return err
	}

	maxRounds := -1

	for round := 0; ; round++ {
		if err := o.sctx.Refresh(ctx, o.api, o.transferCancel); err != nil {
			return fmt.Errorf("sync: refreshing tree while pruning: %w", err)
		}

		if maxRounds < 0 {
			// Every pruning pass removes at least one folder.
			maxRounds = len(o.sctx.Folders) + 1
		}

		var empty []int64

		for i := range o.sctx.Folders {
			if o.sctx.Folders[i].Empty {
				empty = append(empty, o.sctx.Folders[i].ID)
			}
		}

		o.logger.Info("pruning empty folders",
			slog.Int("round", round),
			slog.Int("empty", len(empty)),
		)

		if len(empty) == 0 {
			return nil
		}

		if round >= maxRounds {
			return fmt.Errorf("sync: pruning did not converge after %d rounds; %d folders still empty",
				round, len(empty))
		}

		if err := o.api.Delete(ctx, empty, true); err != nil {
			return err
		}
	}
}

// ReadDirectoryTree refreshes the remote tree and materializes it as flat
// file and folder listings. Each row joins the human-readable path with the
// fingerprint recovered from the entry's description, falling back to the
// service's own timestamps and an empty hash when no fingerprint is
// present. filter selects the subtree below the folder with that id; "0" or
// "" selects everything.
func (o *Orchestrator) ReadDirectoryTree(ctx context.Context, filter string) (files, folders []TreeEntry, err error) {
	if err := o.sctx.Refresh(ctx, o.api, o.transferCancel); err != nil {
		return nil, nil, fmt.Errorf("sync: reading remote tree: %w", err)
	}

	for i := range o.sctx.Entries {
		entry := &o.sctx.Entries[i]

		if !matchesFilter(entry, filter) {
			continue
		}

		row := TreeEntry{
			ID:    entry.ID,
			Path:  entry.ParentPath,
			PPath: HumanPath(entry, o.sctx),
			Name:  entry.Name,
			CTime: entry.CreatedAt,
			MTime: entry.ModifiedAt,
			Size:  entry.Size,
		}

		// The description is a best-effort side channel: malformed data
		// degrades to the service's own metadata.
		if fp := fingerprint.Decode(entry.Description); !fp.IsZero() {
			row.SHA256 = fp.SHA256
			row.CTime = fp.CreatedAt
			row.MTime = fp.UpdatedAt
		}

		if entry.IsFolder() {
			folders = append(folders, row)
		} else {
			files = append(files, row)
		}
	}

	return files, folders, nil
}

// matchesFilter reports whether the entry's ancestor chain contains the
// filter folder id. The root filter matches everything.
func matchesFilter(entry *fjump.Entry, filter string) bool {
	if filter == "" || filter == "0" {
		return true
	}

	for _, segment := range strings.Split(entry.ParentPath, "/") {
		if segment == filter {
			return true
		}
	}

	return false
}

// distinctDirs returns the batch's distinct relative target directories in
// encounter order.
func distinctDirs(files []localfs.File) []string {
	seen := make(map[string]bool, len(files))

	var dirs []string

	for i := range files {
		dir := files[i].RelDir
		if dir == "" || seen[dir] {
			continue
		}

		seen[dir] = true
		dirs = append(dirs, dir)
	}

	return dirs
}
