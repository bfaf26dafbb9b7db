package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/fjsync/fjsync/internal/fjump"
)

// Folder creation is retried with a fixed delay; after the attempts are
// exhausted the provisioning error is permanent.
const (
	provisionAttempts = 5
	provisionDelay    = 20 * time.Second
)

// ProvisionError reports a folder segment that could not be created after
// the retry budget was exhausted.
type ProvisionError struct {
	Name     string
	ParentID int64
	Err      error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("sync: creating folder %q under parent %d failed after %d attempts: %v",
		e.Name, e.ParentID, provisionAttempts, e.Err)
}

func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// FolderCreator is the API capability the provisioner needs.
type FolderCreator interface {
	CreateFolder(ctx context.Context, name string, parentID int64) (*fjump.Entry, error)
}

// Provisioner idempotently creates the missing segments of folder chains,
// keeping the shared folder index in step with every folder it creates.
type Provisioner struct {
	api    FolderCreator
	sctx   *Context
	logger *slog.Logger

	// backoff builds a fresh retry policy per created segment. Tests
	// substitute a millisecond policy to keep the retry-bound test fast.
	backoff func() retry.Backoff
}

// NewProvisioner creates a Provisioner bound to the given context.
func NewProvisioner(api FolderCreator, sctx *Context, logger *slog.Logger) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Provisioner{
		api:    api,
		sctx:   sctx,
		logger: logger,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(provisionAttempts-1, retry.NewConstant(provisionDelay))
		},
	}
}

// EnsureFolders walks the chain in order, creating only the segments absent
// from the folder index. Each created folder is appended to the context's
// folder list and index, so a second call with the same chain is a no-op
// against the index and issues no create calls. The first segment is
// created under rootParentID; each later segment under the id its
// predecessor resolved to.
func (p *Provisioner) EnsureFolders(ctx context.Context, chain []string, rootParentID int64) error {
	parentID := rootParentID

	for _, name := range chain {
		if id, ok := p.sctx.FolderID(name); ok {
			parentID = id
			continue
		}

		created, err := p.createWithRetry(ctx, name, parentID)
		if err != nil {
			return err
		}

		p.sctx.AddFolder(*created)
		parentID = created.ID

		p.logger.Info("provisioned folder",
			slog.String("name", name),
			slog.Int64("id", created.ID),
		)
	}

	return nil
}

// createWithRetry attempts one folder creation under the fixed-delay retry
// policy. Every failure is treated as transient until the attempts run out.
func (p *Provisioner) createWithRetry(ctx context.Context, name string, parentID int64) (*fjump.Entry, error) {
	var created *fjump.Entry

	err := retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		folder, createErr := p.api.CreateFolder(ctx, name, parentID)
		if createErr != nil {
			p.logger.Info("folder creation failed; will retry",
				slog.String("name", name),
				slog.Int64("parent_id", parentID),
				slog.String("error", createErr.Error()),
			)

			return retry.RetryableError(createErr)
		}

		created = folder

		return nil
	})
	if err != nil {
		return nil, &ProvisionError{Name: name, ParentID: parentID, Err: err}
	}

	return created, nil
}
